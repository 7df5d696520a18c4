package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/agentx-labs/distpack/internal/manifest"
	"github.com/agentx-labs/distpack/internal/scaffold"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newInitCmd(opts *globalOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [project-dir]",
		Short: "Write a starter config file",
		Long: `Init writes a commented config file with the default build settings into the
project directory. The package name is taken from package.json when present.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd.ErrOrStderr(), opts.verbose)
			fsys := afero.NewOsFs()

			dir, err := filepath.Abs(projectDir(args))
			if err != nil {
				return fmt.Errorf("resolving project directory: %w", err)
			}

			var pkg string
			dev, err := manifest.ParseFile(fsys, filepath.Join(dir, "package.json"))
			switch {
			case err == nil:
				pkg, _ = dev.String("name")
			case errors.Is(err, fs.ErrNotExist):
				logger.Debug("no package.json, leaving the package name out")
			default:
				return err
			}

			result, err := scaffold.Generate(fsys, dir, scaffold.NewData(pkg), force)
			if err != nil {
				return err
			}
			for _, f := range result.Files {
				fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", filepath.Join(result.OutputDir, f))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing config file")
	return cmd
}
