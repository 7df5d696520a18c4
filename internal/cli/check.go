package cli

import (
	"fmt"

	"github.com/agentx-labs/distpack/internal/config"
	"github.com/agentx-labs/distpack/internal/manifest"
	"github.com/agentx-labs/distpack/internal/runtime"
	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newCheckCmd(opts *globalOptions) *cobra.Command {
	var checkRuntime bool
	var nodeBin string

	cmd := &cobra.Command{
		Use:   "check [project-dir]",
		Short: "Validate the manifest and print the publish manifest",
		Long: `Check runs the same manifest validation as build and prints the manifest
that build would write. Nothing is compiled and nothing is written.

With --runtime the installed Node.js is also checked against the engine range
the manifest declares.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd.ErrOrStderr(), opts.verbose)

			cfg, err := config.Load(projectDir(args), opts.configFile, cmd.Flags())
			if err != nil {
				return err
			}

			path := cfg.Path(cfg.Manifest)
			logger.Debug("checking manifest", "path", path)

			dev, err := manifest.ParseFile(afero.NewOsFs(), path)
			if err != nil {
				return err
			}
			pub, err := manifest.Publish(dev)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			if checkRuntime {
				if err := checkNode(cmd, logger, dev, nodeBin); err != nil {
					return err
				}
			}

			data, err := pub.MarshalIndent()
			if err != nil {
				return fmt.Errorf("encoding publish manifest: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
	cmd.Flags().String("manifest", "", "Development manifest (default \"package.json\")")
	cmd.Flags().BoolVar(&checkRuntime, "runtime", false, "Verify the installed Node.js satisfies the declared engine range")
	cmd.Flags().StringVar(&nodeBin, "node", "", "Node.js executable (default \"node\" on PATH)")
	return cmd
}

func checkNode(cmd *cobra.Command, logger *log.Logger, dev *manifest.Descriptor, bin string) error {
	info, err := (&runtime.Node{Bin: bin}).Detect(cmd.Context())
	if err != nil {
		return err
	}

	rng, ok := manifest.EngineRange(dev, "node")
	if !ok {
		logger.Info("node found, no engine range declared", "path", info.Path, "version", info.Version)
		return nil
	}
	if err := runtime.Satisfies("node", rng, info.Version); err != nil {
		return err
	}
	logger.Info("node satisfies engine range", "version", info.Version, "range", rng)
	return nil
}
