package cli

import (
	"github.com/agentx-labs/distpack/internal/config"
	"github.com/agentx-labs/distpack/internal/pipeline"
	"github.com/agentx-labs/distpack/internal/sanitize"
	"github.com/agentx-labs/distpack/internal/transform"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// addBuildFlags registers the flags config.Load binds by name.
func addBuildFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("src", "", "Source directory (default \"src\")")
	f.String("out", "", "Output directory, removed and recreated on every build (default \"dist\")")
	f.String("ignore-dir", "", "Regexp for directory names to skip (default \"^__.*__$\")")
	f.String("manifest", "", "Development manifest (default \"package.json\")")
	f.StringSlice("asset", nil, "File copied into the output root; repeatable (default LICENSE, README.md)")
	f.String("transform-cmd", "", "Compiler command line (default \""+transform.DefaultCommand+"\")")
}

func newBuildCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [project-dir]",
		Short: "Build the publishable package directory",
		Long: `Build compiles every .js file under the source directory twice, once as
CommonJS (.js) and once as an ES module (.mjs), writes a Flow sidecar next to
each, copies .d.ts files and the license and readme, and finally writes the
publish manifest. The manifest is only written when every other artifact was
produced and the version and publish tag agree.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd.ErrOrStderr(), opts.verbose)

			cfg, err := config.Load(projectDir(args), opts.configFile, cmd.Flags())
			if err != nil {
				return err
			}
			if cfg.ConfigFile != "" {
				logger.Debug("using config file", "path", cfg.ConfigFile)
			}

			b := pipeline.New(pipeline.Options{
				Fs:         afero.NewOsFs(),
				ProjectDir: cfg.ProjectDir,
				SrcDir:     cfg.SrcDir,
				OutDir:     cfg.OutDir,
				IgnoreDir:  cfg.IgnoreDir,
				Manifest:   cfg.Manifest,
				Assets:     cfg.Assets,
				Transformer: &transform.Command{
					Line: cfg.TransformCommand,
					Dir:  cfg.ProjectDir,
				},
				Sanitizer: sanitize.Default(logger),
				Logger:    logger,
			})

			report, err := b.Run(cmd.Context())
			if err != nil {
				return err
			}
			return report.Render(cmd.OutOrStdout())
		},
	}
	addBuildFlags(cmd)
	return cmd
}
