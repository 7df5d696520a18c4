package cli

import (
	"io"

	"github.com/agentx-labs/distpack/internal/branding"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// buildInfo is injected via ldflags at build time.
type buildInfo struct {
	Version string
	Commit  string
	Date    string
}

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	verbose    bool
	configFile string
}

func newRootCmd(info buildInfo) *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   branding.CLIName(),
		Short: branding.Description(),
		Long: branding.DisplayName() + ` compiles a JavaScript source tree into a publishable package
directory: CommonJS and ES module builds of every file, Flow sidecars,
declaration files, license and readme, and a validated publish manifest.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log every stage and file")
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Config file (default is "+branding.ConfigName()+".yaml in the project directory)")

	cmd.AddCommand(
		newBuildCmd(opts),
		newCheckCmd(opts),
		newInitCmd(opts),
		newVersionCmd(info),
	)
	return cmd
}

// newLogger returns the logger commands hand down to internal packages.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: branding.CLIName(),
		Level:  level,
	})
}

// projectDir returns the optional positional project directory.
func projectDir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	return newRootCmd(buildInfo{Version: version, Commit: commit, Date: date}).Execute()
}
