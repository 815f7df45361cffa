package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "relkit",
	Short: "A CLI tool for marker-driven version bumps and tags",
	Long: `relkit scans commit messages since the last tag for version markers
(#PATCH_VERSION, #MINOR_VERSION, #MAJOR_VERSION), bumps the version file
accordingly and publishes the release commit and tag.`,
}

var verbose bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

func Execute() error {
	return rootCmd.Execute()
}

// newLogger builds the process logger. Verbose mode switches to the
// development config with debug level enabled.
func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true
	return cfg.Build()
}
