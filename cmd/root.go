package cmd

import (
	"github.com/birmacher/ai-commit-generator/common"
	"github.com/birmacher/ai-commit-generator/logger"
	"github.com/spf13/cobra"
)

var (
	// Command line flags
	logLevel     string
	logFormat    string
	settingsPath string

	settings common.Settings
)

var rootCmd = &cobra.Command{
	Use:   "commitgen",
	Short: "AI commit message generator",
	Long: `commitgen turns a description of code changes or a unified diff into a
conventional commit message with alternatives, using a hosted LLM.
It runs as an HTTP service or as a one-shot command.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.Init(logLevel, logFormat)
		logger.Debugf("Log level set to: %s", logLevel)

		if cmd.Name() == versionCmd.Name() {
			return nil
		}

		var err error
		settings, err = common.LoadSettings(settingsPath)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// Execute runs the root command and handles errors
func Execute() error {
	// Subcommands are added in their respective init() functions
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Set the logging level (debug, info, warn, error, dpanic, panic, fatal)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", logger.FormatConsole,
		"Set the log output format (console, json)")
	rootCmd.PersistentFlags().StringVar(&settingsPath, "config", "",
		"Path to a settings file (defaults to the first commitgen.yml found)")
}
