package cmd

import (
	"fmt"

	"github.com/birmacher/ai-commit-generator/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the version of commitgen`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "commitgen v%s\n", version.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
