// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "scholar-admin",
	Short: "scholar-admin is the settings and workflow backend of AI Scholar",
	Long: `scholar-admin is the settings and workflow backend of the AI Scholar
research assistant. It persists the validated user preference record,
the notification preferences and the automated workflow collection, and
serves them over a JSON API.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
