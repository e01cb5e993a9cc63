// Package cli implements the vibeproxy CLI commands.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/KooshaPari/vibeproxy/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "vibeproxy",
	Short: "Manage the VibeProxy backend and its credentials",
	Long: `VibeProxy routes AI traffic through a locally managed backend.
This CLI controls the backend server and the credentials stored in the
system keyring on its behalf.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Init(logging.Config{Level: logLevel, Console: true})
	},
}

var logLevel string

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (trace, debug, info, warn, error)")

	// Add subcommands (alphabetical)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(secretCmd)
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(versionCmd)
}
