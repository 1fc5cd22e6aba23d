package root

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "prnotify",
	Short: "PR notification scheduler admin CLI",
	Long:  "Inspect notification schedules, cached pull requests and cron expressions",
}

// GetRoot returns the root command for subcommand registration.
func GetRoot() *cobra.Command {
	return rootCmd
}
