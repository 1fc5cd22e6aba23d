// Package schedules lists the notification schedules in the database.
package schedules

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/crucial707/pr-notify/cmd/cli/output"
	"github.com/crucial707/pr-notify/internal/config"
	"github.com/crucial707/pr-notify/internal/db"
	"github.com/crucial707/pr-notify/internal/repo"
)

// Init registers the schedules commands on the root command.
func Init(rootCmd *cobra.Command) {
	schedulesCmd := &cobra.Command{
		Use:   "schedules",
		Short: "Manage notification schedules",
	}
	schedulesCmd.AddCommand(listCmd())
	rootCmd.AddCommand(schedulesCmd)
}

func listCmd() *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notification schedules",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			database, err := db.Connect(cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBUser, cfg.DBPass,
				cfg.DBMaxOpenConns, cfg.DBMaxIdleConns)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer database.Close()

			// List never touches PATs, so no cipher is needed here.
			schedules := repo.NewScheduleRepo(database, nil, nil)
			list, err := schedules.List(cmd.Context(), limit, offset)
			if err != nil {
				return fmt.Errorf("list schedules: %w", err)
			}

			rows := make([][]interface{}, 0, len(list))
			for _, s := range list {
				rows = append(rows, []interface{}{
					s.ID, s.Name, s.CronExpr, s.Active, s.Email,
					s.UpdatedAt.Format(time.RFC3339),
				})
			}
			output.RenderTable([]string{"ID", "Name", "Cron", "Active", "Email", "Updated"}, rows)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of schedules to list")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of schedules to skip")
	return cmd
}
