// Package cache dumps the cached pull request snapshot for a schedule.
package cache

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crucial707/pr-notify/cmd/cli/output"
	"github.com/crucial707/pr-notify/internal/config"
	"github.com/crucial707/pr-notify/internal/db"
	"github.com/crucial707/pr-notify/internal/repo"
)

// Init registers the cache command on the root command.
func Init(rootCmd *cobra.Command) {
	rootCmd.AddCommand(showCmd())
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cache <schedule-id>",
		Short: "Show the cached pull requests for a schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			database, err := db.Connect(cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBUser, cfg.DBPass,
				cfg.DBMaxOpenConns, cfg.DBMaxIdleConns)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer database.Close()

			prs, err := repo.NewPullRequestRepo(database).ListForSchedule(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("list cached pull requests: %w", err)
			}
			if len(prs) == 0 {
				fmt.Println("No cached pull requests for this schedule")
				return nil
			}

			rows := make([][]interface{}, 0, len(prs))
			for _, pr := range prs {
				rows = append(rows, []interface{}{
					pr.Organization + "/" + pr.Repository, pr.Number, pr.Title,
					pr.Author, string(pr.ChecksStatus), pr.HTMLURL,
				})
			}
			output.RenderTable([]string{"Repository", "#", "Title", "Author", "Checks", "URL"}, rows)
			return nil
		},
	}
}
