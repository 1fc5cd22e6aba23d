// Package cronexpr validates cron expressions and previews fire times.
package cronexpr

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

// Init registers the cron command on the root command.
func Init(rootCmd *cobra.Command) {
	var count int
	var timezone string

	cmd := &cobra.Command{
		Use:   "cron <expression>",
		Short: "Validate a cron expression and preview its next fire times",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
			sched, err := parser.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid cron expression %q: %w", args[0], err)
			}

			loc, err := time.LoadLocation(timezone)
			if err != nil {
				return fmt.Errorf("invalid timezone %q: %w", timezone, err)
			}

			fmt.Printf("%q is valid. Next %d fire times (%s):\n", args[0], count, timezone)
			next := time.Now().In(loc)
			for i := 0; i < count; i++ {
				next = sched.Next(next)
				fmt.Printf("  %s\n", next.Format(time.RFC1123))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "count", 5, "number of fire times to preview")
	cmd.Flags().StringVar(&timezone, "timezone", "UTC", "timezone for the preview")
	rootCmd.AddCommand(cmd)
}
