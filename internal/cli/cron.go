package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newCronCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cron",
		Short: "Trigger maintenance jobs (requires cron_secret)",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "monthly-reset",
		Short: "Reset posts_used for every subscribed account",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := apiClient.Cron().MonthlyReset(context.Background())
			if err != nil {
				return fmt.Errorf("monthly reset failed: %w", err)
			}
			if getOutputFormat() != "table" {
				return printOutput(res)
			}
			fmt.Printf("Reset usage for %d account(s)\n", res.UsersUpdated)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "trial-expiry",
		Short: "Lock expired trials over the free allowance",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := apiClient.Cron().TrialExpiry(context.Background())
			if err != nil {
				return fmt.Errorf("trial expiry failed: %w", err)
			}
			if getOutputFormat() != "table" {
				return printOutput(res)
			}
			fmt.Printf("Locked %d account(s)\n", res.AccountsLocked)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "jobs",
		Short: "List in-process schedules",
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs, err := apiClient.Cron().Jobs(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list jobs: %w", err)
			}
			if getOutputFormat() != "table" {
				return printOutput(jobs)
			}
			if len(jobs) == 0 {
				fmt.Println("Scheduler disabled")
				return nil
			}
			table := NewTable("JOB", "SCHEDULE", "NEXT RUN", "LAST RUN", "LAST ERROR")
			for _, j := range jobs {
				table.AddRow(j.Name, j.Schedule, formatTime(j.NextRun), formatTime(j.LastRun), truncate(j.LastError, 40))
			}
			table.Render()
			return nil
		},
	})

	return cmd
}
