package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newUsageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Show posts used against the plan's allowance",
		RunE: func(cmd *cobra.Command, args []string) error {
			usage, err := apiClient.Usage(context.Background())
			if err != nil {
				return fmt.Errorf("failed to get usage: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(usage)
			}

			fmt.Printf("Posts:    %d / %d (%d%%)\n", usage.PostsUsed, usage.PostsLimit, usage.PercentageUsed)
			fmt.Printf("          %s\n", usageBar(usage.PercentageUsed, 30))
			fmt.Printf("Recent:   %d posts in the last 30 days\n", usage.PostsLast30Days)
			if usage.TrialEndsAt != nil {
				fmt.Printf("Trial:    ends %s\n", formatTime(usage.TrialEndsAt))
			}
			if usage.IsLocked {
				fmt.Println("Status:   " + formatStatus("locked") + " (upgrade to keep posting)")
			}
			return nil
		},
	}
}

// usageBar draws a fixed-width progress bar for pct.
func usageBar(pct, width int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := pct * width / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}
