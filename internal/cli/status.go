package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show account summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			format := getOutputFormat()
			if format != "table" {
				summary := map[string]interface{}{}

				if ready, err := apiClient.Ready(ctx); err == nil {
					summary["service"] = ready.Status
					summary["provider"] = ready.Provider
				}

				if acct, err := apiClient.Session(ctx); err == nil {
					summary["plan"] = acct.Plan
					summary["posts_used"] = acct.PostsUsed
					summary["posts_limit"] = acct.PostsLimit
					summary["is_locked"] = acct.IsLocked
				}
				if status, err := apiClient.Profiles().Status(ctx); err == nil {
					connected := 0
					for _, s := range status {
						if s.Connected {
							connected++
						}
					}
					summary["platforms_connected"] = connected
				}
				if history, err := apiClient.Posts().List(ctx, nil); err == nil {
					summary["posts_total"] = history.Total
				}
				return printOutput(summary)
			}

			fmt.Println("Pulse")
			fmt.Println(strings.Repeat("=", 40))

			ready, err := apiClient.Ready(ctx)
			if err != nil {
				fmt.Printf("  Service:    (error: %v)\n", err)
			} else {
				fmt.Printf("  Service:    %s\n", formatStatus(ready.Status))
				if ready.Provider != "" {
					fmt.Printf("  Provider:   %s\n", formatStatus(ready.Provider))
				}
			}

			acct, err := apiClient.Session(ctx)
			if err != nil {
				fmt.Printf("  Account:    (error: %v)\n", err)
			} else {
				fmt.Printf("  Account:    %s (%s)\n", acct.Email, acct.Plan)
				fmt.Printf("  Usage:      %d / %d posts\n", acct.PostsUsed, acct.PostsLimit)
				if acct.IsLocked {
					fmt.Printf("  Status:     %s\n", formatStatus("locked"))
				}
			}

			status, err := apiClient.Profiles().Status(ctx)
			if err != nil {
				fmt.Printf("  Platforms:  (error: %v)\n", err)
			} else {
				var connected []string
				for _, s := range status {
					if s.Connected {
						connected = append(connected, s.Platform)
					}
				}
				fmt.Printf("  Platforms:  %d connected", len(connected))
				if len(connected) > 0 {
					fmt.Printf(" (%s)", strings.Join(connected, ", "))
				}
				fmt.Println()
			}

			history, err := apiClient.Posts().List(ctx, nil)
			if err != nil {
				fmt.Printf("  Posts:      (error: %v)\n", err)
			} else {
				fmt.Printf("  Posts:      %d submitted\n", history.Total)
			}

			return nil
		},
	}
}
