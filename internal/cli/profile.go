package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Connect social accounts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create <name>",
		Short: "Create the posting profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := apiClient.Profiles().Create(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to create profile: %w", err)
			}
			fmt.Printf("Profile %s created\n", profile.ID)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "invites",
		Short: "Create connection links for every platform",
		RunE: func(cmd *cobra.Command, args []string) error {
			invites, err := apiClient.Profiles().Invites(context.Background())
			if err != nil {
				return fmt.Errorf("failed to create invites: %w", err)
			}
			if getOutputFormat() != "table" {
				return printOutput(invites)
			}
			table := NewTable("PLATFORM", "LINK", "EXPIRES")
			for _, inv := range invites {
				table.AddRow(inv.Platform, inv.InviteURL, formatTime(inv.ExpiresAt))
			}
			table.Render()
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "accounts",
		Short: "List connected social accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			accounts, err := apiClient.Profiles().Accounts(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list accounts: %w", err)
			}
			if getOutputFormat() != "table" {
				return printOutput(accounts)
			}
			if len(accounts) == 0 {
				fmt.Println("No connected accounts")
				return nil
			}
			table := NewTable("PLATFORM", "USERNAME", "STATUS")
			for _, a := range accounts {
				status := "disconnected"
				if a.Connected {
					status = "connected"
				}
				table.AddRow(a.Platform, a.Username, formatStatus(status))
			}
			table.Render()
			return nil
		},
	})

	return cmd
}
