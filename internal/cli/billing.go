package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/pulsesocial/pulse/pkg/client"
	"github.com/spf13/cobra"
)

func newBillingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "billing",
		Short: "Plans, subscriptions and checkout",
	}

	cmd.AddCommand(newBillingPlansCmd())
	cmd.AddCommand(newBillingSubscriptionCmd())
	cmd.AddCommand(newBillingCheckoutCmd())
	cmd.AddCommand(newBillingPortalCmd())

	return cmd
}

func newBillingPlansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "List plans and add-ons",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalogue, err := apiClient.Billing().Plans(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list plans: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(catalogue)
			}

			plans := NewTable("PLAN", "NAME", "PRICE", "POSTS/MONTH")
			for _, p := range catalogue.Plans {
				plans.AddRow(p.Plan, p.Name, formatCents(p.PriceCents), fmt.Sprintf("%d", p.PostsLimit))
			}
			plans.Render()
			fmt.Println()

			addons := NewTable("ADD-ON", "NAME", "PRICE", "DESCRIPTION")
			for _, a := range catalogue.Addons {
				addons.AddRow(a.Addon, a.Name, formatCents(a.PriceCents), a.Description)
			}
			addons.Render()
			return nil
		},
	}
}

func newBillingSubscriptionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "subscription",
		Short: "Show the current subscription",
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := apiClient.Billing().Subscription(context.Background())
			if err != nil {
				return fmt.Errorf("failed to get subscription: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(sub)
			}

			fmt.Printf("Plan:        %s\n", sub.Plan)
			if len(sub.Addons) > 0 {
				fmt.Printf("Add-ons:     %s\n", strings.Join(sub.Addons, ", "))
			}
			if sub.SubscriptionID != nil {
				fmt.Printf("Status:      %s\n", formatStatus("active"))
				fmt.Printf("Renews:      %s\n", formatTime(sub.PeriodEnd))
			} else if sub.TrialEndsAt != nil {
				fmt.Printf("Status:      %s until %s\n", formatStatus("trialing"), formatTime(sub.TrialEndsAt))
			}
			return nil
		},
	}
}

func newBillingCheckoutCmd() *cobra.Command {
	var addons []string

	cmd := &cobra.Command{
		Use:   "checkout <plan>",
		Short: "Open a checkout page for a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := apiClient.Billing().Checkout(context.Background(), client.CheckoutRequest{
				Plan:   args[0],
				Addons: addons,
			})
			if err != nil {
				return fmt.Errorf("failed to start checkout: %w", err)
			}
			fmt.Printf("Complete checkout at:\n  %s\n", session.URL)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&addons, "addon", nil, "add-on to include (repeatable)")

	return cmd
}

func newBillingPortalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "portal",
		Short: "Open the billing portal",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := apiClient.Billing().Portal(context.Background())
			if err != nil {
				return fmt.Errorf("failed to open portal: %w", err)
			}
			fmt.Printf("Manage billing at:\n  %s\n", session.URL)
			return nil
		},
	}
}
