package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/pulsesocial/pulse/pkg/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication commands",
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthRegisterCmd())
	cmd.AddCommand(newAuthLogoutCmd())
	cmd.AddCommand(newAuthWhoamiCmd())

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login with email and password",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				email = promptInput("Email: ")
			}
			if password == "" {
				password = promptPassword("Password: ")
			}

			ctx := context.Background()
			resp, err := apiClient.Login(ctx, email, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			if err := storeCredentials(resp, email); err != nil {
				return err
			}

			name := email
			if resp.Account != nil && resp.Account.Name != nil && *resp.Account.Name != "" {
				name = *resp.Account.Name
			}
			fmt.Printf("Logged in as %s\n", name)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")

	return cmd
}

func newAuthRegisterCmd() *cobra.Command {
	var email, password, name string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				email = promptInput("Email: ")
			}
			if name == "" {
				name = promptInput("Name (optional): ")
			}
			if password == "" {
				password = promptPassword("Password: ")
				confirm := promptPassword("Confirm password: ")
				if password != confirm {
					return fmt.Errorf("passwords do not match")
				}
			}

			ctx := context.Background()
			resp, err := apiClient.Register(ctx, client.RegisterRequest{
				Name:     name,
				Email:    email,
				Password: password,
			})
			if err != nil {
				return fmt.Errorf("registration failed: %w", err)
			}

			if err := storeCredentials(resp, email); err != nil {
				return err
			}

			fmt.Printf("Account created. Logged in as %s\n", email)
			if resp.Account != nil && resp.Account.TrialEndsAt != nil {
				fmt.Printf("Free trial ends %s\n", formatTime(resp.Account.TrialEndsAt))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	cmd.Flags().StringVar(&name, "name", "", "display name")

	return cmd
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Best effort: the server clears its cookies, stored tokens are dropped either way
			_ = apiClient.Logout(context.Background())

			viper.Set("auth.token", "")
			viper.Set("auth.refresh_token", "")
			viper.Set("auth.email", "")

			if _, err := writeConfig(); err != nil {
				return fmt.Errorf("failed to clear credentials: %w", err)
			}

			fmt.Println("Logged out successfully")
			return nil
		},
	}
}

func newAuthWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			acct, err := apiClient.Session(ctx)
			if err != nil {
				return fmt.Errorf("failed to get account info: %w", err)
			}

			format := getOutputFormat()
			if format != "table" {
				return printOutput(acct)
			}

			fmt.Printf("Email:    %s\n", acct.Email)
			if acct.Name != nil && *acct.Name != "" {
				fmt.Printf("Name:     %s\n", *acct.Name)
			}
			fmt.Printf("Plan:     %s\n", acct.Plan)
			if len(acct.Addons) > 0 {
				fmt.Printf("Add-ons:  %s\n", strings.Join(acct.Addons, ", "))
			}
			fmt.Printf("Posts:    %d / %d\n", acct.PostsUsed, acct.PostsLimit)
			if acct.IsLocked {
				fmt.Println("Status:   " + formatStatus("locked"))
			}
			fmt.Printf("ID:       %d\n", acct.ID)
			return nil
		},
	}
}

func storeCredentials(resp *client.AuthResponse, email string) error {
	viper.Set("auth.token", resp.AccessToken)
	if resp.RefreshToken != "" {
		viper.Set("auth.refresh_token", resp.RefreshToken)
	}
	if resp.Account != nil {
		email = resp.Account.Email
	}
	viper.Set("auth.email", email)

	if _, err := writeConfig(); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}

func promptInput(prompt string) string {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func promptPassword(prompt string) string {
	fmt.Print(prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return ""
	}
	return string(password)
}
