package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pulsesocial/pulse/pkg/client"
	"github.com/spf13/cobra"
)

func newPostsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "Submit posts and browse history",
	}

	cmd.AddCommand(newPostsListCmd())
	cmd.AddCommand(newPostsCreateCmd())

	return cmd
}

func newPostsListCmd() *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List submitted posts, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			history, err := apiClient.Posts().List(context.Background(), &client.ListOptions{
				Limit:  limit,
				Offset: offset,
			})
			if err != nil {
				return fmt.Errorf("failed to list posts: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(history)
			}

			if len(history.Posts) == 0 {
				fmt.Println("No posts yet")
				return nil
			}

			table := NewTable("ID", "STATUS", "PLATFORMS", "SCHEDULED", "CONTENT")
			for _, p := range history.Posts {
				table.AddRow(
					strconv.FormatInt(p.ID, 10),
					formatStatus(p.Status),
					strings.Join(p.Platforms, ","),
					formatTime(p.ScheduledAt),
					truncate(strings.ReplaceAll(p.Content, "\n", " "), 50),
				)
			}
			table.Render()
			fmt.Printf("\nShowing %d of %d\n", len(history.Posts), history.Total)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "rows to skip")

	return cmd
}

func newPostsCreateCmd() *cobra.Command {
	var (
		content      string
		platforms    []string
		media        []string
		scheduleAt   string
		useQueue     bool
		platformData string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Submit a post to one or more platforms",
		Example: `  pulse posts create --content "Hello" --platform x --platform bluesky
  pulse posts create --content "Later" --platform instagram --media https://cdn.example.com/a.jpg --at 2030-01-02T15:04:05Z`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if content == "" {
				content = promptInput("Content: ")
			}
			if len(platforms) == 0 {
				return fmt.Errorf("at least one --platform is required")
			}

			req := client.CreatePostRequest{
				Content:   content,
				Platforms: platforms,
				UseQueue:  useQueue,
				MediaURLs: media,
			}
			if scheduleAt != "" {
				at, err := time.Parse(time.RFC3339, scheduleAt)
				if err != nil {
					return fmt.Errorf("--at must be an RFC3339 timestamp: %w", err)
				}
				req.ScheduledAt = &at
			}
			if platformData != "" {
				if !json.Valid([]byte(platformData)) {
					return fmt.Errorf("--platform-data must be valid JSON")
				}
				req.PlatformSpecificData = json.RawMessage(platformData)
			}

			result, err := apiClient.Posts().Create(context.Background(), req)
			if err != nil {
				var apiErr *client.APIError
				if errors.As(err, &apiErr) && apiErr.IsForbidden() {
					return fmt.Errorf("%s. Run 'pulse billing plans' to upgrade", apiErr.Message)
				}
				return fmt.Errorf("failed to create post: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(result)
			}

			fmt.Printf("Post %d %s", result.Log.ID, formatStatus(string(result.Log.Status)))
			if result.Log.ScheduledAt != nil {
				fmt.Printf(" for %s", formatTime(result.Log.ScheduledAt))
			}
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().StringVar(&content, "content", "", "post text")
	cmd.Flags().StringSliceVar(&platforms, "platform", nil, "target platform (repeatable)")
	cmd.Flags().StringSliceVar(&media, "media", nil, "media URL (repeatable)")
	cmd.Flags().StringVar(&scheduleAt, "at", "", "publish time (RFC3339)")
	cmd.Flags().BoolVar(&useQueue, "queue", false, "use the profile's next queue slot")
	cmd.Flags().StringVar(&platformData, "platform-data", "", "raw JSON passed through to the provider")

	return cmd
}
