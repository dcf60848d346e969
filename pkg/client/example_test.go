package client_test

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/pulsesocial/pulse/pkg/client"
)

// Example demonstrates basic usage of the Pulse client
func Example() {
	c := client.NewClient(client.Config{
		BaseURL: "https://api.pulsesocial.app",
	})

	ctx := context.Background()

	loginResp, err := c.Login(ctx, "user@example.com", "password")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Logged in as: %s\n", loginResp.Account.Email)

	usage, err := c.Usage(ctx)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Used %d of %d posts\n", usage.PostsUsed, usage.PostsLimit)
}

// ExamplePostService_Create demonstrates submitting a post and handling an
// exhausted allowance
func ExamplePostService_Create() {
	c := client.NewClient(client.Config{
		BaseURL: "https://api.pulsesocial.app",
	})

	if _, err := c.Login(context.Background(), "user@example.com", "password"); err != nil {
		log.Fatal(err)
	}

	result, err := c.Posts().Create(context.Background(), client.CreatePostRequest{
		Content:   "Launch day!",
		Platforms: []string{"x", "bluesky"},
		UseQueue:  true,
	})
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.IsForbidden() {
		fmt.Println("Post limit reached:", apiErr.Message)
		return
	}
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Post %d is %s\n", result.Log.ID, result.Log.Status)
}

// ExampleCronService_MonthlyReset demonstrates triggering maintenance
func ExampleCronService_MonthlyReset() {
	c := client.NewClient(client.Config{
		BaseURL:    "https://api.pulsesocial.app",
		CronSecret: "cron-secret",
	})

	res, err := c.Cron().MonthlyReset(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Reset %d accounts\n", res.UsersUpdated)
}
