package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"sentrylog/internal/models"
	"sentrylog/internal/store"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type client struct {
	base  string
	token string
	http  *http.Client
}

func (c *client) do(method, path string, body, dest any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("%s: %s", resp.Status, apiErr.Error)
		}
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	if dest == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

func newRootCommand() *cobra.Command {
	var base, token string

	cmd := &cobra.Command{
		Use:           "sentryctl",
		Short:         "Admin utility for the sentrylog patrol tracker API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&base, "api", "http://localhost:8080", "Base URL of the sentrylog API")
	cmd.PersistentFlags().StringVar(&token, "token", os.Getenv("SENTRYLOG_TOKEN"), "Bearer token from login")

	newClient := func() *client {
		return &client{base: base, token: token, http: &http.Client{Timeout: 30 * time.Second}}
	}

	cmd.AddCommand(newLoginCommand(newClient))
	cmd.AddCommand(newCheckpointsCommand(newClient))
	cmd.AddCommand(newLogsCommand(newClient))
	return cmd
}

func newLoginCommand(newClient func() *client) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Look up a user by email and print a session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp struct {
				ID    string `json:"id"`
				Role  string `json:"role"`
				Name  string `json:"name"`
				Token string `json:"token"`
			}
			if err := newClient().do(http.MethodPost, "/login", map[string]string{"email": email}, &resp); err != nil {
				return err
			}
			fmt.Printf("%s (%s)\ntoken: %s\n", resp.Name, resp.Role, resp.Token)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "User email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newCheckpointsCommand(newClient func() *client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoints",
		Short: "Checkpoint operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List all checkpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			var checkpoints []models.Checkpoint
			if err := newClient().do(http.MethodGet, "/checkpoints", nil, &checkpoints); err != nil {
				return err
			}
			for _, c := range checkpoints {
				loc := "no coordinates"
				if c.Latitude != nil && c.Longitude != nil {
					loc = fmt.Sprintf("%.4f,%.4f", *c.Latitude, *c.Longitude)
				}
				fmt.Printf("%s  %-24s %s\n", c.ID, c.Name, loc)
			}
			return nil
		},
	}

	var id, instruction, videoURL string
	set := &cobra.Command{
		Use:   "set",
		Short: "Overwrite a checkpoint's instruction and video URL (supervisor token required)",
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{
				"id":          id,
				"instruction": instruction,
				"videoUrl":    videoURL,
			}
			var resp struct {
				Checkpoint models.Checkpoint `json:"checkpoint"`
			}
			if err := newClient().do(http.MethodPut, "/checkpoints", body, &resp); err != nil {
				return err
			}
			fmt.Printf("updated %s\n", resp.Checkpoint.Name)
			return nil
		},
	}
	set.Flags().StringVar(&id, "id", "", "Checkpoint id")
	set.Flags().StringVar(&instruction, "instruction", "", "Instruction text")
	set.Flags().StringVar(&videoURL, "video-url", "", "Procedure video embed URL")
	_ = set.MarkFlagRequired("id")

	cmd.AddCommand(list)
	cmd.AddCommand(set)
	return cmd
}

func newLogsCommand(newClient func() *client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Patrol log operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var search string
	var page int
	list := &cobra.Command{
		Use:   "list",
		Short: "List logs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/logs?search=%s&page=%d", search, page)
			var resp store.LogPage
			if err := newClient().do(http.MethodGet, path, nil, &resp); err != nil {
				return err
			}
			for _, l := range resp.Logs {
				fmt.Printf("%s  %-9s %-20s %s\n",
					l.CheckInTime.Format(time.RFC3339), l.Status, l.User.Name, l.Checkpoint.Name)
			}
			fmt.Printf("page %d of %d\n", resp.CurrentPage, resp.TotalPages)
			return nil
		},
	}
	list.Flags().StringVar(&search, "search", "", "Substring of the guard's name")
	list.Flags().IntVar(&page, "page", 1, "Page number")

	var limit int
	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show aggregates over the most recent logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			var logs []models.PatrolLog
			if err := newClient().do(http.MethodGet, fmt.Sprintf("/logs?limit=%d", limit), nil, &logs); err != nil {
				return err
			}
			agg := store.Aggregate(logs)
			fmt.Printf("logs: %d\nguards: %d\ncheckpoints: %d\n",
				agg.TotalLogs, agg.DistinctGuards, agg.DistinctCheckpoints)
			return nil
		},
	}
	stats.Flags().IntVar(&limit, "limit", 50, "How many recent logs to aggregate")

	var logID string
	resolve := &cobra.Command{
		Use:   "resolve",
		Short: "Mark a log RESOLVED (supervisor token required)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var updated models.PatrolLog
			if err := newClient().do(http.MethodPut, "/logs", map[string]string{"logId": logID}, &updated); err != nil {
				return err
			}
			fmt.Printf("log %s is now %s\n", updated.ID, updated.Status)
			return nil
		},
	}
	resolve.Flags().StringVar(&logID, "id", "", "Log id")
	_ = resolve.MarkFlagRequired("id")

	cmd.AddCommand(list)
	cmd.AddCommand(stats)
	cmd.AddCommand(resolve)
	return cmd
}
