package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

type healthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func newHealthcheckCommand() *cobra.Command {
	var (
		url     string
		timeout time.Duration
	)

	c := &cobra.Command{
		Use:   "healthcheck",
		Short: "Check that the API server is healthy",
		Long: `Calls the /health endpoint and exits non-zero unless the server
reports "healthy". Intended for container health checks.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if url == "" {
				port := os.Getenv("API_PORT")
				if port == "" {
					port = "3001"
				}
				url = fmt.Sprintf("http://localhost:%s/health", port)
			}

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return fmt.Errorf("build request: %w", err)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return fmt.Errorf("request %s: %w", url, err)
			}
			defer resp.Body.Close()

			var body healthResponse
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				return fmt.Errorf("decode health response: %w", err)
			}
			if resp.StatusCode != http.StatusOK || body.Status != "healthy" {
				return fmt.Errorf("server unhealthy: status %d %s", resp.StatusCode, body.Status)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "healthy")
			return nil
		},
	}
	c.Flags().StringVar(&url, "url", "", "health URL (default: http://localhost:{API_PORT}/health)")
	c.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "request timeout")
	return c
}
