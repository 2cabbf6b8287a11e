package healthcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/tools/common"
	"github.com/Nok1969/thai-maintenance-management-system-sub001/internal/tools/ui"
)

type options struct {
	ci      bool
	timeout time.Duration
	apiURL  string
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "healthcheck",
		Short: "Probe a running maintenance API instance",
	}
	root.PersistentFlags().BoolVar(&opts.ci, "ci", false, "plain JSON output for CI")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "probe timeout")
	root.PersistentFlags().StringVar(&opts.apiURL, "api-url", "http://localhost:8080", "base URL of the API")

	root.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Hit /health and report the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := run(opts, "healthcheck run", "probing", func(ctx context.Context) ([]string, error) {
				status, err := fetchHealthStatus(ctx, *opts)
				if err != nil {
					return nil, err
				}
				return []string{"status: " + status}, nil
			})
			return err
		},
	})
	return root
}

func run(opts *options, title, step string, action func(ctx context.Context) ([]string, error)) ([]string, error) {
	if opts.ci {
		ctx := context.Background()
		if opts.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, opts.timeout)
			defer cancel()
		}
		details, err := action(ctx)
		common.PrintCIResult(err == nil, title, details, err)
		return details, err
	}
	return ui.Run(fmt.Sprintf("%s (%s)", title, step), opts.timeout, action)
}

// apiGET fetches path from the configured API and returns the raw body.
func apiGET(ctx context.Context, opts options, path string) ([]byte, error) {
	base, err := url.Parse(opts.apiURL)
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parse path: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base.ResolveReference(ref).String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}
	return body, nil
}

// fetchHealthStatus parses the health envelope and returns the reported
// service status.
func fetchHealthStatus(ctx context.Context, opts options) (string, error) {
	body, err := apiGET(ctx, opts, "/health")
	if err != nil {
		return "", err
	}
	var payload struct {
		Data struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode health payload: %w", err)
	}
	if payload.Data.Status == "" {
		return "", fmt.Errorf("health payload missing status")
	}
	return payload.Data.Status, nil
}
