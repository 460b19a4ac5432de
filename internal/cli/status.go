package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

// ComponentStatus is the health of one dependency as seen by the CLI.
type ComponentStatus struct {
	Name      string `json:"name"`
	State     string `json:"state"`
	Message   string `json:"message,omitempty"`
	LatencyMs int64  `json:"latency_ms"`
}

// StatusOutput aggregates component checks.
type StatusOutput struct {
	Timestamp  string            `json:"timestamp"`
	Endpoint   string            `json:"endpoint"`
	Components []ComponentStatus `json:"components"`
	Overall    string            `json:"overall"`
}

// errUnhealthy makes the command exit non-zero after printing its report.
var errUnhealthy = errors.New("one or more components are unhealthy")

func statusCommand(g *globalFlags) *cobra.Command {
	var (
		databaseURL string
		timeout     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check the service and its dependencies",
		Long: `Status calls the service readiness endpoint and reports each component
it checks. With --database-url it also pings Postgres directly.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			output := collectStatus(cmd.Context(), cfg.Endpoint, databaseURL, timeout)
			if err := printStatus(cmd.OutOrStdout(), cfg.OutputFormat, output); err != nil {
				return err
			}
			if output.Overall == "unhealthy" {
				return errUnhealthy
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&databaseURL, "database-url", "", "Also ping this Postgres URL")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Second, "Per-check timeout")
	return cmd
}

func collectStatus(ctx context.Context, endpoint, databaseURL string, timeout time.Duration) StatusOutput {
	components := checkService(ctx, endpoint, timeout)
	if databaseURL != "" {
		components = append(components, checkDatabase(ctx, databaseURL, timeout))
	}

	unhealthy := 0
	for _, c := range components {
		if c.State != "healthy" {
			unhealthy++
		}
	}
	overall := "healthy"
	switch {
	case unhealthy == len(components):
		overall = "unhealthy"
	case unhealthy > 0:
		overall = "partial"
	}

	return StatusOutput{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Endpoint:   endpoint,
		Components: components,
		Overall:    overall,
	}
}

// checkService reports the service itself plus every component its
// readiness endpoint lists.
func checkService(ctx context.Context, endpoint string, timeout time.Duration) []ComponentStatus {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	service := ComponentStatus{Name: "service", State: "unhealthy"}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"/api/v1/status/readyz", nil)
	if err != nil {
		service.Message = fmt.Sprintf("request creation failed: %v", err)
		return []ComponentStatus{service}
	}
	resp, err := http.DefaultClient.Do(req)
	service.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		service.Message = fmt.Sprintf("request failed: %v", err)
		return []ComponentStatus{service}
	}
	defer resp.Body.Close()

	var body struct {
		Status     string            `json:"status"`
		Components map[string]string `json:"components"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err != nil {
		service.Message = fmt.Sprintf("unexpected response (status %d)", resp.StatusCode)
		return []ComponentStatus{service}
	}

	service.State = "healthy"
	service.Message = body.Status
	out := []ComponentStatus{service}

	names := make([]string, 0, len(body.Components))
	for name := range body.Components {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		out = append(out, ComponentStatus{Name: name, State: body.Components[name], Message: "reported by service"})
	}
	return out
}

func checkDatabase(ctx context.Context, databaseURL string, timeout time.Duration) ComponentStatus {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	status := ComponentStatus{Name: "database", State: "unhealthy"}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		status.Message = fmt.Sprintf("connection failed: %v", err)
		return status
	}
	defer db.Close()

	err = db.PingContext(ctx)
	status.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		status.Message = fmt.Sprintf("ping failed: %v", err)
		return status
	}
	status.State = "healthy"
	status.Message = "connection successful"
	return status
}

func printStatus(w io.Writer, format string, output StatusOutput) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(output)
	case FormatTable, "":
		fmt.Fprintf(w, "Endpoint: %s\n", output.Endpoint)
		fmt.Fprintf(w, "Overall:  %s\n\n", output.Overall)
		for _, c := range output.Components {
			icon := "✓"
			if c.State != "healthy" {
				icon = "✗"
			}
			fmt.Fprintf(w, "  %s %s: %s (%dms)\n", icon, c.Name, c.State, c.LatencyMs)
			if c.Message != "" {
				fmt.Fprintf(w, "      %s\n", c.Message)
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
