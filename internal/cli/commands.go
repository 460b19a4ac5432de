package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/VXerys/artconnect-crm-sub001/internal/domain"
	"github.com/VXerys/artconnect-crm-sub001/internal/reports"
	"github.com/VXerys/artconnect-crm-sub001/migrations"
)

type globalFlags struct {
	configFile string
	endpoint   string
	subject    string
	roles      string
	format     string
}

// loadConfig reads configuration and applies non-empty flag overrides.
func (g *globalFlags) loadConfig() (*Config, error) {
	cfg, err := Load(g.configFile)
	if err != nil {
		return nil, err
	}
	if g.endpoint != "" {
		cfg.Endpoint = strings.TrimRight(g.endpoint, "/")
	}
	if g.subject != "" {
		cfg.Subject = g.subject
	}
	if g.roles != "" {
		cfg.Roles = g.roles
	}
	if g.format != "" {
		cfg.OutputFormat = g.format
	}
	return cfg, nil
}

// RootCommand builds the artconnect-cli command tree.
func RootCommand(version string) *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "artconnect-cli",
		Short:         "Operator tool for the ArtConnect service",
		Long:          "artconnect-cli runs database migrations, seeds demo data, renders report files offline, checks service health and generates or lists reports through the ArtConnect API.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&g.configFile, "config", "", "Config file (default ~/.artconnect/config.yaml)")
	flags.StringVar(&g.endpoint, "endpoint", "", "API base URL (overrides config)")
	flags.StringVar(&g.subject, "subject", "", "Actor subject sent as X-Actor-Subject (overrides config)")
	flags.StringVar(&g.roles, "roles", "", "Comma-separated actor roles (overrides config)")
	flags.StringVar(&g.format, "format", "", "Output format: table or json (overrides config)")

	root.AddCommand(migrateCommand(g))
	root.AddCommand(reportCommand(g))
	root.AddCommand(seedCommand(g))
	root.AddCommand(statusCommand(g))
	return root
}

func migrateCommand(g *globalFlags) *cobra.Command {
	var databaseURL string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Postgres URL (overrides config)")

	run := func(action func(context.Context, *sql.DB) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			if databaseURL != "" {
				cfg.DatabaseURL = databaseURL
			}
			db, err := sql.Open("postgres", cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			return action(ctx, db)
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE:  run(migrations.Up),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE:  run(migrations.Down),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		RunE:  run(migrations.Status),
	})
	return cmd
}

func reportCommand(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render, generate and list reports",
	}
	cmd.AddCommand(reportRenderCommand())
	cmd.AddCommand(reportGenerateCommand(g))
	cmd.AddCommand(reportListCommand(g))
	return cmd
}

func reportRenderCommand() *cobra.Command {
	var (
		input      string
		output     string
		format     string
		reportType string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a report JSON file to html, csv or excel",
		Long: `Render reads either a stored report (as returned by the API) or a bare
formatted report with title, summary and sections, and writes the
encoded file. Without --output the file is written to the current
directory under its download name.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDocument(input, domain.ReportType(reportType))
			if err != nil {
				return err
			}
			exportFormat := domain.ExportFormat(strings.ToLower(format))
			artifact, err := reports.Render(exportFormat, doc)
			if err != nil {
				return err
			}

			path := output
			if path == "" || isDir(path) {
				path = filepath.Join(path, reports.Filename(doc, exportFormat, artifact.Extension))
			}
			if err := os.WriteFile(path, artifact.Body, 0o600); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Report JSON file (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file or directory")
	cmd.Flags().StringVar(&format, "as", "html", "Encoding: html, csv or excel")
	cmd.Flags().StringVar(&reportType, "type", string(domain.ReportComprehensive), "Report type for bare formatted reports")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

// loadDocument decodes a stored report, or a bare formatted report when the
// file has no content object.
func loadDocument(path string, fallbackType domain.ReportType) (reports.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return reports.Document{}, fmt.Errorf("read %s: %w", path, err)
	}

	var stored domain.Report
	if err := json.Unmarshal(data, &stored); err != nil {
		return reports.Document{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if stored.Content.Title != "" {
		return reports.DocumentFromReport(stored), nil
	}

	var bare domain.FormattedReport
	if err := json.Unmarshal(data, &bare); err != nil {
		return reports.Document{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if strings.TrimSpace(bare.Title) == "" {
		return reports.Document{}, fmt.Errorf("%s: report has no title", path)
	}
	if !domain.ValidReportType(fallbackType) {
		return reports.Document{}, fmt.Errorf("unknown report type %q", fallbackType)
	}
	return reports.Document{
		Report:      bare,
		Type:        fallbackType,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func reportGenerateCommand(g *globalFlags) *cobra.Command {
	var (
		artist     string
		reportType string
		start      string
		end        string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate and store a report through the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			artistID, err := resolveArtist(artist, cfg)
			if err != nil {
				return err
			}
			report, err := NewClient(cfg).GenerateReport(cmd.Context(), artistID, GenerateRequest{
				Type:        reportType,
				PeriodStart: start,
				PeriodEnd:   end,
			})
			if err != nil {
				return err
			}
			return PrintReport(cmd.OutOrStdout(), cfg.OutputFormat, report)
		},
	}
	cmd.Flags().StringVar(&artist, "artist", "", "Artist ID (defaults to the configured subject)")
	cmd.Flags().StringVar(&reportType, "type", string(domain.ReportComprehensive), "Report type: sales, inventory, network, comprehensive")
	cmd.Flags().StringVar(&start, "start", "", "Period start, YYYY-MM-DD")
	cmd.Flags().StringVar(&end, "end", "", "Period end, YYYY-MM-DD")
	return cmd
}

func reportListCommand(g *globalFlags) *cobra.Command {
	var (
		artist     string
		reportType string
		limit      int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored reports through the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			artistID, err := resolveArtist(artist, cfg)
			if err != nil {
				return err
			}
			items, err := NewClient(cfg).ListReports(cmd.Context(), artistID, reportType, limit)
			if err != nil {
				return err
			}
			return PrintReports(cmd.OutOrStdout(), cfg.OutputFormat, items)
		},
	}
	cmd.Flags().StringVar(&artist, "artist", "", "Artist ID (defaults to the configured subject)")
	cmd.Flags().StringVar(&reportType, "type", "", "Only reports of this type")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of reports")
	return cmd
}

func resolveArtist(flag string, cfg *Config) (uuid.UUID, error) {
	raw := flag
	if raw == "" {
		raw = cfg.Subject
	}
	if raw == "" {
		return uuid.Nil, fmt.Errorf("--artist is required when no subject is configured")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("artist %q is not a UUID", raw)
	}
	return id, nil
}
