package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/VXerys/artconnect-crm-sub001/internal/domain"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// PrintReports writes reports as a table or as JSON.
func PrintReports(w io.Writer, format string, items []domain.Report) error {
	switch format {
	case FormatJSON:
		if items == nil {
			items = []domain.Report{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	case FormatTable, "":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTYPE\tPERIOD\tTITLE\tAI\tCREATED")
		for _, r := range items {
			fmt.Fprintf(tw, "%s\t%s\t%s..%s\t%s\t%s\t%s\n",
				r.ID,
				r.Type,
				r.PeriodStart.Format("2006-01-02"),
				r.PeriodEnd.Format("2006-01-02"),
				r.Content.Title,
				yesNo(r.AIGenerated),
				r.CreatedAt.Format("2006-01-02 15:04"),
			)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unsupported output format %q (want table or json)", format)
	}
}

// PrintReport writes one report: JSON, or a short human summary.
func PrintReport(w io.Writer, format string, r *domain.Report) error {
	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	if format != FormatTable && format != "" {
		return fmt.Errorf("unsupported output format %q (want table or json)", format)
	}
	fmt.Fprintf(w, "%s\n\n%s\n", r.Content.Title, r.Content.Summary)
	for _, s := range r.Content.Sections {
		fmt.Fprintf(w, "\n## %s\n%s\n", s.Title, s.Content)
	}
	if len(r.Content.Recommendations) > 0 {
		fmt.Fprintln(w, "\nRekomendasi:")
		for _, rec := range r.Content.Recommendations {
			fmt.Fprintf(w, "- %s\n", rec)
		}
	}
	fmt.Fprintf(w, "\nid: %s  ai: %s\n", r.ID, yesNo(r.AIGenerated))
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
