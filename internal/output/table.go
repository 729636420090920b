package output

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/vijay-prabhu/rfb-agreement/internal/database"
	"github.com/vijay-prabhu/rfb-agreement/internal/report"
)

// Table writes data as a formatted table to stdout
func Table(data interface{}) error {
	return TableTo(os.Stdout, data)
}

// TableTo writes data as a formatted table to the given writer
func TableTo(w io.Writer, data interface{}) error {
	switch v := data.(type) {
	case report.Summary:
		return summaryTable(w, v)
	case *report.Summary:
		return summaryTable(w, *v)
	case report.CorpusMetrics:
		return metricsTable(w, v)
	case []database.Run:
		return runsTable(w, v)
	case *database.Run:
		return runDetail(w, v)
	default:
		return fmt.Errorf("unsupported data type for table output: %T", data)
	}
}

func summaryTable(w io.Writer, s report.Summary) error {
	m := s.Metrics
	table := tablewriter.NewWriter(w)
	table.Header("Metric", "Mean", "Std Dev")

	rows := [][]string{
		{"keys", formatFloat(m.Averages.Keys), formatFloat(s.Spread.Keys)},
		{"vals", formatFloat(m.Averages.Vals), formatFloat(s.Spread.Vals)},
		{"pairs", formatFloat(m.Averages.Pairs), formatFloat(s.Spread.Pairs)},
		{"total", formatFloat(m.Averages.Total), formatFloat(s.Spread.Total)},
	}
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Fprintf(w, "Frames:             %d\n", s.Frames)
	fmt.Fprintf(w, "Zero agreement:     %s (%d frames)\n", formatPercent(m.ZeroAgreement), s.Buckets.Zero)
	fmt.Fprintf(w, "Partial agreement:  %d frames\n", s.Buckets.Partial)
	fmt.Fprintf(w, "Perfect agreement:  %s (%d frames)\n", formatPercent(m.PerfectAgreement), s.Buckets.Perfect)
	return nil
}

func metricsTable(w io.Writer, m report.CorpusMetrics) error {
	table := tablewriter.NewWriter(w)
	table.Header("Metric", "Value")

	rows := [][]string{
		{"zero_agreement", formatFloat(m.ZeroAgreement)},
		{"perfect_agreement", formatFloat(m.PerfectAgreement)},
		{"avg keys", formatFloat(m.Averages.Keys)},
		{"avg vals", formatFloat(m.Averages.Vals)},
		{"avg pairs", formatFloat(m.Averages.Pairs)},
		{"avg total", formatFloat(m.Averages.Total)},
	}
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func runsTable(w io.Writer, runs []database.Run) error {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs found.")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("ID", "Created", "Label", "Frames", "Policy", "Scorer", "Avg Total")

	for _, r := range runs {
		label := ""
		if r.Label != nil {
			label = truncate(*r.Label, 24)
		}
		row := []string{
			shortID(r.ID),
			r.CreatedAt.Format("2006-01-02 15:04"),
			label,
			strconv.Itoa(r.FrameCount),
			r.Policy,
			fmt.Sprintf("%s>%d", r.Scorer, r.Threshold),
			formatFloat(r.Metrics.Averages.Total),
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func runDetail(w io.Writer, r *database.Run) error {
	fmt.Fprintf(w, "Run:         %s\n", r.ID)
	if r.Label != nil && *r.Label != "" {
		fmt.Fprintf(w, "Label:       %s\n", *r.Label)
	}
	fmt.Fprintf(w, "Created:     %s\n", r.CreatedAt.Format("Jan 02, 2006 15:04"))
	fmt.Fprintf(w, "Annotator A: %s\n", r.DirA)
	fmt.Fprintf(w, "Annotator B: %s\n", r.DirB)
	fmt.Fprintf(w, "Skips:       %t\n", r.IncludeSkips)
	fmt.Fprintf(w, "Matching:    %s, threshold %d\n", r.Scorer, r.Threshold)
	fmt.Fprintf(w, "Policy:      %s\n", r.Policy)
	fmt.Fprintf(w, "Frames:      %d\n", r.FrameCount)
	fmt.Fprintln(w)

	return metricsTable(w, r.Metrics)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v*100, 'f', 1, 64) + "%"
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
