package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/rfb-agreement/internal/database"
	"github.com/vijay-prabhu/rfb-agreement/internal/output"
	"github.com/vijay-prabhu/rfb-agreement/internal/report"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Browse saved scoring runs",
	Long: `Runs saved with 'rfbagree score --save' (or database.save_runs) are
kept in a local sqlite database together with their per-frame scores.

Examples:
  rfbagree runs list --since=7d
  rfbagree runs show 0f8c2b6e
  rfbagree runs export 0f8c2b6e --out-file pilot.csv
  rfbagree runs delete 0f8c2b6e`,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved runs, newest first",
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a saved run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var runsExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Write a saved run's per-frame scores as CSV",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsExport,
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsDelete,
}

var (
	runsSince   string
	runsLabel   string
	runsLimit   int
	runsFrames  bool
	runsOutFile string
)

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd, runsShowCmd, runsExportCmd, runsDeleteCmd)

	runsListCmd.Flags().StringVar(&runsSince, "since", "", "Only runs within this period (e.g., 7d, 2w, 1m)")
	runsListCmd.Flags().StringVar(&runsLabel, "label", "", "Only runs whose label contains this text")
	runsListCmd.Flags().IntVar(&runsLimit, "limit", 20, "Maximum runs to show (0 = all)")

	runsShowCmd.Flags().BoolVar(&runsFrames, "frames", false, "Include per-frame scores (JSON output)")

	runsExportCmd.Flags().StringVar(&runsOutFile, "out-file", "", "Write to this CSV instead of stdout")
}

func openHistory(cmd *cobra.Command) (*database.DB, error) {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func runRunsList(cmd *cobra.Command, args []string) error {
	db, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	opts := database.RunListOptions{Limit: runsLimit}
	if runsSince != "" {
		d, err := parseDuration(runsSince)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		since := time.Now().Add(-d)
		opts.Since = &since
	}
	if runsLabel != "" {
		opts.Label = &runsLabel
	}

	runs, err := db.ListRuns(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if runs == nil {
		runs = []database.Run{}
	}
	return output.OutputTo(cmd.OutOrStdout(), outputFmt, runs)
}

// RunDetail is the JSON form of a run with its per-frame scores
type RunDetail struct {
	*database.Run
	Frames []database.FrameScore `json:"frames,omitempty"`
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	db, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	id, err := db.ResolveRunID(ctx, args[0])
	if err != nil {
		return err
	}
	run, err := db.GetRun(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}
	if run == nil {
		return fmt.Errorf("run not found: %s", id)
	}

	if outputFmt != "json" {
		return output.OutputTo(cmd.OutOrStdout(), outputFmt, run)
	}

	detail := RunDetail{Run: run}
	if runsFrames {
		detail.Frames, err = db.ListFrameScores(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get frame scores: %w", err)
		}
	}
	return output.JSONTo(cmd.OutOrStdout(), detail)
}

func runRunsExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	db, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	id, err := db.ResolveRunID(ctx, args[0])
	if err != nil {
		return err
	}
	frames, err := db.GetFrameScores(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get frame scores: %w", err)
	}

	if runsOutFile == "" {
		return report.WriteResults(cmd.OutOrStdout(), frames)
	}
	if err := writeResultsFile(runsOutFile, frames); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d frames to %s\n", len(frames), runsOutFile)
	return nil
}

func runRunsDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	db, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	id, err := db.ResolveRunID(ctx, args[0])
	if err != nil {
		return err
	}
	if err := db.DeleteRun(ctx, id); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", id)
	return nil
}

// parseDuration parses durations like "7d", "2w", "1m"
func parseDuration(s string) (time.Duration, error) {
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid duration format")
	}

	unit := s[len(s)-1]
	valueStr := s[:len(s)-1]

	var value int
	if _, err := fmt.Sscanf(valueStr, "%d", &value); err != nil {
		return 0, fmt.Errorf("invalid duration value")
	}

	switch unit {
	case 'd':
		return time.Duration(value) * 24 * time.Hour, nil
	case 'w':
		return time.Duration(value) * 7 * 24 * time.Hour, nil
	case 'm':
		return time.Duration(value) * 30 * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("unknown duration unit: %c (use d, w, or m)", unit)
	}
}
