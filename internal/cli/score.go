package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/rfb-agreement/internal/agreement"
	"github.com/vijay-prabhu/rfb-agreement/internal/annotation"
	"github.com/vijay-prabhu/rfb-agreement/internal/config"
	"github.com/vijay-prabhu/rfb-agreement/internal/database"
	"github.com/vijay-prabhu/rfb-agreement/internal/output"
	"github.com/vijay-prabhu/rfb-agreement/internal/report"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score agreement between two annotators",
	Long: `Score loads both annotators' records, scores every frame and prints
the corpus report. Per-frame scores are written to a CSV file.

Frames only one annotator labelled score 0; frames neither labelled score 1.

With --output json, stdout carries the run summary:
  {"frames": n, "metrics": {...}, "buckets": {...}, "spread": {...}}
where "metrics" is the corpus report itself. The --report file holds only
the corpus report ({"zero_agreement", "perfect_agreement", "averages"}).

Examples:
  rfbagree score -i ./annotations --annotator-a 20019 --annotator-b 20017
  rfbagree score --a-dir ./alice --b-dir ./bob --skip
  rfbagree score --policy product --scorer ratio --threshold 85
  rfbagree score --report report.json --histogram totals.png --save --label pilot`,
	RunE: runScore,
}

var (
	scoreInDir      string
	scoreAnnotatorA string
	scoreAnnotatorB string
	scoreDirA       string
	scoreDirB       string
	scoreSkip       bool
	scoreOutFile    string
	scoreReport     string
	scorePolicy     string
	scoreScorer     string
	scoreThreshold  int
	scoreWorkers    int
	scoreHistogram  string
	scoreSave       bool
	scoreLabel      string
)

func init() {
	rootCmd.AddCommand(scoreCmd)

	f := scoreCmd.Flags()
	f.StringVarP(&scoreInDir, "in-dir", "i", "", "Directory holding one sub-directory per annotator")
	f.StringVar(&scoreAnnotatorA, "annotator-a", "", "Reference annotator sub-directory")
	f.StringVar(&scoreAnnotatorB, "annotator-b", "", "Second annotator sub-directory")
	f.StringVar(&scoreDirA, "a-dir", "", "Annotator A directory (overrides --in-dir/--annotator-a)")
	f.StringVar(&scoreDirB, "b-dir", "", "Annotator B directory (overrides --in-dir/--annotator-b)")
	f.BoolVarP(&scoreSkip, "skip", "s", false, "Include frames an annotator skipped")
	f.StringVar(&scoreOutFile, "out-file", "", "Per-frame results CSV")
	f.StringVar(&scoreReport, "report", "", "Write the corpus report as JSON to this file")
	f.StringVar(&scorePolicy, "policy", "", "Combination policy (mean, product)")
	f.StringVar(&scoreScorer, "scorer", "", "Pair similarity scorer (e.g. wratio, ratio)")
	f.IntVar(&scoreThreshold, "threshold", 0, "Pair match threshold (0-100)")
	f.IntVar(&scoreWorkers, "workers", 0, "Parallel workers for loading and scoring (0 = number of CPUs)")
	f.StringVar(&scoreHistogram, "histogram", "", "Write a total agreement histogram to this file")
	f.BoolVar(&scoreSave, "save", false, "Save the run to the history database")
	f.StringVar(&scoreLabel, "label", "", "Label stored with a saved run")
}

// applyScoreFlags overrides configuration with the flags given on the command line
func applyScoreFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	strFlags := []struct {
		name string
		val  string
		dst  *string
	}{
		{"in-dir", scoreInDir, &cfg.Input.Root},
		{"annotator-a", scoreAnnotatorA, &cfg.Input.AnnotatorA},
		{"annotator-b", scoreAnnotatorB, &cfg.Input.AnnotatorB},
		{"a-dir", scoreDirA, &cfg.Input.DirA},
		{"b-dir", scoreDirB, &cfg.Input.DirB},
		{"out-file", scoreOutFile, &cfg.Output.ResultsPath},
		{"report", scoreReport, &cfg.Output.ReportPath},
		{"policy", scorePolicy, &cfg.Scoring.Policy},
		{"scorer", scoreScorer, &cfg.Matching.Scorer},
		{"histogram", scoreHistogram, &cfg.Output.HistogramPath},
	}
	for _, sf := range strFlags {
		if flags.Changed(sf.name) {
			*sf.dst = sf.val
		}
	}

	if flags.Changed("skip") {
		cfg.Input.IncludeSkips = scoreSkip
	}
	if flags.Changed("threshold") {
		cfg.Matching.Threshold = scoreThreshold
	}
	if flags.Changed("workers") {
		cfg.Input.Workers = scoreWorkers
		cfg.Scoring.Workers = scoreWorkers
	}
	if flags.Changed("save") {
		cfg.Database.SaveRuns = scoreSave
	}

	return cfg.Validate()
}

func runScore(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyScoreFlags(cmd, cfg); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	scorer, err := agreement.NewScorer(cfg.ScorerOptions())
	if err != nil {
		return err
	}

	terminal := NewTerminal(cmd.ErrOrStderr())
	progress := terminal.Progress()

	// Load
	dirA, dirB := cfg.Input.AnnotatorDirs()
	logger.Info("loading annotations", "dir_a", dirA, "dir_b", dirB, "include_skips", cfg.Input.IncludeSkips)
	progress(agreement.Progress{Phase: agreement.PhaseLoading, StartedAt: time.Now()})

	frames, err := annotation.Load(ctx, dirA, dirB, annotation.LoadOptions{
		IncludeSkips: cfg.Input.IncludeSkips,
		Workers:      cfg.Input.Workers,
		Logger:       logger,
	})
	terminal.ClearLine()
	if err != nil {
		return fmt.Errorf("failed to load annotations: %w", err)
	}
	logger.Debug("frames loaded", "count", len(frames))

	// Score
	results, err := scorer.ScoreAll(ctx, frames, agreement.BatchOptions{
		Workers:  cfg.Scoring.Workers,
		Progress: progress,
	})
	terminal.ClearLine()
	if err != nil {
		return fmt.Errorf("scoring failed: %w", err)
	}

	if err := writeResultsFile(cfg.Output.ResultsPath, results); err != nil {
		return err
	}
	logger.Info("per-frame results written", "path", cfg.Output.ResultsPath, "frames", len(results))

	// Aggregate
	progress(agreement.Progress{Phase: agreement.PhaseAggregating, Total: len(results)})
	acc := report.Accumulate(results)
	summary, err := acc.Summary()
	terminal.ClearLine()
	if err != nil {
		return err
	}

	if err := writeArtifacts(cfg, acc, summary, logger); err != nil {
		return err
	}

	if cfg.Database.SaveRuns {
		run := &database.Run{
			DirA:         dirA,
			DirB:         dirB,
			IncludeSkips: cfg.Input.IncludeSkips,
			Policy:       string(scorer.Policy()),
			Scorer:       cfg.Matching.Scorer,
			Threshold:    cfg.Matching.Threshold,
			Metrics:      summary.Metrics,
		}
		if scoreLabel != "" {
			label := scoreLabel
			run.Label = &label
		}
		if err := saveRun(cmd, cfg, run, results); err != nil {
			return err
		}
		logger.Info("run saved", "id", run.ID)
	}

	return output.OutputTo(cmd.OutOrStdout(), outputFmt, summary)
}

// writeArtifacts writes the optional report JSON and histogram
func writeArtifacts(cfg *config.Config, acc *report.Accumulator, summary report.Summary, logger *slog.Logger) error {
	if path := cfg.Output.ReportPath; path != "" {
		if err := output.JSONFile(path, summary.Metrics); err != nil {
			return err
		}
		logger.Info("report written", "path", path)
	}
	if path := cfg.Output.HistogramPath; path != "" {
		if err := output.Histogram(path, acc.Totals(), "Total agreement per frame"); err != nil {
			return err
		}
		logger.Info("histogram written", "path", path)
	}
	return nil
}

func saveRun(cmd *cobra.Command, cfg *config.Config, run *database.Run, results map[string]agreement.FrameAgreement) error {
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.SaveRun(cmd.Context(), run, results); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

func writeResultsFile(path string, results map[string]agreement.FrameAgreement) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create results file: %w", err)
	}
	if err := report.WriteResults(f, results); err != nil {
		f.Close()
		return fmt.Errorf("failed to write results: %w", err)
	}
	return f.Close()
}

func readResultsFile(path string) (map[string]agreement.FrameAgreement, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open results file: %w", err)
	}
	defer f.Close()

	results, err := report.ReadResults(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return results, nil
}
