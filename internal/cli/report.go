package cli

import (
	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/rfb-agreement/internal/output"
	"github.com/vijay-prabhu/rfb-agreement/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Recompute the corpus report from a results CSV",
	Long: `Report reads per-frame scores written by 'rfbagree score' and
recomputes the corpus metrics without re-reading any annotations.

Examples:
  rfbagree report -i results.csv
  rfbagree report -i results.csv --out-file report.json --histogram totals.svg
  rfbagree report -i results.csv -o json`,
	RunE: runReport,
}

var (
	reportInFile    string
	reportOutFile   string
	reportHistogram string
)

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportInFile, "in-file", "i", "", "Per-frame results CSV (default: output.results_path)")
	reportCmd.Flags().StringVar(&reportOutFile, "out-file", "", "Write the corpus report as JSON to this file")
	reportCmd.Flags().StringVar(&reportHistogram, "histogram", "", "Write a total agreement histogram to this file")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	inFile := cfg.Output.ResultsPath
	if reportInFile != "" {
		inFile = reportInFile
	}
	if cmd.Flags().Changed("out-file") {
		cfg.Output.ReportPath = reportOutFile
	}
	if cmd.Flags().Changed("histogram") {
		cfg.Output.HistogramPath = reportHistogram
	}

	results, err := readResultsFile(inFile)
	if err != nil {
		return err
	}
	logger.Debug("results loaded", "path", inFile, "frames", len(results))

	acc := report.Accumulate(results)
	summary, err := acc.Summary()
	if err != nil {
		return err
	}

	if err := writeArtifacts(cfg, acc, summary, logger); err != nil {
		return err
	}

	return output.OutputTo(cmd.OutOrStdout(), outputFmt, summary)
}
