package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/rfb-agreement/internal/report"
)

var disagreementsCmd = &cobra.Command{
	Use:   "disagreements",
	Short: "List frames the annotators did not fully agree on",
	Long: `Disagreements filters a results CSV down to the frames whose keys,
vals, pairs or total score is below 1, for manual adjudication.

Examples:
  rfbagree disagreements -i results.csv
  rfbagree disagreements -i results.csv --out-file review.csv`,
	RunE: runDisagreements,
}

var (
	disagreementsInFile  string
	disagreementsOutFile string
)

func init() {
	rootCmd.AddCommand(disagreementsCmd)

	disagreementsCmd.Flags().StringVarP(&disagreementsInFile, "in-file", "i", "", "Per-frame results CSV (default: output.results_path)")
	disagreementsCmd.Flags().StringVar(&disagreementsOutFile, "out-file", "", "Write disagreeing frames to this CSV instead of stdout")
}

func runDisagreements(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	inFile := cfg.Output.ResultsPath
	if disagreementsInFile != "" {
		inFile = disagreementsInFile
	}

	results, err := readResultsFile(inFile)
	if err != nil {
		return err
	}
	disputed := report.Disagreements(results)
	logger.Info("disagreements found", "frames", len(disputed), "total", len(results))

	if disagreementsOutFile == "" {
		return report.WriteResults(cmd.OutOrStdout(), disputed)
	}
	if err := writeResultsFile(disagreementsOutFile, disputed); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d of %d frames written to %s\n", len(disputed), len(results), disagreementsOutFile)
	return nil
}
