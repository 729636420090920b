package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/rfb-agreement/internal/config"
	"github.com/vijay-prabhu/rfb-agreement/internal/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective configuration",
	Long: `Display the configuration after defaults, the config file and
RFBAGREE_* environment overrides have been applied.`,
	RunE: runConfigShow,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		fmt.Fprintf(out, "Config file already exists at %s\n", configPath)
		fmt.Fprintln(out, "Use 'rfbagree config show' to view current configuration")
		return nil
	}

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(out, "Created config file at %s\n", configPath)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  1. Point [input] root at the directory holding one folder per annotator")
	fmt.Fprintln(out, "  2. Set annotator_a and annotator_b to the two folder names")
	fmt.Fprintln(out, "  3. Run 'rfbagree score' to compute agreement")

	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if outputFmt == "json" {
		return output.JSONTo(out, cfg)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	fmt.Fprintf(out, "# Config file: %s\n\n", configPath)
	fmt.Fprint(out, string(data))
	return nil
}

const defaultConfig = `# rfbagree configuration
# Every setting can be overridden with an RFBAGREE_* environment variable
# (for example RFBAGREE_THRESHOLD=85) or a command-line flag.

[input]
root = "./annotations"     # one sub-directory per annotator
annotator_a = "20019"      # reference annotator; key and value agreement use its counts
annotator_b = "20017"
# dir_a = ""               # explicit directories override root/annotator_*
# dir_b = ""
include_skips = false      # score frames an annotator skipped
workers = 0                # parallel file reads (0 = number of CPUs)

[matching]
scorer = "wratio"          # ratio, partial_ratio, token_sort_ratio, token_set_ratio, partial_token_ratio, wratio
threshold = 90             # a pair match must score above this (0-100)
separator = "_"            # joins role and filler before comparison
process = true             # lowercase and strip punctuation before scoring

[scoring]
policy = "mean"            # mean or product of keys, vals and pairs
workers = 0                # parallel frame scoring (0 = number of CPUs)

[output]
results_path = "results.csv"
report_path = ""           # corpus report JSON, written when set
histogram_path = ""        # total agreement histogram (png, svg, pdf), written when set

[database]
path = "~/.local/share/rfbagree/history.db"
save_runs = false          # keep every scoring run in the history database

[logging]
level = "info"             # debug, info, warn, error
format = "console"         # console or json
`
