package config

import "path/filepath"

// Config represents the application configuration
type Config struct {
	Input    InputConfig    `toml:"input"`
	Matching MatchingConfig `toml:"matching"`
	Scoring  ScoringConfig  `toml:"scoring"`
	Output   OutputConfig   `toml:"output"`
	Database DatabaseConfig `toml:"database"`
	Logging  LoggingConfig  `toml:"logging"`
}

// InputConfig locates the two annotators' record directories
type InputConfig struct {
	Root         string `toml:"root"`
	AnnotatorA   string `toml:"annotator_a"`
	AnnotatorB   string `toml:"annotator_b"`
	DirA         string `toml:"dir_a"` // overrides root/annotator_a when set
	DirB         string `toml:"dir_b"`
	IncludeSkips bool   `toml:"include_skips"`
	Workers      int    `toml:"workers"`
}

// AnnotatorDirs returns the directories holding each annotator's records
func (c InputConfig) AnnotatorDirs() (string, string) {
	dirA, dirB := c.DirA, c.DirB
	if dirA == "" {
		dirA = filepath.Join(c.Root, c.AnnotatorA)
	}
	if dirB == "" {
		dirB = filepath.Join(c.Root, c.AnnotatorB)
	}
	return dirA, dirB
}

// MatchingConfig contains fuzzy pair matching settings
type MatchingConfig struct {
	Scorer    string `toml:"scorer"`
	Threshold int    `toml:"threshold"`
	Separator string `toml:"separator"`
	Process   bool   `toml:"process"`
}

// ScoringConfig contains per-frame scoring settings
type ScoringConfig struct {
	Policy  string `toml:"policy"`
	Workers int    `toml:"workers"`
}

// OutputConfig contains output file locations
type OutputConfig struct {
	ResultsPath   string `toml:"results_path"`
	ReportPath    string `toml:"report_path"`
	HistogramPath string `toml:"histogram_path"`
}

// DatabaseConfig contains run history settings
type DatabaseConfig struct {
	Path     string `toml:"path"`
	SaveRuns bool   `toml:"save_runs"`
}

// LoggingConfig contains logger settings
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Root:       "./annotations",
			AnnotatorA: "20019",
			AnnotatorB: "20017",
		},
		Matching: MatchingConfig{
			Scorer:    "wratio",
			Threshold: 90,
			Separator: "_",
			Process:   true,
		},
		Scoring: ScoringConfig{
			Policy: "mean",
		},
		Output: OutputConfig{
			ResultsPath: "results.csv",
		},
		Database: DatabaseConfig{
			Path:     "~/.local/share/rfbagree/history.db",
			SaveRuns: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
