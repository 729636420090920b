package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/vijay-prabhu/rfb-agreement/internal/agreement"
	"github.com/vijay-prabhu/rfb-agreement/internal/fuzzy"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "RFBAGREE_"

// Load reads and parses the configuration file. A missing file yields the defaults;
// environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		expandedPath, err := expandPath(path)
		if err != nil {
			return nil, fmt.Errorf("failed to expand config path: %w", err)
		}

		data, err := os.ReadFile(expandedPath)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case os.IsNotExist(err):
			// defaults
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, fmt.Errorf("invalid environment override: %w", err)
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, fmt.Errorf("failed to expand paths: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadDotEnv loads KEY=VALUE pairs from path into the process environment without
// overriding variables that are already set.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides fields from RFBAGREE_* variables
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strVars := map[string]*string{
		"INPUT_ROOT":     &c.Input.Root,
		"ANNOTATOR_A":    &c.Input.AnnotatorA,
		"ANNOTATOR_B":    &c.Input.AnnotatorB,
		"DIR_A":          &c.Input.DirA,
		"DIR_B":          &c.Input.DirB,
		"SCORER":         &c.Matching.Scorer,
		"POLICY":         &c.Scoring.Policy,
		"RESULTS_PATH":   &c.Output.ResultsPath,
		"REPORT_PATH":    &c.Output.ReportPath,
		"HISTOGRAM_PATH": &c.Output.HistogramPath,
		"DB_PATH":        &c.Database.Path,
		"LOG_LEVEL":      &c.Logging.Level,
		"LOG_FORMAT":     &c.Logging.Format,
	}
	for name, dst := range strVars {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}

	if v, ok := lookup(EnvPrefix + "THRESHOLD"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sTHRESHOLD: %w", EnvPrefix, err)
		}
		c.Matching.Threshold = n
	}

	boolVars := map[string]*bool{
		"INCLUDE_SKIPS": &c.Input.IncludeSkips,
		"SAVE_RUNS":     &c.Database.SaveRuns,
	}
	for name, dst := range boolVars {
		if v, ok := lookup(EnvPrefix + name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
			}
			*dst = b
		}
	}
	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, path[1:]), nil
}

// expandPaths expands ~ in all path fields
func (c *Config) expandPaths() error {
	paths := []*string{
		&c.Input.Root,
		&c.Input.DirA,
		&c.Input.DirB,
		&c.Output.ResultsPath,
		&c.Output.ReportPath,
		&c.Output.HistogramPath,
		&c.Database.Path,
	}
	for _, p := range paths {
		expanded, err := expandPath(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}
	return nil
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	// Input validation
	if c.Input.DirA == "" && (c.Input.Root == "" || c.Input.AnnotatorA == "") {
		errs = append(errs, errors.New("input.dir_a or input.root with input.annotator_a is required"))
	}
	if c.Input.DirB == "" && (c.Input.Root == "" || c.Input.AnnotatorB == "") {
		errs = append(errs, errors.New("input.dir_b or input.root with input.annotator_b is required"))
	}
	if c.Input.Workers < 0 {
		errs = append(errs, errors.New("input.workers must not be negative"))
	}

	// Matching validation
	if _, err := fuzzy.ScorerByName(c.Matching.Scorer); err != nil {
		errs = append(errs, fmt.Errorf("matching.scorer: %w", err))
	}
	if c.Matching.Threshold < 0 || c.Matching.Threshold > 100 {
		errs = append(errs, errors.New("matching.threshold must be between 0 and 100"))
	}

	// Scoring validation
	if _, err := agreement.ParsePolicy(c.Scoring.Policy); err != nil {
		errs = append(errs, fmt.Errorf("scoring.policy: %w", err))
	}
	if c.Scoring.Workers < 0 {
		errs = append(errs, errors.New("scoring.workers must not be negative"))
	}

	// Database validation
	if c.Database.SaveRuns && c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required when database.save_runs is enabled"))
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Errorf("logging.level must be debug, info, warn or error, got '%s'", c.Logging.Level))
	}
	validFormats := map[string]bool{"console": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Errorf("logging.format must be 'console' or 'json', got '%s'", c.Logging.Format))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// MatcherOptions converts the matching section for the agreement package
func (c *Config) MatcherOptions() agreement.MatcherOptions {
	return agreement.MatcherOptions{
		Scorer:    c.Matching.Scorer,
		Process:   c.Matching.Process,
		Separator: c.Matching.Separator,
	}
}

// ScorerOptions converts the matching and scoring sections for the agreement package
func (c *Config) ScorerOptions() agreement.Options {
	return agreement.Options{
		Matcher:   c.MatcherOptions(),
		Threshold: c.Matching.Threshold,
		Policy:    agreement.Policy(c.Scoring.Policy),
	}
}

// EnsureDirectories creates necessary directories for the database
func (c *Config) EnsureDirectories() error {
	if !c.Database.SaveRuns {
		return nil
	}
	dir := filepath.Dir(c.Database.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}
