package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vijay-prabhu/rfb-agreement/internal/agreement"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Matching.Threshold != 90 {
		t.Errorf("expected Threshold=90, got %d", cfg.Matching.Threshold)
	}

	if cfg.Matching.Scorer != "wratio" {
		t.Errorf("expected Scorer=wratio, got %s", cfg.Matching.Scorer)
	}

	if cfg.Scoring.Policy != "mean" {
		t.Errorf("expected Policy=mean, got %s", cfg.Scoring.Policy)
	}

	if cfg.Input.IncludeSkips {
		t.Error("expected IncludeSkips=false")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "explicit dirs without root",
			modify: func(c *Config) {
				c.Input.Root = ""
				c.Input.DirA = "/data/a"
				c.Input.DirB = "/data/b"
			},
			wantErr: false,
		},
		{
			name: "missing annotator",
			modify: func(c *Config) {
				c.Input.AnnotatorB = ""
			},
			wantErr: true,
		},
		{
			name: "invalid threshold",
			modify: func(c *Config) {
				c.Matching.Threshold = 101
			},
			wantErr: true,
		},
		{
			name: "invalid scorer",
			modify: func(c *Config) {
				c.Matching.Scorer = "soundex"
			},
			wantErr: true,
		},
		{
			name: "invalid policy",
			modify: func(c *Config) {
				c.Scoring.Policy = "median"
			},
			wantErr: true,
		},
		{
			name: "negative workers",
			modify: func(c *Config) {
				c.Scoring.Workers = -2
			},
			wantErr: true,
		},
		{
			name: "save runs without database path",
			modify: func(c *Config) {
				c.Database.SaveRuns = true
				c.Database.Path = ""
			},
			wantErr: true,
		},
		{
			name: "invalid log format",
			modify: func(c *Config) {
				c.Logging.Format = "xml"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		input    string
		expected string
	}{
		{"~/test", filepath.Join(home, "test")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
	}

	for _, tt := range tests {
		result, err := expandPath(tt.input)
		if err != nil {
			t.Errorf("expandPath(%q) error: %v", tt.input, err)
		}
		if result != tt.expected {
			t.Errorf("expandPath(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestAnnotatorDirs(t *testing.T) {
	cfg := Default()
	cfg.Input.Root = "/data/round3"

	a, b := cfg.Input.AnnotatorDirs()
	if a != "/data/round3/20019" || b != "/data/round3/20017" {
		t.Errorf("AnnotatorDirs() = %q, %q", a, b)
	}

	cfg.Input.DirB = "/elsewhere/b"
	_, b = cfg.Input.AnnotatorDirs()
	if b != "/elsewhere/b" {
		t.Errorf("explicit dir_b ignored, got %q", b)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Matching.Threshold != Default().Matching.Threshold {
		t.Errorf("expected default threshold, got %d", cfg.Matching.Threshold)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[input]
root = "/data/r2"
annotator_a = "20007"
annotator_b = "20008"
include_skips = true

[matching]
scorer = "ratio"
threshold = 85
process = false

[scoring]
policy = "product"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	a, b := cfg.Input.AnnotatorDirs()
	if a != "/data/r2/20007" || b != "/data/r2/20008" {
		t.Errorf("AnnotatorDirs() = %q, %q", a, b)
	}
	if !cfg.Input.IncludeSkips {
		t.Error("expected IncludeSkips=true")
	}

	opts := cfg.ScorerOptions()
	if opts.Policy != agreement.PolicyProduct {
		t.Errorf("expected product policy, got %s", opts.Policy)
	}
	if opts.Threshold != 85 || opts.Matcher.Scorer != "ratio" || opts.Matcher.Process {
		t.Errorf("unexpected scorer options: %+v", opts)
	}
	// Untouched keys keep their defaults.
	if cfg.Matching.Separator != "_" {
		t.Errorf("expected default separator, got %q", cfg.Matching.Separator)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[matching]\nthreshold = 150\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected validation error for threshold 150")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("RFBAGREE_POLICY", "product")
	t.Setenv("RFBAGREE_THRESHOLD", "80")
	t.Setenv("RFBAGREE_INCLUDE_SKIPS", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Scoring.Policy != "product" {
		t.Errorf("expected policy override, got %s", cfg.Scoring.Policy)
	}
	if cfg.Matching.Threshold != 80 {
		t.Errorf("expected threshold override, got %d", cfg.Matching.Threshold)
	}
	if !cfg.Input.IncludeSkips {
		t.Error("expected include_skips override")
	}
}

func TestApplyEnv_Invalid(t *testing.T) {
	cfg := Default()
	lookup := func(key string) (string, bool) {
		if key == EnvPrefix+"SAVE_RUNS" {
			return "maybe", true
		}
		return "", false
	}
	if err := cfg.applyEnv(lookup); err == nil {
		t.Error("expected error for non-boolean SAVE_RUNS")
	}
}
