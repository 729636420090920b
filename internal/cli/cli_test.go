package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/vijay-prabhu/rfb-agreement/internal/agreement"
	"github.com/vijay-prabhu/rfb-agreement/internal/database"
	"github.com/vijay-prabhu/rfb-agreement/internal/report"
)

// executeCommand runs the root command with fresh flag state and returns stdout
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func writeRecord(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create %s: %v", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write record: %v", err)
	}
}

// setupCorpus creates two annotator directories under root:
//
//	g1: identical annotations        -> perfect
//	g2: only annotator A labelled it -> zero
//	g3: B skipped it                 -> excluded
//	g4: same role, different filler  -> partial
func setupCorpus(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	a := filepath.Join(root, "20019")
	b := filepath.Join(root, "20017")

	writeRecord(t, a, "f1.json", `{"_image_id": "g1", "director": ["John Doe"], "location": ["Paris"]}`)
	writeRecord(t, b, "f1.json", `{"_image_id": "g1", "location": ["Paris"], "director": ["John Doe"]}`)
	writeRecord(t, a, "f2.json", `{"_image_id": "g2", "agent": ["man"]}`)
	writeRecord(t, b, "f3.json", `{"_image_id": "g3", "_skip_reason": "blurry"}`)
	writeRecord(t, a, "f4.json", `{"_image_id": "g4", "director": ["J Doe"]}`)
	writeRecord(t, b, "f4.json", `{"_image_id": "g4", "director": ["Jane Roe"]}`)

	return root
}

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	content := "[database]\npath = \"" + filepath.ToSlash(filepath.Join(dir, "history.db")) + "\"\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestScoreCommand(t *testing.T) {
	root := setupCorpus(t)
	work := t.TempDir()
	cfgPath := writeConfig(t, work)
	resultsPath := filepath.Join(work, "out", "results.csv")
	reportPath := filepath.Join(work, "out", "report.json")

	out, err := executeCommand(t, "score",
		"--config", cfgPath,
		"-i", root,
		"--out-file", resultsPath,
		"--report", reportPath,
		"-o", "json",
	)
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}

	var summary report.Summary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("stdout is not a JSON summary: %v\n%s", err, out)
	}
	if summary.Frames != 3 {
		t.Errorf("expected 3 frames, got %d", summary.Frames)
	}
	want := report.Buckets{Zero: 1, Partial: 1, Perfect: 1}
	if summary.Buckets != want {
		t.Errorf("buckets = %+v, want %+v", summary.Buckets, want)
	}

	csvData, err := os.ReadFile(resultsPath)
	if err != nil {
		t.Fatalf("results not written: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(csvData)), "\n")
	if len(lines) != 4 || lines[0] != "guid,keys,vals,pairs,total" {
		t.Fatalf("unexpected results file:\n%s", csvData)
	}
	if lines[1] != "g1,1.0,1.0,1.0,1.0" || lines[2] != "g2,0.0,0.0,0.0,0.0" {
		t.Errorf("unexpected rows:\n%s", csvData)
	}

	reportData, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	var metrics report.CorpusMetrics
	if err := json.Unmarshal(reportData, &metrics); err != nil {
		t.Fatalf("invalid report: %v", err)
	}
	if metrics != summary.Metrics {
		t.Errorf("report %+v does not match summary %+v", metrics, summary.Metrics)
	}
}

func TestScoreCommand_JSONShape(t *testing.T) {
	root := setupCorpus(t)
	work := t.TempDir()

	out, err := executeCommand(t, "score",
		"--config", writeConfig(t, work),
		"-i", root,
		"--out-file", filepath.Join(work, "results.csv"),
		"-o", "json",
	)
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(out), &fields); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	for _, key := range []string{"frames", "metrics", "buckets", "spread"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("summary missing %q:\n%s", key, out)
		}
	}

	var metrics map[string]json.RawMessage
	if err := json.Unmarshal(fields["metrics"], &metrics); err != nil {
		t.Fatalf("invalid metrics: %v", err)
	}
	for _, key := range []string{"zero_agreement", "perfect_agreement", "averages"} {
		if _, ok := metrics[key]; !ok {
			t.Errorf("corpus report missing %q", key)
		}
	}

	help, err := executeCommand(t, "score", "--help")
	if err != nil {
		t.Fatalf("help failed: %v", err)
	}
	if !strings.Contains(help, `"metrics" is the corpus report`) {
		t.Errorf("help does not describe the JSON summary:\n%s", help)
	}
}

func TestScoreCommand_IncludeSkips(t *testing.T) {
	root := setupCorpus(t)
	work := t.TempDir()

	out, err := executeCommand(t, "score",
		"--config", writeConfig(t, work),
		"-i", root,
		"--skip",
		"--out-file", filepath.Join(work, "results.csv"),
		"-o", "json",
	)
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}

	var summary report.Summary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	// g3 carries only a skip reason on one side, so it scores as disjoint
	if summary.Frames != 4 || summary.Buckets.Perfect != 1 || summary.Buckets.Zero != 2 {
		t.Errorf("unexpected summary with skips: %+v", summary)
	}
}

func TestScoreCommand_Errors(t *testing.T) {
	root := setupCorpus(t)
	work := t.TempDir()
	cfgPath := writeConfig(t, work)

	tests := []struct {
		name string
		args []string
	}{
		{"missing directory", []string{"--a-dir", filepath.Join(root, "nope")}},
		{"bad policy", []string{"-i", root, "--policy", "median"}},
		{"bad threshold", []string{"-i", root, "--threshold", "101"}},
		{"bad scorer", []string{"-i", root, "--scorer", "soundex"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"score", "--config", cfgPath, "--out-file", filepath.Join(work, "r.csv")}, tt.args...)
			if _, err := executeCommand(t, args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestScoreCommand_EmptyCorpus(t *testing.T) {
	work := t.TempDir()
	a := filepath.Join(work, "a")
	b := filepath.Join(work, "b")
	os.MkdirAll(a, 0755)
	os.MkdirAll(b, 0755)

	_, err := executeCommand(t, "score",
		"--config", writeConfig(t, work),
		"--a-dir", a, "--b-dir", b,
		"--out-file", filepath.Join(work, "results.csv"),
	)
	if err == nil || !strings.Contains(err.Error(), report.ErrEmptyCorpus.Error()) {
		t.Errorf("expected empty corpus error, got %v", err)
	}
}

func TestReportAndDisagreementsCommands(t *testing.T) {
	root := setupCorpus(t)
	work := t.TempDir()
	cfgPath := writeConfig(t, work)
	resultsPath := filepath.Join(work, "results.csv")

	if _, err := executeCommand(t, "score", "--config", cfgPath, "-i", root, "--out-file", resultsPath); err != nil {
		t.Fatalf("score failed: %v", err)
	}

	out, err := executeCommand(t, "report", "--config", cfgPath, "-i", resultsPath, "-o", "json")
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	var summary report.Summary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if summary.Frames != 3 {
		t.Errorf("expected 3 frames, got %d", summary.Frames)
	}

	out, err = executeCommand(t, "report", "--config", cfgPath, "-i", resultsPath)
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	if !strings.Contains(out, "Frames:             3") {
		t.Errorf("unexpected table output:\n%s", out)
	}

	out, err = executeCommand(t, "disagreements", "--config", cfgPath, "-i", resultsPath)
	if err != nil {
		t.Fatalf("disagreements failed: %v", err)
	}
	if strings.Contains(out, "g1,") || !strings.Contains(out, "g2,") || !strings.Contains(out, "g4,") {
		t.Errorf("unexpected disagreements:\n%s", out)
	}

	if _, err := executeCommand(t, "report", "--config", cfgPath, "-i", filepath.Join(work, "missing.csv")); err == nil {
		t.Error("expected error for missing results file")
	}
}

func TestRunsCommands(t *testing.T) {
	root := setupCorpus(t)
	work := t.TempDir()
	cfgPath := writeConfig(t, work)

	_, err := executeCommand(t, "score",
		"--config", cfgPath,
		"-i", root,
		"--out-file", filepath.Join(work, "results.csv"),
		"--save", "--label", "pilot",
	)
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}

	out, err := executeCommand(t, "runs", "list", "--config", cfgPath, "-o", "json")
	if err != nil {
		t.Fatalf("runs list failed: %v", err)
	}
	var runs []database.Run
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(runs) != 1 || runs[0].Label == nil || *runs[0].Label != "pilot" || runs[0].FrameCount != 3 {
		t.Fatalf("unexpected runs: %+v", runs)
	}
	prefix := runs[0].ID[:8]

	out, err = executeCommand(t, "runs", "show", prefix, "--config", cfgPath, "--frames", "-o", "json")
	if err != nil {
		t.Fatalf("runs show failed: %v", err)
	}
	var detail RunDetail
	if err := json.Unmarshal([]byte(out), &detail); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if detail.Run == nil || detail.ID != runs[0].ID || len(detail.Frames) != 3 {
		t.Errorf("unexpected run detail: %s", out)
	}

	out, err = executeCommand(t, "runs", "export", prefix, "--config", cfgPath)
	if err != nil {
		t.Fatalf("runs export failed: %v", err)
	}
	if !strings.HasPrefix(out, "guid,keys,vals,pairs,total\ng1,1.0,1.0,1.0,1.0\n") {
		t.Errorf("unexpected export:\n%s", out)
	}

	if _, err := executeCommand(t, "runs", "delete", prefix, "--config", cfgPath); err != nil {
		t.Fatalf("runs delete failed: %v", err)
	}
	out, err = executeCommand(t, "runs", "list", "--config", cfgPath)
	if err != nil {
		t.Fatalf("runs list failed: %v", err)
	}
	if !strings.Contains(out, "No runs found.") {
		t.Errorf("expected no runs after delete:\n%s", out)
	}
}

func TestConfigCommands(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "rfbagree", "config.toml")

	out, err := executeCommand(t, "config", "init", "--config", cfgPath)
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(out, "Created config file") {
		t.Errorf("unexpected output: %s", out)
	}

	out, err = executeCommand(t, "config", "init", "--config", cfgPath)
	if err != nil {
		t.Fatalf("second config init failed: %v", err)
	}
	if !strings.Contains(out, "already exists") {
		t.Errorf("expected existing config notice: %s", out)
	}

	out, err = executeCommand(t, "config", "show", "--config", cfgPath)
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if !strings.Contains(out, "wratio") || !strings.Contains(out, "20019") {
		t.Errorf("unexpected config:\n%s", out)
	}
}

func TestVersionCommand(t *testing.T) {
	SetVersionInfo("1.2.3", "abc123", "today")
	t.Cleanup(func() { SetVersionInfo("dev", "unknown", "unknown") })

	out, err := executeCommand(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "rfbagree 1.2.3") || !strings.Contains(out, "abc123") {
		t.Errorf("unexpected version output: %s", out)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"7d", 7 * 24 * time.Hour, false},
		{"2w", 14 * 24 * time.Hour, false},
		{"1m", 30 * 24 * time.Hour, false},
		{"3y", 0, true},
		{"d", 0, true},
		{"xd", 0, true},
	}

	for _, tt := range tests {
		got, err := parseDuration(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseDuration(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("parseDuration(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestFormatETA(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, ""},
		{42 * time.Second, "42s"},
		{3 * time.Minute, "3m"},
		{3*time.Minute + 5*time.Second, "3m5s"},
		{2*time.Hour + 10*time.Minute, "2h10m"},
	}
	for _, tt := range tests {
		if got := FormatETA(tt.d); got != tt.want {
			t.Errorf("FormatETA(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestTerminalProgress_NonTerminal(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)
	if term.IsTerminal || term.UseColor {
		t.Fatal("buffer should not be treated as a terminal")
	}

	progress := term.Progress()
	progress(agreement.Progress{Phase: agreement.PhaseLoading})
	for i := 0; i <= 20; i++ {
		progress(agreement.Progress{Phase: agreement.PhaseScoring, Current: i, Total: 20})
	}

	out := buf.String()
	if !strings.HasPrefix(out, "Loading annotations...\n") {
		t.Errorf("unexpected loading line: %q", out)
	}
	if n := strings.Count(out, "Scoring frames"); n != 11 {
		t.Errorf("expected 11 scoring lines (one per 10%%), got %d:\n%s", n, out)
	}
	if strings.Contains(out, "\033[") {
		t.Errorf("unexpected escape codes: %q", out)
	}
}
