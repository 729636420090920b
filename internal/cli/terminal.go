package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/vijay-prabhu/rfb-agreement/internal/agreement"
)

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorCyan   = "\033[36m"
	ColorWhite  = "\033[37m"
)

// Spinner frames for animated progress
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Terminal provides terminal-aware progress output
type Terminal struct {
	IsTerminal   bool
	UseColor     bool
	w            io.Writer
	spinnerIndex int
}

// NewTerminal creates a Terminal writing to w. Animation and colour are only used
// when w is an interactive terminal.
func NewTerminal(w io.Writer) *Terminal {
	isTerminal := false
	if f, ok := w.(*os.File); ok {
		isTerminal = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Terminal{
		IsTerminal: isTerminal,
		UseColor:   isTerminal && os.Getenv("NO_COLOR") == "",
		w:          w,
	}
}

// ClearLine clears the current line (terminal only)
func (t *Terminal) ClearLine() {
	if t.IsTerminal {
		fmt.Fprint(t.w, "\r\033[K")
	}
}

// Spinner returns the next spinner frame
func (t *Terminal) Spinner() string {
	if !t.IsTerminal {
		return ""
	}
	frame := spinnerFrames[t.spinnerIndex]
	t.spinnerIndex = (t.spinnerIndex + 1) % len(spinnerFrames)
	return frame
}

// Color wraps text in ANSI color codes (terminal only)
func (t *Terminal) Color(color, text string) string {
	if !t.UseColor {
		return text
	}
	return color + text + ColorReset
}

// Progress returns a callback rendering agreement progress. On a terminal the line
// is redrawn in place; otherwise a line is printed on phase changes and every tenth
// of the way through.
func (t *Terminal) Progress() agreement.ProgressCallback {
	var lastPhase agreement.Phase
	lastPct := -1

	return func(p agreement.Progress) {
		var msg string
		switch p.Phase {
		case agreement.PhaseLoading:
			msg = strings.TrimSpace(t.Spinner() + " Loading annotations...")
		case agreement.PhaseScoring:
			var eta string
			if d := p.ETA(); d > 0 {
				eta = fmt.Sprintf(" (ETA: %s)", FormatETA(d))
			}
			msg = fmt.Sprintf("Scoring frames: %d/%d (%d%%)%s", p.Current, p.Total, p.Percentage(), eta)
		case agreement.PhaseAggregating:
			msg = strings.TrimSpace(fmt.Sprintf("%s Aggregating %d frames...", t.Spinner(), p.Total))
		}

		if t.IsTerminal {
			t.ClearLine()
			fmt.Fprint(t.w, t.Color(PhaseColor(p.Phase), msg))
		} else {
			pct := p.Percentage()
			if p.Phase != lastPhase || pct/10 != lastPct/10 {
				fmt.Fprintln(t.w, msg)
			}
			lastPct = pct
		}
		lastPhase = p.Phase
	}
}

// FormatETA formats a duration as a human-readable ETA string
func FormatETA(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		if s > 0 {
			return fmt.Sprintf("%dm%ds", m, s)
		}
		return fmt.Sprintf("%dm", m)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}

// PhaseColor returns the color used for a progress phase
func PhaseColor(phase agreement.Phase) string {
	switch phase {
	case agreement.PhaseLoading:
		return ColorCyan
	case agreement.PhaseScoring:
		return ColorBlue
	case agreement.PhaseAggregating:
		return ColorGreen
	default:
		return ColorWhite
	}
}
