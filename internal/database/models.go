package database

import (
	"database/sql"
	"time"

	"github.com/vijay-prabhu/rfb-agreement/internal/agreement"
	"github.com/vijay-prabhu/rfb-agreement/internal/report"
)

// Run is one saved scoring run and its corpus summary
type Run struct {
	ID           string               `json:"id"`
	CreatedAt    time.Time            `json:"created_at"`
	Label        *string              `json:"label,omitempty"`
	DirA         string               `json:"dir_a"`
	DirB         string               `json:"dir_b"`
	IncludeSkips bool                 `json:"include_skips"`
	Policy       string               `json:"policy"`
	Scorer       string               `json:"scorer"`
	Threshold    int                  `json:"threshold"`
	FrameCount   int                  `json:"frame_count"`
	Metrics      report.CorpusMetrics `json:"metrics"`
}

// FrameScore is one frame's stored agreement
type FrameScore struct {
	GUID string `json:"guid"`
	agreement.FrameAgreement
}

// RunListOptions contains options for listing runs
type RunListOptions struct {
	Since *time.Time
	Label *string
	Limit int
}

// NullString is a helper to convert *string to sql.NullString
func NullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// StringPtr converts sql.NullString to *string
func StringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
