package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/vijay-prabhu/rfb-agreement/internal/agreement"
)

const runColumns = `
	id, created_at, label, dir_a, dir_b, include_skips, policy, scorer, threshold,
	frame_count, zero_agreement, perfect_agreement, avg_keys, avg_vals, avg_pairs, avg_total
`

// SaveRun stores a run together with its per-frame scores in one transaction
func (db *DB) SaveRun(ctx context.Context, r *Run, frames map[string]agreement.FrameAgreement) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	r.FrameCount = len(frames)

	return db.inTx(ctx, func(tx *sql.Tx) error {
		m := r.Metrics
		_, err := tx.ExecContext(ctx, `
			INSERT INTO runs (`+runColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			r.ID, r.CreatedAt, NullString(r.Label), r.DirA, r.DirB, r.IncludeSkips,
			r.Policy, r.Scorer, r.Threshold, r.FrameCount,
			m.ZeroAgreement, m.PerfectAgreement,
			m.Averages.Keys, m.Averages.Vals, m.Averages.Pairs, m.Averages.Total,
		)
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO frame_scores (run_id, guid, keys, vals, pairs, total)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for guid, f := range frames {
			if _, err := stmt.ExecContext(ctx, r.ID, guid, f.Key, f.Val, f.Pair, f.Total); err != nil {
				return fmt.Errorf("failed to insert frame %s: %w", guid, err)
			}
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	r := &Run{}
	var label sql.NullString
	m := &r.Metrics
	err := row.Scan(
		&r.ID, &r.CreatedAt, &label, &r.DirA, &r.DirB, &r.IncludeSkips, &r.Policy,
		&r.Scorer, &r.Threshold, &r.FrameCount, &m.ZeroAgreement, &m.PerfectAgreement,
		&m.Averages.Keys, &m.Averages.Vals, &m.Averages.Pairs, &m.Averages.Total,
	)
	if err != nil {
		return nil, err
	}
	r.Label = StringPtr(label)
	return r, nil
}

// GetRun retrieves a run by ID. It returns nil when no run matches.
func (db *DB) GetRun(ctx context.Context, id string) (*Run, error) {
	r, err := scanRun(db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ListRuns retrieves runs, newest first
func (db *DB) ListRuns(ctx context.Context, opts RunListOptions) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE 1=1`
	args := []any{}

	if opts.Since != nil {
		query += " AND created_at >= ?"
		args = append(args, *opts.Since)
	}
	if opts.Label != nil {
		query += " AND LOWER(label) LIKE LOWER(?)"
		args = append(args, "%"+*opts.Label+"%")
	}

	query += " ORDER BY created_at DESC"

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// GetFrameScores retrieves a run's per-frame scores keyed by GUID
func (db *DB) GetFrameScores(ctx context.Context, runID string) (map[string]agreement.FrameAgreement, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT guid, keys, vals, pairs, total FROM frame_scores WHERE run_id = ?
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	frames := make(map[string]agreement.FrameAgreement)
	for rows.Next() {
		var guid string
		var f agreement.FrameAgreement
		if err := rows.Scan(&guid, &f.Key, &f.Val, &f.Pair, &f.Total); err != nil {
			return nil, err
		}
		frames[guid] = f
	}
	return frames, rows.Err()
}

// ListFrameScores returns a run's per-frame scores ordered by GUID
func (db *DB) ListFrameScores(ctx context.Context, runID string) ([]FrameScore, error) {
	frames, err := db.GetFrameScores(ctx, runID)
	if err != nil {
		return nil, err
	}
	scores := make([]FrameScore, 0, len(frames))
	for guid, f := range frames {
		scores = append(scores, FrameScore{GUID: guid, FrameAgreement: f})
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].GUID < scores[j].GUID })
	return scores, nil
}

// DeleteRun removes a run and, through the foreign key, its frame scores
func (db *DB) DeleteRun(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("run not found: %s", id)
	}
	return nil
}

// ResolveRunID expands an ID prefix, as shown by run listings, to a full run ID
func (db *DB) ResolveRunID(ctx context.Context, prefix string) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("run ID is required")
	}

	rows, err := db.QueryContext(ctx, `SELECT id FROM runs WHERE id LIKE ? || '%' LIMIT 2`, prefix)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	switch len(ids) {
	case 0:
		return "", fmt.Errorf("run not found: %s", prefix)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("run ID prefix %s is ambiguous", prefix)
	}
}
