package annotation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// LoadOptions controls how annotator directories are read.
type LoadOptions struct {
	// IncludeSkips keeps records that carry a skip reason.
	IncludeSkips bool
	// Workers bounds concurrent file reads per directory (0 = NumCPU).
	Workers int
	Logger  *slog.Logger
}

func (o LoadOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func (o LoadOptions) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU()
}

// Load reads both annotator directories and merges their records by GUID.
// Both directories are validated before any file is read, and any unreadable or
// malformed file fails the whole load.
func Load(ctx context.Context, dirA, dirB string, opts LoadOptions) (map[string]FramePair, error) {
	for _, dir := range []string{dirA, dirB} {
		if err := CheckDir(dir); err != nil {
			return nil, err
		}
	}

	recordsA, err := LoadDir(ctx, dirA, opts)
	if err != nil {
		return nil, fmt.Errorf("annotator A: %w", err)
	}
	recordsB, err := LoadDir(ctx, dirB, opts)
	if err != nil {
		return nil, fmt.Errorf("annotator B: %w", err)
	}

	frames := Merge(recordsA, recordsB, opts.logger())
	opts.logger().Info("annotations loaded",
		"frames", len(frames),
		"records_a", len(recordsA),
		"records_b", len(recordsB),
		"include_skips", opts.IncludeSkips,
	)
	return frames, nil
}

// CheckDir verifies that dir exists and is a directory.
func CheckDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrConfiguration, dir)
	}
	return nil
}

// LoadDir decodes every file in dir, returning records in file-name order.
// Skipped records are dropped unless opts.IncludeSkips is set.
func LoadDir(ctx context.Context, dir string, opts LoadOptions) ([]Record, error) {
	if err := CheckDir(dir); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}

	records := make([]Record, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			rec, err := DecodeRecord(path, data)
			if err != nil {
				return err
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if opts.IncludeSkips {
		return records, nil
	}
	kept := records[:0]
	for _, rec := range records {
		if rec.Skipped {
			opts.logger().Debug("skipping frame", "guid", rec.GUID, "reason", rec.SkipReason, "path", rec.Path)
			continue
		}
		kept = append(kept, rec)
	}
	return kept, nil
}

// DecodeRecord parses one annotation file. The frame identifier is lifted out of
// the annotation and roles that are empty or have no fillers are dropped. A skip
// reason stays in the annotation as a single-filler role, so two skipped records
// are compared by their reasons.
func DecodeRecord(path string, data []byte) (Record, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Record{}, &RecordError{Path: path, Err: err}
	}

	rec := Record{Path: path, Annotation: make(Annotation, len(raw))}

	idRaw, ok := raw[KeyImageID]
	if !ok {
		return Record{}, &RecordError{Path: path, Err: errors.New("missing " + KeyImageID)}
	}
	if err := json.Unmarshal(idRaw, &rec.GUID); err != nil || rec.GUID == "" {
		return Record{}, &RecordError{Path: path, Err: fmt.Errorf("%s must be a non-empty string", KeyImageID)}
	}

	if skipRaw, ok := raw[KeySkipReason]; ok {
		if err := json.Unmarshal(skipRaw, &rec.SkipReason); err != nil {
			return Record{}, &RecordError{Path: path, Err: fmt.Errorf("%s must be a string", KeySkipReason)}
		}
		rec.Skipped = true
		rec.Annotation[KeySkipReason] = []string{rec.SkipReason}
	}

	for role, value := range raw {
		if role == KeyImageID || role == KeySkipReason {
			continue
		}
		var fillers []string
		if err := json.Unmarshal(value, &fillers); err != nil {
			return Record{}, &RecordError{Path: path, Err: fmt.Errorf("role %q: expected an array of strings", role)}
		}
		if role == "" || len(fillers) == 0 {
			continue
		}
		rec.Annotation[role] = fillers
	}
	return rec, nil
}

// Merge pairs up both annotators' records by GUID. When one annotator has several
// records for a GUID the last one in file-name order wins.
func Merge(recordsA, recordsB []Record, logger *slog.Logger) map[string]FramePair {
	if logger == nil {
		logger = slog.Default()
	}
	frames := make(map[string]FramePair, max(len(recordsA), len(recordsB)))

	for _, rec := range recordsA {
		fp := frames[rec.GUID]
		if fp.A != nil {
			logger.Warn("duplicate record for frame", "annotator", "A", "guid", rec.GUID, "path", rec.Path)
		}
		fp.GUID = rec.GUID
		fp.A = rec.Annotation
		frames[rec.GUID] = fp
	}
	for _, rec := range recordsB {
		fp := frames[rec.GUID]
		if fp.B != nil {
			logger.Warn("duplicate record for frame", "annotator", "B", "guid", rec.GUID, "path", rec.Path)
		}
		fp.GUID = rec.GUID
		fp.B = rec.Annotation
		frames[rec.GUID] = fp
	}
	return frames
}
