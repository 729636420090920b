package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/vijay-prabhu/rfb-agreement/internal/agreement"
)

// Header is the results CSV header row.
var Header = []string{"guid", "keys", "vals", "pairs", "total"}

// SortedGUIDs returns the result keys in ascending order.
func SortedGUIDs(results map[string]agreement.FrameAgreement) []string {
	guids := make([]string, 0, len(results))
	for guid := range results {
		guids = append(guids, guid)
	}
	sort.Strings(guids)
	return guids
}

// FormatScore renders a score as a decimal that always carries a fractional part,
// e.g. "1.0" or "0.6666666666666666".
func FormatScore(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// WriteResults writes one CSV row per frame, sorted by GUID.
func WriteResults(w io.Writer, results map[string]agreement.FrameAgreement) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, guid := range SortedGUIDs(results) {
		r := results[guid]
		record := []string{
			guid,
			FormatScore(r.Key),
			FormatScore(r.Val),
			FormatScore(r.Pair),
			FormatScore(r.Total),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadResults parses a results CSV written by WriteResults. Columns are located by
// header name, so extra columns are ignored.
func ReadResults(r io.Reader) (map[string]agreement.FrameAgreement, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("results file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range Header {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("results header missing column %q", name)
		}
	}

	results := make(map[string]agreement.FrameAgreement)
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		guidIdx := cols["guid"]
		if guidIdx >= len(record) {
			return nil, fmt.Errorf("line %d: missing guid value", line)
		}

		var scores [4]float64
		for i, name := range Header[1:] {
			idx := cols[name]
			if idx >= len(record) {
				return nil, fmt.Errorf("line %d: missing %s value", line, name)
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(record[idx]), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid %s value %q", line, name, record[idx])
			}
			scores[i] = v
		}

		results[record[guidIdx]] = agreement.FrameAgreement{
			Key:   scores[0],
			Val:   scores[1],
			Pair:  scores[2],
			Total: scores[3],
		}
	}
	return results, nil
}

// Disagreements returns the frames that are not perfect on every metric. These are
// the frames that need manual adjudication.
func Disagreements(results map[string]agreement.FrameAgreement) map[string]agreement.FrameAgreement {
	out := make(map[string]agreement.FrameAgreement)
	for guid, r := range results {
		if !r.IsPerfect() {
			out[guid] = r
		}
	}
	return out
}
