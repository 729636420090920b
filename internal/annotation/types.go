package annotation

import (
	"errors"
	"fmt"
	"sort"
)

// Reserved metadata keys carried by every annotation record.
const (
	KeyImageID    = "_image_id"
	KeySkipReason = "_skip_reason"
)

var (
	// ErrConfiguration is returned when an annotator directory is missing or unreadable.
	ErrConfiguration = errors.New("invalid annotation directory")

	// ErrMalformedRecord is matched by every *RecordError.
	ErrMalformedRecord = errors.New("malformed annotation record")
)

// RecordError describes a file that could not be decoded into a Record.
type RecordError struct {
	Path string
	Err  error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrMalformedRecord, e.Path, e.Err)
}

func (e *RecordError) Unwrap() []error {
	return []error{ErrMalformedRecord, e.Err}
}

// Annotation maps a role to the fillers an annotator bound to it.
// Every role has at least one filler.
type Annotation map[string][]string

// Roles returns the annotation's roles in sorted order.
func (a Annotation) Roles() []string {
	roles := make([]string, 0, len(a))
	for role := range a {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}

// FillerCount returns the total number of fillers across all roles.
func (a Annotation) FillerCount() int {
	n := 0
	for _, fillers := range a {
		n += len(fillers)
	}
	return n
}

// Record is one annotator's decoded file for a single frame.
type Record struct {
	GUID       string
	SkipReason string
	Skipped    bool
	Path       string
	Annotation Annotation
}

// FramePair holds both annotators' annotations for one frame. A nil side means the
// annotator produced no record for the frame.
type FramePair struct {
	GUID string
	A    Annotation
	B    Annotation
}

// Pair is a single role-filler binding.
type Pair struct {
	Role   string
	Filler string
}

func (p Pair) String() string {
	return p.Role + "=" + p.Filler
}
