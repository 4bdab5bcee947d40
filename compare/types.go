package compare

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kartik-devs/lcp-compare/diff"
)

// Mode selects which version pairs a comparison covers.
type Mode string

const (
	// ModeSelective compares the first against the last of a caller-chosen
	// ordering, ignoring interior versions.
	ModeSelective Mode = "selective"
	// ModeSequential compares all catalog versions consecutively in
	// chronological order.
	ModeSequential Mode = "sequential"
)

// Selection names the versions to compare. VersionKeys is required for
// selective mode and ignored for sequential mode.
type Selection struct {
	Mode        Mode
	VersionKeys []string
}

// Pair is the diff between two adjacent versions. Comparable is false when
// either side could not be fetched or extracted; FailedKeys then says
// which, and Sections is empty. Failure is reported, never passed off as
// an absent section.
type Pair struct {
	LeftKey    string             `json:"left_key"`
	RightKey   string             `json:"right_key"`
	Comparable bool               `json:"comparable"`
	FailedKeys []string           `json:"failed_keys,omitempty"`
	Sections   []diff.SectionDiff `json:"sections,omitempty"`
	Summary    diff.Summary       `json:"summary"`
}

// VersionError records one version that dropped out of a comparison.
type VersionError struct {
	Key   string `json:"key"`
	Stage string `json:"stage"` // "fetch" or "extract"
	Err   error  `json:"-"`
}

func (e VersionError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Key, e.Err)
}

// Result is one self-contained comparison. It is handed to the renderer
// and never persisted by the engine.
type Result struct {
	RunID         string         `json:"run_id"`
	CaseID        string         `json:"case_id"`
	Mode          Mode           `json:"mode"`
	GeneratedAt   time.Time      `json:"generated_at"`
	Pairs         []Pair         `json:"pairs"`
	VersionErrors []VersionError `json:"version_errors,omitempty"`
}

// ErrInsufficientVersions means fewer than two usable documents remained
// after filtering fetch and extraction failures.
var ErrInsufficientVersions = errors.New("need at least 2 usable versions to compare")

// ComparisonError carries the per-version failures of a run. It is only
// fatal when they leave fewer than two usable versions; otherwise the
// failures ride along on the Result.
type ComparisonError struct {
	CaseID string
	Errors []VersionError
	Err    error
}

func (e *ComparisonError) Error() string {
	var parts []string
	for _, ve := range e.Errors {
		parts = append(parts, ve.Error())
	}
	msg := fmt.Sprintf("comparison for case %s failed: %v", e.CaseID, e.Err)
	if len(parts) > 0 {
		msg += " (" + strings.Join(parts, "; ") + ")"
	}
	return msg
}

func (e *ComparisonError) Unwrap() error { return e.Err }
