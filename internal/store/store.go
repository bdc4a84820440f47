package store

import "github.com/frontopt/frontier/internal/front"

// Store defines the interface for run persistence.
// Implementations must be safe for concurrent use.
//
// Error handling conventions:
//   - Return nil error on success
//   - Return ErrNotFound if a run doesn't exist (for Load/Delete)
//   - Return descriptive errors for I/O, serialization, or validation failures
//   - Wrap underlying errors with context using fmt.Errorf("context: %w", err)
type Store interface {
	// SaveRun atomically persists a finished run: its manifest plus the
	// unfiltered and filtered fronts. An existing run with the same ID is
	// overwritten.
	SaveRun(m *RunManifest, unfiltered, filtered []front.Point) error

	// LoadManifest retrieves the manifest for the given run.
	// Returns ErrNotFound if no run exists under this ID.
	LoadManifest(runID string) (*RunManifest, error)

	// LoadFront reads a persisted front back, the filtered variant when
	// filtered is true. Reread points carry no solver status; the text
	// layout does not persist one.
	// Returns ErrNotFound if the run or the requested front is missing.
	LoadFront(runID string, filtered bool) ([]front.Point, error)

	// ListRuns returns metadata for all stored runs.
	// The returned slice may be empty if no runs exist.
	ListRuns() ([]RunInfo, error)

	// DeleteRun removes the run directory and everything in it: the
	// manifest, both front files, and the solve trace.
	// Returns ErrNotFound if no run exists under this ID.
	DeleteRun(runID string) error
}

// ErrNotFound is returned when a requested run does not exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &NotFoundError{}

// NotFoundError represents a missing run error.
type NotFoundError struct {
	RunID string
}

func (e *NotFoundError) Error() string {
	if e.RunID != "" {
		return "run not found: " + e.RunID
	}
	return "run not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
