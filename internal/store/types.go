package store

import (
	"time"

	"github.com/frontopt/frontier/internal/scalarize"
)

// RunConfig holds the configuration of a front generation run. It doubles
// as the job request body of the HTTP API (kept here to avoid an import
// cycle with the server package) and as the config block of a persisted
// manifest.
type RunConfig struct {
	// Problem names a registered benchmark problem.
	Problem string `json:"problem"`

	// Method selects the scalarization strategy: ws, nbi, or nnc.
	Method string `json:"method"`

	// Points is the simplex discretization level np.
	Points int `json:"points"`

	// Tolerance is the NLP convergence tolerance. Zero picks the engine
	// default.
	Tolerance float64 `json:"tolerance,omitempty"`

	// HotStart toggles warm-starting along the subproblem chain. Absent
	// means enabled.
	HotStart *bool `json:"hotStart,omitempty"`

	// Workers bounds concurrent solves when hot start is off. Zero means
	// one worker per CPU.
	Workers int `json:"workers,omitempty"`

	// KeepUnconverged lets non-converged points participate in the
	// dominance filter instead of being dropped up front.
	KeepUnconverged bool `json:"keepUnconverged,omitempty"`
}

// HotStartOn resolves the hot-start setting, defaulting to enabled.
func (c RunConfig) HotStartOn() bool {
	return c.HotStart == nil || *c.HotStart
}

// Validate checks if the run configuration is complete and consistent.
func (c RunConfig) Validate() error {
	if c.Problem == "" {
		return &ValidationError{Field: "problem", Reason: "cannot be empty"}
	}
	if c.Method == "" {
		return &ValidationError{Field: "method", Reason: "cannot be empty"}
	}
	if _, err := scalarize.ParseMethod(c.Method); err != nil {
		return &ValidationError{Field: "method", Reason: err.Error()}
	}
	if c.Points < 2 {
		return &ValidationError{Field: "points", Reason: "must be at least 2"}
	}
	if c.Tolerance < 0 {
		return &ValidationError{Field: "tolerance", Reason: "cannot be negative"}
	}
	if c.Workers < 0 {
		return &ValidationError{Field: "workers", Reason: "cannot be negative"}
	}
	return nil
}

// RunManifest is the persisted record of a finished run: its configuration,
// the column layout of the front files, and result counts. All fields are
// serialized to JSON as manifest.json in the run directory.
type RunManifest struct {
	// RunID is the unique identifier of this run.
	RunID string `json:"runId"`

	// Config is the configuration the run executed with.
	Config RunConfig `json:"config"`

	// Variables and Objectives name the front file columns in order:
	// each line carries the variable fields first, then the objectives.
	Variables  []string `json:"variables"`
	Objectives []string `json:"objectives"`

	// Subproblems, Converged, and Filtered count the generated points,
	// the converged subset, and the dominance-filter survivors.
	Subproblems int `json:"subproblems"`
	Converged   int `json:"converged"`
	Filtered    int `json:"filtered"`

	// ElapsedMS is the wall-clock duration of the run in milliseconds.
	ElapsedMS int64 `json:"elapsedMs"`

	// CreatedAt records when the run finished and was saved.
	CreatedAt time.Time `json:"createdAt"`
}

// NewRunManifest assembles a manifest for a finished run. Callers fill the
// result counts from the engine summary before saving.
func NewRunManifest(runID string, cfg RunConfig, variables, objectives []string) *RunManifest {
	return &RunManifest{
		RunID:      runID,
		Config:     cfg,
		Variables:  variables,
		Objectives: objectives,
		CreatedAt:  time.Now(),
	}
}

// Validate checks if the manifest has valid data.
// Returns an error if any required field is missing or inconsistent.
func (m *RunManifest) Validate() error {
	if m.RunID == "" {
		return &ValidationError{Field: "RunID", Reason: "cannot be empty"}
	}
	if err := m.Config.Validate(); err != nil {
		return err
	}
	if len(m.Variables) == 0 {
		return &ValidationError{Field: "Variables", Reason: "cannot be empty"}
	}
	if len(m.Objectives) < 2 {
		return &ValidationError{Field: "Objectives", Reason: "need at least 2 for a front"}
	}
	if m.Subproblems < 0 || m.Converged < 0 || m.Filtered < 0 {
		return &ValidationError{Field: "counts", Reason: "cannot be negative"}
	}
	if m.Converged > m.Subproblems {
		return &ValidationError{Field: "Converged", Reason: "cannot exceed subproblem count"}
	}
	if m.Filtered > m.Subproblems {
		return &ValidationError{Field: "Filtered", Reason: "cannot exceed subproblem count"}
	}
	if m.CreatedAt.IsZero() {
		return &ValidationError{Field: "CreatedAt", Reason: "cannot be zero"}
	}
	return nil
}

// Dim returns the number of variable columns in the front files.
func (m *RunManifest) Dim() int {
	return len(m.Variables)
}

// NumObjectives returns the number of objective columns in the front files.
func (m *RunManifest) NumObjectives() int {
	return len(m.Objectives)
}

// RunInfo contains run metadata without the column layout, used for
// listings.
type RunInfo struct {
	RunID       string    `json:"runId"`
	Problem     string    `json:"problem"`
	Method      string    `json:"method"`
	Points      int       `json:"points"`
	Subproblems int       `json:"subproblems"`
	Converged   int       `json:"converged"`
	Filtered    int       `json:"filtered"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ToInfo converts a full RunManifest to RunInfo (metadata only).
func (m *RunManifest) ToInfo() RunInfo {
	return RunInfo{
		RunID:       m.RunID,
		Problem:     m.Config.Problem,
		Method:      m.Config.Method,
		Points:      m.Config.Points,
		Subproblems: m.Subproblems,
		Converged:   m.Converged,
		Filtered:    m.Filtered,
		CreatedAt:   m.CreatedAt,
	}
}

// ValidationError represents a manifest or config validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}
