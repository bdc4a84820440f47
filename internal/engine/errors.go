package engine

import (
	"fmt"

	"github.com/frontopt/frontier/internal/nlp"
)

// ErrConvergenceFailure matches any ConvergenceFailureError via errors.Is
var ErrConvergenceFailure = &ConvergenceFailureError{}

// ConvergenceFailureError reports an anchor solve that did not reach its
// tolerance. Anchor failures abort the run; scalarized subproblem failures
// are recorded as point statuses instead.
type ConvergenceFailureError struct {
	Objective int
	Status    nlp.Status
}

func (e *ConvergenceFailureError) Error() string {
	return fmt.Sprintf("anchor solve for objective %d ended %s", e.Objective, e.Status)
}

// Is implements errors.Is support
func (e *ConvergenceFailureError) Is(target error) bool {
	_, ok := target.(*ConvergenceFailureError)
	return ok
}

// ErrInvalidConfiguration matches any InvalidConfigurationError via errors.Is
var ErrInvalidConfiguration = &InvalidConfigurationError{}

// InvalidConfigurationError rejects a run configuration before any solving
// starts
type InvalidConfigurationError struct {
	Field  string
	Reason string
}

func (e *InvalidConfigurationError) Error() string {
	if e.Field == "" {
		return "invalid configuration"
	}
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// Is implements errors.Is support
func (e *InvalidConfigurationError) Is(target error) bool {
	_, ok := target.(*InvalidConfigurationError)
	return ok
}
