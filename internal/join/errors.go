package join

import "fmt"

type Step string

const (
	StepLinks        Step = "links"
	StepIntermediate Step = "intermediate"
	StepChildren     Step = "children"
)

// ResolutionError reports that one of the reads behind a join failed. The
// join as a whole fails; no partial result is returned.
type ResolutionError struct {
	Relation string
	Step     Step
	ParentID string
	Err      error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("join %s (%s) for %s: %v", e.Relation, e.Step, e.ParentID, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}
