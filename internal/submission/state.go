package submission

import "github.com/jonathan/jobjeeves/internal/types"

// Phase is the lifecycle phase of a controller.
type Phase int

const (
	// Idle means nothing has been submitted yet
	Idle Phase = iota
	// InFlight means a call is outstanding
	InFlight
	// Succeeded means the last submission returned a result
	Succeeded
	// Failed means the last submission ended with an error message
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case InFlight:
		return "in-flight"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is one snapshot of the lifecycle. Result is set only when Succeeded,
// Message only when Failed.
type State struct {
	Phase      Phase
	Result     *types.AnalysisResult
	Message    string
	Submission int // sequence number of the submission this state belongs to; 0 while Idle
}

// Terminal reports whether the state ends a submission.
func (s State) Terminal() bool {
	return s.Phase == Succeeded || s.Phase == Failed
}
