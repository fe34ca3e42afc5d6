package tile

import "fmt"

// State is a step in the per-tile coordination lifecycle.
type State string

const (
	StatePending       State = "pending"
	StateSkipCheck     State = "skip_check"
	StateLabelFetch    State = "label_fetch"
	StateRejected      State = "rejected"
	StateLabelAccepted State = "label_accepted"
	StateImageFetch    State = "image_fetch"
	StateSaved         State = "saved"
	StateSkipped       State = "skipped"
	StateFailed        State = "failed"
)

// transitions lists the allowed successor states. Terminal states have none.
var transitions = map[State][]State{
	StatePending:       {StateSkipCheck},
	StateSkipCheck:     {StateLabelFetch, StateSkipped},
	StateLabelFetch:    {StateRejected, StateLabelAccepted, StateFailed},
	StateLabelAccepted: {StateImageFetch, StateFailed},
	StateImageFetch:    {StateSaved, StateFailed},
}

// IsTerminal reports whether no further transition is possible from s.
func (s State) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// Transition validates a move between two states.
func Transition(from, to State) error {
	for _, next := range transitions[from] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("invalid tile transition %s -> %s", from, to)
}

// Outcome is the terminal classification of a tile, recorded in logs and the ledger.
type Outcome string

const (
	OutcomeSkipped     Outcome = "skipped"
	OutcomeRejected    Outcome = "rejected"
	OutcomeLabelFailed Outcome = "label_failed"
	OutcomeImageFailed Outcome = "image_failed"
	OutcomeWriteFailed Outcome = "write_failed"
	OutcomeSaved       Outcome = "saved"
	OutcomeCanceled    Outcome = "canceled"
)

// Outcomes lists every outcome in reporting order.
var Outcomes = []Outcome{
	OutcomeSaved,
	OutcomeSkipped,
	OutcomeRejected,
	OutcomeLabelFailed,
	OutcomeImageFailed,
	OutcomeWriteFailed,
	OutcomeCanceled,
}

// IsFailure reports whether the outcome represents a failed attempt rather
// than a policy decision.
func (o Outcome) IsFailure() bool {
	switch o {
	case OutcomeLabelFailed, OutcomeImageFailed, OutcomeWriteFailed, OutcomeCanceled:
		return true
	}
	return false
}
