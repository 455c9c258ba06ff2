// internal/app/workflow/feedback/transitions.go
package feedback

import "github.com/betalift/betalift/internal/domain/models"

// transitions is the allowed status graph. Keys are source states; values
// are the states reachable from them. resolved, closed, and wont-fix are
// terminal: nothing moves out of them, and closed is reachable from any
// non-terminal state.
var transitions = map[string][]string{
	models.FeedbackPending:    {models.FeedbackOpen, models.FeedbackClosed},
	models.FeedbackOpen:       {models.FeedbackInProgress, models.FeedbackClosed},
	models.FeedbackInProgress: {models.FeedbackResolved, models.FeedbackWontFix, models.FeedbackClosed},
}

// CanTransition reports whether feedback may move from one status to
// another. Unknown statuses never transition.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether a status has no outgoing transitions.
func Terminal(status string) bool {
	switch status {
	case models.FeedbackResolved, models.FeedbackClosed, models.FeedbackWontFix:
		return true
	}
	return false
}
