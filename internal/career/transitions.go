package career

import (
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/apperrors"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/entity"
)

type Action string

const (
	ActionStart    Action = "start"
	ActionComplete Action = "complete"
	ActionReview   Action = "review"
	ActionPractice Action = "practice"
	ActionMaster   Action = "master"
)

type move struct{ from, to string }

var completionMoves = map[Action]move{
	ActionStart:    {string(entity.StatusNotStarted), string(entity.StatusInProgress)},
	ActionComplete: {string(entity.StatusInProgress), string(entity.StatusCompleted)},
	ActionReview:   {string(entity.StatusCompleted), string(entity.StatusInProgress)},
}

var practiceMoves = map[Action]move{
	ActionPractice: {string(entity.PracticeNew), string(entity.PracticePracticed)},
	ActionMaster:   {string(entity.PracticePracticed), string(entity.PracticeMastered)},
	ActionReview:   {string(entity.PracticeMastered), string(entity.PracticePracticed)},
}

// Transition returns the status field and new value for applying action to
// a record of kind whose status is current.
func Transition(kind entity.Kind, current string, action Action) (field, next string, err error) {
	var (
		moves map[Action]move
		known bool
	)
	switch kind {
	case entity.KindLearningPath, entity.KindProject:
		field, moves = "completion_status", completionMoves
		if current == "" {
			current = string(entity.StatusNotStarted)
		}
		known = entity.ValidCompletionStatuses[entity.CompletionStatus(current)]
	case entity.KindInterviewPrep:
		field, moves = "practice_status", practiceMoves
		if current == "" {
			current = string(entity.PracticeNew)
		}
		known = entity.ValidPracticeStatuses[entity.PracticeStatus(current)]
	default:
		return "", "", apperrors.Validation("kind", "%s has no status transitions", kind)
	}

	if !known {
		return "", "", apperrors.Validation(field, "unknown status %q", current)
	}
	m, ok := moves[action]
	if !ok {
		return "", "", apperrors.Validation("action", "unknown action %q for %s", action, kind)
	}
	if m.from != current {
		return "", "", apperrors.Validation(field, "cannot %s from %q", action, current)
	}
	return field, m.to, nil
}
