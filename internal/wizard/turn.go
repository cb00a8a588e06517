// internal/wizard/turn.go
//
// Guided Turns domain model.
//
// Context
// -------
// A wizard session is an ordered, append-only list of turns.  Earlier
// revisions grew one bespoke turn shape per UI rewrite; this is the single
// tagged-union model they collapse into.  A turn with no completion
// timestamp has no answer and is the unique active turn.

package wizard

import (
	"time"
)

// Kind discriminates the turn union.
type Kind string

const (
	// KindFreeText expects a non-empty line of text.
	KindFreeText Kind = "free-text"
	// KindChoice expects one member of the fixed option set.
	KindChoice Kind = "choice"
	// KindConfirm is a choice that also closes the session.
	KindConfirm Kind = "confirm"
)

// Turn is one question/answer exchange.  Reflection is derived text, a
// pure function of prior answers, never independent state.
type Turn struct {
	ID          int        `json:"id"`
	Kind        Kind       `json:"kind"`
	SystemLead  string     `json:"systemLead"`
	Prompt      string     `json:"prompt"`
	Options     []string   `json:"options,omitempty"`
	Answer      string     `json:"answer,omitempty"`
	Reflection  string     `json:"reflection,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Completed reports whether the turn has been locked.
func (t Turn) Completed() bool { return t.CompletedAt != nil }

// StepGoal is the only step currently shipped.
const StepGoal = "step-1"

// Turn-3 option set.  The labels are part of the client contract.
var shiftOptions = []string{
	"Faster response",
	"Clearer communication",
	"More consistent follow-through",
	"Fewer surprises",
	"Something else",
}

// Turn-4 option set.
var confirmOptions = []string{
	"Make it sharper",
	"Aim it at the real result",
	"Lock it in",
}

// goalTurns returns the canonical four-turn flow for StepGoal, all
// incomplete.  Reflections for turns 2 and 4 are filled in as the prior
// turns lock.
func goalTurns() []Turn {
	return []Turn{
		{
			ID:         1,
			Kind:       KindFreeText,
			SystemLead: "Start simple. In one sentence: what's not working?",
			Prompt:     "Type one sentence.",
		},
		{
			ID:         2,
			Kind:       KindFreeText,
			SystemLead: "If this is better in 30 days, what would people notice first?",
			Prompt:     "Type one sentence.",
		},
		{
			ID:         3,
			Kind:       KindChoice,
			SystemLead: "Which shift is closest to what you want?",
			Prompt:     "Pick one.",
			Options:    append([]string(nil), shiftOptions...),
		},
		{
			ID:         4,
			Kind:       KindConfirm,
			SystemLead: "Here's what I heard. Choose one move.",
			Prompt:     "Lock the statement.",
			Options:    append([]string(nil), confirmOptions...),
		},
	}
}
