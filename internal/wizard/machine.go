// internal/wizard/machine.go
//
// Guided Turns state machine.
//
// Context
// -------
// Strictly linear: turn[1].active → turn[1].locked, turn[2].active → … →
// turn[4].locked (terminal).  At most one turn is active; everything
// before it is locked and immutable for the rest of the session.  Invalid
// Complete calls leave the session untouched and return a typed error the
// HTTP layer maps to a no-op response.

package wizard

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrWrongTurn rejects a Complete for any turn other than the unique
	// active one (already locked, or not yet reached).
	ErrWrongTurn = errors.New("wizard: not the active turn")
	// ErrInvalidAnswer rejects an answer failing the turn's validity
	// predicate.
	ErrInvalidAnswer = errors.New("wizard: invalid answer")
	// ErrDone rejects mutation after the final turn locked.
	ErrDone = errors.New("wizard: session is complete")
)

// Session is one owner's pass through a step's turns.
type Session struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	Step      string    `json:"step"`
	Turns     []Turn    `json:"turns"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewSession starts a fresh StepGoal session for owner.
func NewSession(owner string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.NewString(),
		Owner:     owner,
		Step:      StepGoal,
		Turns:     goalTurns(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ActiveIndex returns the index of the first incomplete turn, or -1 when
// every turn is locked.
func (s *Session) ActiveIndex() int {
	for i := range s.Turns {
		if !s.Turns[i].Completed() {
			return i
		}
	}
	return -1
}

// Done reports terminal state.
func (s *Session) Done() bool { return s.ActiveIndex() == -1 }

// Answers returns the answer of turn id, or "" when not yet completed.
func (s *Session) answer(id int) string {
	for i := range s.Turns {
		if s.Turns[i].ID == id {
			return s.Turns[i].Answer
		}
	}
	return ""
}

// Complete locks the active turn with answer.  Only valid when turnID is
// the active turn and answer satisfies the turn's predicate; anything else
// returns a typed error with the session unchanged.
func (s *Session) Complete(turnID int, answer string) error {
	idx := s.ActiveIndex()
	if idx == -1 {
		return ErrDone
	}
	t := &s.Turns[idx]
	if t.ID != turnID {
		return fmt.Errorf("%w: got %d, active is %d", ErrWrongTurn, turnID, t.ID)
	}

	switch t.Kind {
	case KindFreeText:
		answer = CleanOneLine(answer)
		if answer == "" {
			return fmt.Errorf("%w: empty text", ErrInvalidAnswer)
		}
	case KindChoice, KindConfirm:
		if !contains(t.Options, answer) {
			return fmt.Errorf("%w: %q not in option set", ErrInvalidAnswer, answer)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidAnswer, t.Kind)
	}

	now := time.Now().UTC()
	t.Answer = answer
	t.CompletedAt = &now
	s.UpdatedAt = now

	s.deriveReflections()
	return nil
}

// deriveReflections recomputes derived turn text from locked answers.
// Pure in the answers; safe to call any number of times.
func (s *Session) deriveReflections() {
	if s.Step != StepGoal || len(s.Turns) < 4 {
		return
	}
	if t1 := s.answer(1); t1 != "" {
		s.Turns[1].Reflection = "Got it. You said: “" + Restate(t1) + "”"
	}
	if s.Turns[2].Completed() {
		s.Turns[3].Reflection = Draft(s.answer(1), s.answer(2), s.answer(3))
	}
}

// Resume recomputes derived state on a session loaded from storage.  The
// stored copy is authoritative for answers only; reflections are always
// re-derived so older documents pick up wording fixes.
func (s *Session) Resume() { s.deriveReflections() }

func contains(set []string, v string) bool {
	for _, o := range set {
		if o == v {
			return true
		}
	}
	return false
}
