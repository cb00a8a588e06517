// internal/wizard/draft.go
//
// Pure text derivations for the Guided Turns flow.  These are
// deterministic functions of the answers alone: no timestamps, no
// randomness, so replaying a session always reproduces the same text.

package wizard

import (
	"strings"
	"unicode/utf8"
)

// restateLimit caps the turn-2 reflection so the restatement stays a
// glanceable line.
const restateLimit = 110

// CleanOneLine collapses interior whitespace and trims the ends.
func CleanOneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Restate echoes the user's problem statement back, neutral and short.
func Restate(userText string) string {
	s := CleanOneLine(userText)
	if s == "" {
		return "You're noticing something isn't working the way it should."
	}
	if utf8.RuneCountInString(s) <= restateLimit {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:restateLimit])) + "…"
}

// ShiftLabel maps a turn-3 option to the phrase used inside the draft.
func ShiftLabel(choice string) string {
	switch choice {
	case "Faster response":
		return "faster response"
	case "Clearer communication":
		return "clearer communication"
	case "More consistent follow-through":
		return "more consistent follow-through"
	case "Fewer surprises":
		return "fewer surprises"
	case "Something else":
		return "a different shift"
	}
	return ""
}

// Draft builds the turn-4 goal statement from the three prior answers.
func Draft(problem, notice, choice string) string {
	a := CleanOneLine(problem)
	b := CleanOneLine(notice)
	if a == "" {
		return ""
	}

	parts := []string{a}
	if b != "" {
		parts = append(parts, "In 30 days, the first thing people would notice is: "+b+".")
	}
	if label := ShiftLabel(choice); label != "" {
		parts = append(parts, "Primary shift: "+label+".")
	}
	return strings.Join(parts, " ")
}
