// internal/wizard/draft_test.go

package wizard

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestCleanOneLine(t *testing.T) {
	if got := CleanOneLine("  a \n  b\tc  "); got != "a b c" {
		t.Fatalf("got %q", got)
	}
}

func TestRestateShortTextPassesThrough(t *testing.T) {
	if got := Restate("Handoffs keep dropping"); got != "Handoffs keep dropping" {
		t.Fatalf("got %q", got)
	}
}

func TestRestateEmptyFallback(t *testing.T) {
	got := Restate("   ")
	if got == "" || strings.HasSuffix(got, "…") {
		t.Fatalf("got %q", got)
	}
}

func TestRestateCapsLongText(t *testing.T) {
	long := strings.Repeat("inconsistent follow-through ", 10)
	got := Restate(long)
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("no ellipsis: %q", got)
	}
	if utf8.RuneCountInString(got) > restateLimit+1 {
		t.Fatalf("too long (%d runes): %q", utf8.RuneCountInString(got), got)
	}
}

func TestShiftLabelUnknownChoice(t *testing.T) {
	if got := ShiftLabel("not an option"); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestDraftOmitsMissingParts(t *testing.T) {
	if got := Draft("", "whatever", "Faster response"); got != "" {
		t.Fatalf("empty problem must yield empty draft, got %q", got)
	}

	got := Draft("Launches slip", "", "Fewer surprises")
	want := "Launches slip Primary shift: fewer surprises."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
