package types

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKindMatching(t *testing.T) {
	base := Errorf(KindNoResults, "footage search", "no videos for %q", "AI")
	wrapped := fmt.Errorf("render: %w", base)

	if !errors.Is(wrapped, ErrNoResults) {
		t.Fatalf("expected wrapped error to match ErrNoResults")
	}
	if errors.Is(wrapped, ErrDownload) {
		t.Fatalf("no_results must not match ErrDownload")
	}
	if got := KindOf(wrapped); got != KindNoResults {
		t.Fatalf("KindOf = %q, want %q", got, KindNoResults)
	}
	if got := KindOf(errors.New("plain")); got != KindInternal {
		t.Fatalf("KindOf(plain) = %q, want %q", got, KindInternal)
	}
}

func TestErrorMessage(t *testing.T) {
	err := NewError(KindAuth, "youtube credentials", errors.New("refresh token missing"))
	want := "youtube credentials: auth: refresh token missing"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, ErrAuth) {
		t.Fatalf("expected ErrAuth match")
	}
}

func TestScriptFirstWord(t *testing.T) {
	cases := map[string]string{
		"Hook... Fact1 Fact2":   "Hook...",
		"  \n spaced out words": "spaced",
		"":                      "",
	}
	for text, want := range cases {
		if got := (Script{Text: text}).FirstWord(); got != want {
			t.Errorf("FirstWord(%q) = %q, want %q", text, got, want)
		}
	}
}
