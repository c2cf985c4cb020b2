package llm

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestStripCodeFence(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"no fence", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n[1, 2]\n```", `[1, 2]`},
		{"unterminated fence", "```json\n{\"a\": 1}", `{"a": 1}`},
		{"surrounding whitespace", "  ```json\n{}\n```  ", `{}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripCodeFence(tc.in); got != tc.want {
				t.Errorf("StripCodeFence(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestCleanJSON(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"valid passthrough", `{"a": 1}`, `{"a": 1}`},
		{"trailing comma object", `{"a": 1,}`, `{"a": 1}`},
		{"trailing comma array", `[1, 2,]`, `[1, 2]`},
		{"python none", `{"page": None}`, `{"page": null}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CleanJSON(tc.in); got != tc.want {
				t.Errorf("CleanJSON(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestDecodeObject(t *testing.T) {
	m := DecodeObject("```json\n{\"answer\": \"yes\", \"n\": 3,}\n```")
	if StringField(m, "answer") != "yes" {
		t.Errorf("expected answer=yes, got %v", m)
	}
	// Non-string values read as empty via StringField.
	if StringField(m, "n") != "" {
		t.Errorf("expected empty string for numeric field, got %q", StringField(m, "n"))
	}

	// Garbage degrades to an empty map, never an error.
	if m := DecodeObject("not json at all"); len(m) != 0 {
		t.Errorf("expected empty map for garbage, got %v", m)
	}
}

func TestTruncateToLastObject(t *testing.T) {
	in := `[{"a": 1}, {"b": 2}, {"c": `
	want := `[{"a": 1}, {"b": 2}`
	if got := TruncateToLastObject(in); got != want {
		t.Errorf("TruncateToLastObject = %q, want %q", got, want)
	}

	// A trailing comma after the last closed object is kept.
	in = `[{"a": 1},`
	if got := TruncateToLastObject(in); got != `[{"a": 1},` {
		t.Errorf("expected trailing comma kept, got %q", got)
	}

	// No closed object: input unchanged.
	if got := TruncateToLastObject(`[{"a": `); got != `[{"a": ` {
		t.Errorf("expected input unchanged, got %q", got)
	}
}

func TestBalanceBrackets(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"already balanced", `[{"a": 1}]`, `[{"a": 1}]`},
		{"missing closers", `{"toc": [{"a": 1}`, `{"toc": [{"a": 1}]}`},
		{"trailing comma dropped", `[{"a": 1},`, `[{"a": 1}]`},
		{"brackets inside strings ignored", `[{"title": "intro ["}`, `[{"title": "intro ["}]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := BalanceBrackets(tc.in); got != tc.want {
				t.Errorf("BalanceBrackets(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(&RetryableError{StatusCode: 429, Message: "rate limited"}) {
		t.Error("expected 429 to be retryable")
	}
	if !IsRetryable(fmt.Errorf("wrapped: %w", &RetryableError{StatusCode: 503})) {
		t.Error("expected wrapped retryable error to be detected")
	}
	if IsRetryable(errors.New("bad request")) {
		t.Error("expected plain error to be non-retryable")
	}
}

func TestBackoffBounds(t *testing.T) {
	for attempt := 0; attempt < 12; attempt++ {
		d := Backoff(attempt)
		if d < time.Second {
			t.Errorf("attempt %d: backoff %v below 1s", attempt, d)
		}
		if d > 45*time.Second {
			t.Errorf("attempt %d: backoff %v above the cap plus jitter", attempt, d)
		}
	}
}
