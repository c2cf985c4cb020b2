package toc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgallion1/pagetree/internal/llm"
)

// maxContinuations bounds the truncation-recovery loop. A transformation
// still incomplete afterwards proceeds with the partial result.
const maxContinuations = 5

// Result is the outcome of a transformation pass.
type Result struct {
	Entries  []Entry
	Complete bool
	Reason   string // why the result is partial, "" when complete
}

// Transformer turns raw TOC text into structured entries. Oracle output
// can be cut off by the output-token budget, and it can also omit
// trailing sections while finishing cleanly, so transport status and a
// semantic completeness check are tracked separately. Truncated output
// is rewound to its last whole object and continued in further calls.
type Transformer struct {
	oracle llm.Oracle
	log    *slog.Logger
}

func NewTransformer(oracle llm.Oracle, log *slog.Logger) *Transformer {
	return &Transformer{oracle: oracle, log: log}
}

// Transform converts raw TOC text to entries, continuing generation
// while the output is truncated or semantically incomplete.
func (t *Transformer) Transform(ctx context.Context, tocContent string) (Result, error) {
	resp, err := t.oracle.Call(ctx, transformPrompt(tocContent))
	if err != nil {
		return Result{}, err
	}

	complete, err := t.isComplete(ctx, tocContent, resp.Content)
	if err != nil {
		return Result{}, err
	}
	if complete && resp.Status == llm.StatusFinished {
		return Result{Entries: DecodeEntries(resp.Content), Complete: true}, nil
	}

	accumulated := llm.StripCodeFence(resp.Content)
	status := resp.Status
	attempts := 0

	for !(complete && status == llm.StatusFinished) && attempts < maxContinuations {
		attempts++
		t.log.Info("continuing toc transformation", "attempt", attempts)

		accumulated = llm.TruncateToLastObject(accumulated)

		cont, err := t.oracle.Call(ctx, continuePrompt(tocContent, accumulated))
		if err != nil {
			return Result{}, err
		}
		status = cont.Status

		if strings.HasPrefix(cont.Content, "```json") {
			accumulated += llm.StripCodeFence(cont.Content)
		} else {
			accumulated = mergeEntryArrays(accumulated, cont.Content)
		}

		complete, err = t.isComplete(ctx, tocContent, accumulated)
		if err != nil {
			return Result{}, err
		}
	}

	result := Result{
		Entries:  DecodeEntries(llm.BalanceBrackets(accumulated)),
		Complete: complete && status == llm.StatusFinished,
	}
	if !result.Complete {
		result.Reason = fmt.Sprintf("transformation incomplete after %d continuations", attempts)
		t.log.Warn("toc transformation incomplete", "attempts", attempts, "entries", len(result.Entries))
	}
	return result, nil
}

func (t *Transformer) isComplete(ctx context.Context, rawTOC, transformed string) (bool, error) {
	resp, err := t.oracle.Call(ctx, transformCompletePrompt(rawTOC, transformed))
	if err != nil {
		return false, err
	}
	m := llm.DecodeObject(resp.Content)
	return strings.EqualFold(llm.StringField(m, "completed"), "yes"), nil
}

func continuePrompt(rawTOC, incomplete string) string {
	return fmt.Sprintf(`Your task is to continue the table of contents json structure, directly output the remaining part of the json structure.

The raw table of contents json structure is:
%s

The incomplete transformed table of contents json structure is:
%s

Please continue the json structure, directly output the remaining part of the json structure.`, rawTOC, incomplete)
}

// mergeEntryArrays combines two wrapped entry lists. When either side
// does not parse as a wrapped list the pieces are concatenated raw and
// repaired later by bracket balancing.
func mergeEntryArrays(existing, continuation string) string {
	existingItems, ok1 := decodeWrappedArray(existing)
	newItems, ok2 := decodeWrappedArray(continuation)
	if !ok1 || !ok2 {
		return existing + continuation
	}
	merged := map[string]any{
		"table_of_contents": append(existingItems, newItems...),
	}
	out, err := json.Marshal(merged)
	if err != nil {
		return existing + continuation
	}
	return string(out)
}

func decodeWrappedArray(s string) ([]any, bool) {
	cleaned := llm.CleanJSON(llm.BalanceBrackets(s))
	var m map[string]any
	if err := json.Unmarshal([]byte(cleaned), &m); err != nil {
		return nil, false
	}
	arr, ok := m["table_of_contents"].([]any)
	return arr, ok
}
