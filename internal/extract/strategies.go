package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoText reports that an agent run completed but produced nothing
// recognizable as post text. Distinct from call failures so logs can tell
// "no data available" from "call failed"; the pipeline degrades identically
// on both.
var ErrNoText = errors.New("no recognizable text in agent result")

// Strategy is one way to pull text out of an untyped agent result.
type Strategy struct {
	Name  string
	Apply func(result any) (string, bool)
}

// Chain returns the ordered extraction strategies. The order matters: cheap
// well-known accessors first, the stringified-result regex scan last.
func Chain() []Strategy {
	return []Strategy{
		{Name: "final_result", Apply: fromFinalResult},
		{Name: "iterate", Apply: fromIteration},
		{Name: "named_fields", Apply: fromNamedFields},
		{Name: "done_scan", Apply: fromDoneScan},
		{Name: "string_form", Apply: fromStringForm},
	}
}

// RecoverText tries each strategy in order and returns the first hit.
// The agent's result object has no stable shape across versions, which is
// why this is a fallback chain rather than a typed accessor.
func RecoverText(result any) (string, error) {
	if result == nil {
		return "", ErrNoText
	}
	for _, s := range Chain() {
		if text, ok := s.Apply(result); ok {
			slog.Debug("agent text recovered", "strategy", s.Name)
			return text, nil
		}
	}
	return "", ErrNoText
}

// fromFinalResult probes for a named final-result accessor: a FinalResult()
// method, or a final_result / extracted_content field on the result itself.
func fromFinalResult(result any) (string, bool) {
	if fr, ok := result.(interface{ FinalResult() string }); ok {
		if text := strings.TrimSpace(fr.FinalResult()); text != "" {
			return text, true
		}
	}
	if text, ok := stringAt(result, "final_result", "extracted_content"); ok {
		if text = strings.TrimSpace(text); text != "" {
			return text, true
		}
	}
	return "", false
}

// fromIteration treats the result itself as a list of step results and takes
// the last non-empty extracted content.
func fromIteration(result any) (string, bool) {
	steps, ok := asSlice(result)
	if !ok {
		return "", false
	}
	return lastContent(steps)
}

// fromNamedFields looks for a step list under well-known field names,
// including one level of nesting (history.all_results).
func fromNamedFields(result any) (string, bool) {
	if steps, ok := sliceAt(result, "steps", "all_results", "results"); ok {
		if text, found := lastContent(steps); found {
			return text, true
		}
	}
	if sub, ok := valueAt(result, "history"); ok {
		if steps, ok := sliceAt(sub, "all_results", "steps", "results"); ok {
			return lastContent(steps)
		}
	}
	return "", false
}

// fromDoneScan walks every step list it can find, looking for a step with a
// done flag set and probing several content field names on it.
func fromDoneScan(result any) (string, bool) {
	var steps []any
	if s, ok := asSlice(result); ok {
		steps = s
	} else if s, ok := sliceAt(result, "steps", "all_results", "results"); ok {
		steps = s
	} else if sub, ok := valueAt(result, "history"); ok {
		if s, ok := sliceAt(sub, "all_results", "steps", "results"); ok {
			steps = s
		}
	}

	for _, step := range steps {
		if !boolAt(step, "is_done") {
			continue
		}
		if text, ok := stringAt(step, "extracted_content", "content", "text", "result", "output"); ok {
			if text = strings.TrimSpace(text); text != "" {
				return text, true
			}
		}
	}
	return "", false
}

var (
	doneContentRe = regexp.MustCompile(`(?s)"extracted_content"\s*:\s*"((?:[^"\\]|\\.)+)"\s*,\s*"is_done"\s*:\s*true`)
	anyContentRe  = regexp.MustCompile(`extracted_content["']?\s*[:=]\s*["']((?:[^"'\\]|\\.)+)["']`)
)

// fromStringForm regex-scans a string rendering of the result. JSON is tried
// first since most agent results marshal cleanly; %+v is the last resort.
func fromStringForm(result any) (string, bool) {
	var s string
	if b, err := json.Marshal(result); err == nil && len(b) > 2 {
		s = string(b)
	} else {
		s = fmt.Sprintf("%+v", result)
	}
	if !strings.Contains(s, "extracted_content") {
		return "", false
	}

	if m := doneContentRe.FindStringSubmatch(s); m != nil {
		if text := cleanMatch(m[1]); text != "" {
			return text, true
		}
	}

	// Fall back to the last extracted_content anywhere, skipping wait noise.
	matches := anyContentRe.FindAllStringSubmatch(s, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		text := cleanMatch(matches[i][1])
		if text != "" && !strings.HasPrefix(text, "Waited for") {
			return text, true
		}
	}
	return "", false
}

func cleanMatch(raw string) string {
	if unquoted, err := strconv.Unquote(`"` + raw + `"`); err == nil {
		raw = unquoted
	}
	return strings.TrimSpace(raw)
}

// lastContent returns the last non-empty extracted_content among steps.
func lastContent(steps []any) (string, bool) {
	for i := len(steps) - 1; i >= 0; i-- {
		if text, ok := stringAt(steps[i], "extracted_content"); ok {
			if text = strings.TrimSpace(text); text != "" {
				return text, true
			}
		}
	}
	return "", false
}
