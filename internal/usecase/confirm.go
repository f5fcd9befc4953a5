package usecase

import "strings"

// Verdict is the tri-state outcome of matching a free-text confirmation.
type Verdict int

const (
	VerdictUnrecognized Verdict = iota
	VerdictYes
	VerdictNo
)

// ConfirmMatcher classifies natural-language yes/no replies against
// configurable synonym sets.
type ConfirmMatcher struct {
	yes map[string]struct{}
	no  map[string]struct{}
}

// DefaultYes and DefaultNo are the synonym sets used when none are configured.
var (
	DefaultYes = []string{"yes", "y", "yeah", "yep", "ok", "okay", "sure", "confirm", "send"}
	DefaultNo  = []string{"no", "n", "nope", "cancel", "stop", "abort"}
)

// NewConfirmMatcher builds a matcher from synonym lists; empty lists fall
// back to the defaults.
func NewConfirmMatcher(yes, no []string) *ConfirmMatcher {
	if len(yes) == 0 {
		yes = DefaultYes
	}
	if len(no) == 0 {
		no = DefaultNo
	}

	m := &ConfirmMatcher{
		yes: make(map[string]struct{}, len(yes)),
		no:  make(map[string]struct{}, len(no)),
	}
	for _, w := range yes {
		m.yes[normalizeWord(w)] = struct{}{}
	}
	for _, w := range no {
		m.no[normalizeWord(w)] = struct{}{}
	}
	return m
}

// Match classifies the text. Anything not in either synonym set is
// Unrecognized; the caller decides how to re-prompt.
func (m *ConfirmMatcher) Match(text string) Verdict {
	word := normalizeWord(text)
	if _, ok := m.yes[word]; ok {
		return VerdictYes
	}
	if _, ok := m.no[word]; ok {
		return VerdictNo
	}
	return VerdictUnrecognized
}

func normalizeWord(s string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(s), ".!؟?"))
}
