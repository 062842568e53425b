package quiz

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
	"prepify-quiz/internal/domain"
)

// Matcher decides whether a selected option counts as the stored answer.
type Matcher interface {
	Match(selected, correct string) bool
}

// ExactMatcher compares byte-for-byte; case and whitespace matter.
type ExactMatcher struct{}

func (ExactMatcher) Match(selected, correct string) bool {
	return selected == correct
}

// NormalizedMatcher trims, NFC-normalizes and case-folds both sides before comparing.
type NormalizedMatcher struct{}

func (NormalizedMatcher) Match(selected, correct string) bool {
	return normalize(selected) == normalize(correct)
}

func normalize(s string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
}

// MatcherFor maps the configured policy name onto a Matcher. Empty means exact.
func MatcherFor(policy string) (Matcher, error) {
	switch strings.ToLower(strings.TrimSpace(policy)) {
	case "", "exact":
		return ExactMatcher{}, nil
	case "normalized", "normalised":
		return NormalizedMatcher{}, nil
	}
	return nil, domain.Invalidf("unknown match policy %q", policy)
}
