package assistant

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

var DefaultConfirmations = []string{
	"yes", "yeah", "yep", "sure", "go ahead", "book it", "ok", "okay",
	"confirm", "sounds good", "please do", "do it", "absolutely",
}

// Matcher decides whether an utterance confirms a pending suggestion. A
// text matches when it contains any phrase after case folding, so "yesss"
// and "yes but not that one" are accepted too.
type Matcher struct {
	phrases    []string
	wholeWords bool
}

type MatcherOption func(*Matcher)

// WithWholeWords only accepts phrases that appear as a run of whole words,
// so "book a room" no longer matches "ok".
func WithWholeWords() MatcherOption {
	return func(m *Matcher) {
		m.wholeWords = true
	}
}

func NewMatcher(phrases []string, opts ...MatcherOption) *Matcher {
	if len(phrases) == 0 {
		phrases = DefaultConfirmations
	}
	m := &Matcher{}
	for _, opt := range opts {
		opt(m)
	}
	for _, p := range phrases {
		if n := normalize(p); n != "" {
			m.phrases = append(m.phrases, n)
		}
	}
	return m
}

func (m *Matcher) IsConfirmation(text string) bool {
	normalized := normalize(text)
	if normalized == "" {
		return false
	}
	if m.wholeWords {
		normalized = " " + normalized + " "
	}
	for _, p := range m.phrases {
		if m.wholeWords {
			p = " " + p + " "
		}
		if strings.Contains(normalized, p) {
			return true
		}
	}
	return false
}

// normalize case-folds s and collapses punctuation and whitespace into
// single spaces.
func normalize(s string) string {
	folded := cases.Fold().String(s)
	fields := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	return strings.Join(fields, " ")
}
