package search

import (
	"regexp"

	apperrors "github.com/Aman-CERP/appshelf/internal/errors"
)

// ErrEmptyQuery is returned by Compile for an empty query.
var ErrEmptyQuery error = apperrors.New(apperrors.ErrCodeQueryEmpty, "search query is empty", nil)

// Pattern is a compiled query. Query text is matched literally.
type Pattern struct {
	text string
	re   *regexp.Regexp
}

// Compile builds a case-insensitive literal pattern from raw user text.
// The text is not trimmed: " " is a valid query.
func Compile(text string) (*Pattern, error) {
	if text == "" {
		return nil, ErrEmptyQuery
	}
	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(text))
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeInvalidQuery, "invalid search query", err).
			WithDetail("query", text)
	}
	return &Pattern{text: text, re: re}, nil
}

// String returns the query text.
func (p *Pattern) String() string {
	return p.text
}

// Weigh ranks one component by its localized name and summary. ok is false
// when neither field matches.
func (p *Pattern) Weigh(name, summary string) (weight int, ok bool) {
	if w, ok := tier(p.re, name); ok {
		return WeightNameExact + w, true
	}
	if w, ok := tier(p.re, summary); ok {
		return WeightSummaryExact + w, true
	}
	return 0, false
}

// tier returns 0 for a whole-string match, 1 for a prefix match and 2 for a
// match elsewhere.
func tier(re *regexp.Regexp, s string) (int, bool) {
	loc := re.FindStringIndex(s)
	switch {
	case loc == nil:
		return 0, false
	case loc[0] != 0:
		return 2, true
	case loc[1] == len(s):
		return 0, true
	default:
		return 1, true
	}
}
