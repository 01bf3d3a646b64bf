// Package natsort orders display names the way people read them: embedded
// numbers compare by value ("Item 2" < "Item 10") and letters compare by the
// locale's collation rules, ignoring case.
package natsort

import (
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Collator compares strings in natural order for one locale.
// A Collator is not safe for concurrent use; create one per sort.
type Collator struct {
	c *collate.Collator
}

// New returns a Collator for the BCP-47 locale tag. Unparseable tags fall
// back to the root collation.
func New(locale string) *Collator {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Und
	}
	return &Collator{c: collate.New(tag, collate.Numeric, collate.IgnoreCase)}
}

// Compare returns -1, 0 or +1. Strings the collation considers equal
// ("firefox" vs "Firefox") are ordered by their bytes so the result is total.
func (n *Collator) Compare(a, b string) int {
	if r := n.c.CompareString(a, b); r != 0 {
		return r
	}
	return strings.Compare(a, b)
}

// Less reports whether a sorts before b.
func (n *Collator) Less(a, b string) bool {
	return n.Compare(a, b) < 0
}
