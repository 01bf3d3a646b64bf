// Package search ranks appstream components against a user query.
//
// Matching is literal and case-insensitive. Each component gets one weight:
//
//	0  name equals the query
//	1  name starts with the query
//	2  name contains the query
//	3  summary equals the query
//	4  summary starts with the query
//	5  summary contains the query
//
// Components that match neither field are not results. Results are ordered
// by weight, then by name in natural order.
package search

import (
	"github.com/Aman-CERP/appshelf/internal/appstream"
)

// Weight tiers, best first.
const (
	WeightNameExact = iota
	WeightNamePrefix
	WeightNameContains
	WeightSummaryExact
	WeightSummaryPrefix
	WeightSummaryContains
)

// Result is one matching component. ID is the id of the collection holding
// the component; Collection is shared with the store, never copied.
type Result struct {
	Backend     string         `json:"backend"`
	ID          string         `json:"id"`
	ComponentID string         `json:"component_id"`
	Name        string         `json:"name"`
	Summary     string         `json:"summary,omitempty"`
	Icon        appstream.Icon `json:"icon"`
	Weight      int            `json:"weight"`

	Collection *appstream.Collection `json:"-"`
	Component  *appstream.Component  `json:"-"`
}

// SearchOptions configures one search.
type SearchOptions struct {
	// Limit caps the number of results (0 = unlimited).
	Limit int
}
