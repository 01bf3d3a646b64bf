package search

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/Aman-CERP/appshelf/internal/appstream"
	apperrors "github.com/Aman-CERP/appshelf/internal/errors"
	"github.com/Aman-CERP/appshelf/internal/natsort"
)

// Engine scans a store for components matching a pattern.
// An Engine holds no mutable state and is safe for concurrent use.
type Engine struct {
	locale     string
	attributor Attributor
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLocale selects which translation of names and summaries is matched.
func WithLocale(locale string) EngineOption {
	return func(e *Engine) {
		e.locale = locale
	}
}

// WithAttributor overrides backend attribution.
func WithAttributor(a Attributor) EngineOption {
	return func(e *Engine) {
		if a != nil {
			e.attributor = a
		}
	}
}

// NewEngine returns an Engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{attributor: DefaultAttributor}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Locale returns the engine's locale.
func (e *Engine) Locale() string {
	return e.locale
}

// Search scans every component of every collection in store. Cancellation is
// checked between collections; a cancelled search returns no results.
func (e *Engine) Search(ctx context.Context, store *appstream.Store, p *Pattern, opts SearchOptions) ([]Result, error) {
	if p == nil {
		return nil, ErrEmptyQuery
	}
	start := time.Now()

	results := []Result{}
	for collID, coll := range store.All() {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.New(apperrors.ErrCodeSearchFailed, "search cancelled", err).
				WithDetail("query", p.String())
		}
		for _, comp := range coll.Components {
			name := comp.Name.Get(e.locale)
			summary := comp.Summary.Get(e.locale)
			weight, ok := p.Weigh(name, summary)
			if !ok {
				continue
			}
			results = append(results, Result{
				Backend:     e.attributor(collID, coll, comp),
				ID:          collID,
				ComponentID: comp.ID,
				Name:        name,
				Summary:     summary,
				Icon:        store.Icon(coll.Origin, comp),
				Weight:      weight,
				Collection:  coll,
				Component:   comp,
			})
		}
	}

	Sort(results, e.locale)
	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}

	slog.Info("searched",
		slog.String("query", p.String()),
		slog.Int("results", len(results)),
		slog.Duration("duration", time.Since(start)))
	return results, nil
}

// Sort orders results by weight, then name in natural order. Collection and
// component ids break the remaining ties.
func Sort(results []Result, locale string) {
	coll := natsort.New(locale)
	slices.SortStableFunc(results, func(a, b Result) int {
		if a.Weight != b.Weight {
			return a.Weight - b.Weight
		}
		if c := coll.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		if c := strings.Compare(a.ID, b.ID); c != 0 {
			return c
		}
		return strings.Compare(a.ComponentID, b.ComponentID)
	})
}
