package appstream

import "sync/atomic"

// Holder publishes the current Store. Readers always see a complete store;
// a reload swaps in a fresh one and never touches the old.
type Holder struct {
	p atomic.Pointer[Store]
}

// NewHolder returns a Holder publishing s.
func NewHolder(s *Store) *Holder {
	h := &Holder{}
	h.p.Store(s)
	return h
}

// Load returns the current store, or an empty store if none was published.
func (h *Holder) Load() *Store {
	if h == nil {
		return emptyStore
	}
	if s := h.p.Load(); s != nil {
		return s
	}
	return emptyStore
}

// Swap publishes s and returns the previous store.
func (h *Holder) Swap(s *Store) *Store {
	return h.p.Swap(s)
}

var emptyStore = NewStoreFromCollections(nil, nil, 1)
