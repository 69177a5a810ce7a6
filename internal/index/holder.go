package index

import "sync/atomic"

// Holder publishes the current index to concurrent readers. Rebuilds are
// atomic from the readers' point of view: a searcher sees either the old
// graph or the new one, never a half-built state.
type Holder struct {
	current atomic.Pointer[Index]
}

// NewHolder creates a Holder, optionally seeded with an initial index.
func NewHolder(idx *Index) *Holder {
	h := &Holder{}
	if idx != nil {
		h.current.Store(idx)
	}
	return h
}

// Current returns the active index, or nil when none has been built yet.
func (h *Holder) Current() *Index {
	return h.current.Load()
}

// Replace swaps in a newly built index and returns the one it displaced.
func (h *Holder) Replace(idx *Index) *Index {
	return h.current.Swap(idx)
}
