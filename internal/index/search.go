package index

import (
	"container/heap"
	"context"
	"fmt"
	"sort"

	"github.com/arliden/semlabel/internal/encoder"
)

// scored pairs a node ordinal with its distance to the current query.
type scored struct {
	ord  int32
	dist float64
}

// minQueue is a nearest-first priority queue.
type minQueue []scored

func (q minQueue) Len() int            { return len(q) }
func (q minQueue) Less(i, j int) bool  { return q[i].dist < q[j].dist }
func (q minQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *minQueue) Push(v any)         { *q = append(*q, v.(scored)) }
func (q *minQueue) Pop() any           { old := *q; v := old[len(old)-1]; *q = old[:len(old)-1]; return v }

// maxQueue is a farthest-first priority queue; its head bounds the result set.
type maxQueue []scored

func (q maxQueue) Len() int            { return len(q) }
func (q maxQueue) Less(i, j int) bool  { return q[i].dist > q[j].dist }
func (q maxQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *maxQueue) Push(v any)         { *q = append(*q, v.(scored)) }
func (q *maxQueue) Pop() any           { old := *q; v := old[len(old)-1]; *q = old[:len(old)-1]; return v }

// searchLayer runs the beam search at one layer, keeping the ef closest
// candidates seen. done, when non-nil, aborts the walk early; whatever has
// been found so far is returned.
func (x *Index) searchLayer(vec []float32, ep int32, ef, l int, done <-chan struct{}) []scored {
	visited := map[int32]struct{}{ep: {}}
	epDist := x.dist(vec, x.entries[ep].Vector)

	candidates := minQueue{{ord: ep, dist: epDist}}
	results := maxQueue{{ord: ep, dist: epDist}}

	steps := 0
	for candidates.Len() > 0 {
		if done != nil {
			steps++
			if steps%64 == 0 {
				select {
				case <-done:
					return sortedResults(results)
				default:
				}
			}
		}

		cand := heap.Pop(&candidates).(scored)
		if results.Len() >= ef && cand.dist > results[0].dist {
			break
		}
		for _, nb := range x.linksAt(cand.ord, l) {
			if _, seen := visited[nb]; seen {
				continue
			}
			visited[nb] = struct{}{}
			d := x.dist(vec, x.entries[nb].Vector)
			if results.Len() < ef || d < results[0].dist {
				heap.Push(&candidates, scored{ord: nb, dist: d})
				heap.Push(&results, scored{ord: nb, dist: d})
				if results.Len() > ef {
					heap.Pop(&results)
				}
			}
		}
	}
	return sortedResults(results)
}

// sortedResults flattens the bounded heap into ascending distance order.
func sortedResults(results maxQueue) []scored {
	out := make([]scored, len(results))
	copy(out, results)
	sort.Slice(out, func(i, j int) bool { return out[i].dist < out[j].dist })
	return out
}

// Search returns up to k entries closest to vec, ascending by distance.
// efSearch bounds the candidate pool at the base layer and trades recall
// for latency; values below k are raised to k.
func (x *Index) Search(vec []float32, k, efSearch int) ([]Hit, error) {
	return x.SearchContext(context.Background(), vec, k, efSearch)
}

// SearchContext is Search with cancellation. If ctx expires mid-walk the
// hits found so far are returned — a partial, possibly lower-recall result
// rather than an error.
func (x *Index) SearchContext(ctx context.Context, vec []float32, k, efSearch int) ([]Hit, error) {
	if len(vec) != x.dim {
		return nil, fmt.Errorf("index: query dim %d, index dim %d: %w",
			len(vec), x.dim, encoder.ErrDimensionMismatch)
	}
	if k <= 0 {
		return nil, nil
	}
	if efSearch < k {
		efSearch = k
	}

	ep := x.entry
	epDist := x.dist(vec, x.entries[ep].Vector)
	for l := x.topLayer; l > 0; l-- {
		if ctx.Err() != nil {
			break
		}
		ep, epDist = x.greedyStep(vec, ep, epDist, l)
	}

	found := x.searchLayer(vec, ep, efSearch, 0, ctx.Done())
	if len(found) > k {
		found = found[:k]
	}
	hits := make([]Hit, len(found))
	for i, s := range found {
		hits[i] = Hit{Entry: x.entries[s.ord], Distance: s.dist}
	}
	return hits, nil
}
