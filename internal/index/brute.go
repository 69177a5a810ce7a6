package index

import (
	"fmt"
	"sort"

	"github.com/arliden/semlabel/internal/encoder"
	"github.com/arliden/semlabel/internal/model"
)

// BruteForce scans every entry and returns the exact k nearest, ascending by
// distance. It is the correctness baseline for the graph search and the
// sensible path for tiny corpora.
func BruteForce(entries []model.CorpusEntry, vec []float32, k int, metric Metric) ([]Hit, error) {
	if len(entries) == 0 || k <= 0 {
		return nil, nil
	}
	distFn, err := distanceFunc(metric)
	if err != nil {
		return nil, err
	}
	dim := len(entries[0].Vector)
	if len(vec) != dim {
		return nil, fmt.Errorf("index: query dim %d, corpus dim %d: %w",
			len(vec), dim, encoder.ErrDimensionMismatch)
	}

	hits := make([]Hit, 0, len(entries))
	for _, e := range entries {
		if len(e.Vector) != dim {
			return nil, fmt.Errorf("index: entry %s: %w", e.ID, encoder.ErrDimensionMismatch)
		}
		hits = append(hits, Hit{Entry: e, Distance: distFn(vec, e.Vector)})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}
