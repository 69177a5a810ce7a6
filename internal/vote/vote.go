// Package vote aggregates recalled neighbors into a single prediction.
//
// Tie-break order, applied in sequence until one group remains: the group
// containing the single best-scoring neighbor wins; then the deeper label
// path; then the lexicographically smaller path. The last rule exists only
// to make the result fully deterministic.
package vote

import (
	"fmt"

	"github.com/arliden/semlabel/internal/labelpath"
	"github.com/arliden/semlabel/internal/model"
)

// Strategy selects how neighbors are aggregated.
type Strategy int

const (
	// Best predicts the label of the single top-ranked neighbor.
	Best Strategy = iota
	// Count predicts the label group with the most neighbors.
	Count
	// Weighted predicts the label group with the largest similarity sum.
	Weighted
)

// ParseStrategy maps the external strategy names.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "best", "":
		return Best, nil
	case "count":
		return Count, nil
	case "weighted":
		return Weighted, nil
	}
	return Best, fmt.Errorf("vote: unknown strategy %q", s)
}

func (s Strategy) String() string {
	switch s {
	case Count:
		return "count"
	case Weighted:
		return "weighted"
	default:
		return "best"
	}
}

// Options configures classification.
type Options struct {
	Strategy Strategy
	// Depth groups and predicts at this hierarchy level; 0 uses full paths.
	Depth int
	// MinConfidence rejects predictions whose confidence falls below it,
	// yielding an unclassified result instead of a low-confidence guess.
	MinConfidence float64
}

// group accumulates one label path's votes.
type group struct {
	label  labelpath.Path
	weight float64
	best   float64 // best single-neighbor score in the group
}

// Classify turns an ordered neighbor list into a Prediction. It is a pure
// function of its inputs: the same neighbors always produce the same
// prediction.
func Classify(qr model.QueryResult, opts Options) model.Prediction {
	pred := model.Prediction{QueryID: qr.QueryID}
	if len(qr.Neighbors) == 0 {
		return pred
	}

	if opts.Strategy == Best {
		top := qr.Neighbors[0]
		pred.Confidence = top.Score
		if top.Score >= opts.MinConfidence {
			pred.Label = top.Label.Truncate(opts.Depth)
		}
		return pred
	}

	groups := make(map[string]*group)
	var total float64
	for _, nb := range qr.Neighbors {
		label := nb.Label.Truncate(opts.Depth)
		weight := 1.0
		if opts.Strategy == Weighted {
			weight = nb.Score
			if weight < 0 {
				weight = 0
			}
		}
		total += weight

		key := label.String()
		g, ok := groups[key]
		if !ok {
			g = &group{label: label, best: nb.Score}
			groups[key] = g
		}
		g.weight += weight
		if nb.Score > g.best {
			g.best = nb.Score
		}
	}

	var winner *group
	for _, g := range groups {
		if winner == nil || better(g, winner) {
			winner = g
		}
	}

	if total > 0 {
		pred.Confidence = winner.weight / total
	}
	if pred.Confidence >= opts.MinConfidence {
		pred.Label = winner.label
	}
	return pred
}

// better reports whether group a beats group b under the documented
// tie-break order.
func better(a, b *group) bool {
	if a.weight != b.weight {
		return a.weight > b.weight
	}
	if a.best != b.best {
		return a.best > b.best
	}
	if len(a.label) != len(b.label) {
		return len(a.label) > len(b.label)
	}
	return a.label.String() < b.label.String()
}
