// Package eval measures retrieval and end-to-end classification quality
// against golden (text, label) pairs.
//
// recall@K and accuracy are deliberately separate: recall@K asks whether the
// index surfaced any correct neighbor at all (index quality), accuracy asks
// whether the voted prediction matched the gold label (whole pipeline).
package eval

import (
	"context"
	"fmt"

	"github.com/arliden/semlabel/internal/labelpath"
	"github.com/arliden/semlabel/internal/model"
	"github.com/arliden/semlabel/internal/recall"
	"github.com/arliden/semlabel/internal/vote"
)

// Options configures an evaluation run.
type Options struct {
	Vote vote.Options
	// Depth at which predictions and recalled labels are compared with the
	// gold label; 0 compares full paths.
	Depth int
}

// Metrics is the result of evaluating a golden set.
type Metrics struct {
	RecallAtK float64
	Accuracy  float64
	Total     int
	Evaluated int
	Failed    int // queries that errored rather than scored
}

// Evaluate runs every golden example through the recall engine and voter.
// Query failures are counted and skipped, not fatal; an empty golden set is
// an error.
func Evaluate(ctx context.Context, eng *recall.Engine, golden []model.Example, opts Options) (Metrics, error) {
	if len(golden) == 0 {
		return Metrics{}, fmt.Errorf("eval: no golden examples")
	}

	m := Metrics{Total: len(golden)}
	var recalled, correct int
	for _, ex := range golden {
		if err := ctx.Err(); err != nil {
			return m, err
		}
		qr, err := eng.Recall(ctx, ex.Text)
		if err != nil {
			m.Failed++
			continue
		}
		m.Evaluated++

		for _, nb := range qr.Neighbors {
			if labelpath.EqualAtDepth(nb.Label, ex.Label, opts.Depth) {
				recalled++
				break
			}
		}

		voteOpts := opts.Vote
		voteOpts.Depth = opts.Depth
		pred := vote.Classify(qr, voteOpts)
		if !pred.Unclassified() && labelpath.EqualAtDepth(pred.Label, ex.Label, opts.Depth) {
			correct++
		}
	}

	if m.Evaluated > 0 {
		m.RecallAtK = float64(recalled) / float64(m.Evaluated)
		m.Accuracy = float64(correct) / float64(m.Evaluated)
	}
	return m, nil
}
