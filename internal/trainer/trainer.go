// Package trainer implements the in-batch-negatives contrastive objective
// for the dual encoder. Every (query, positive) pair in a batch supplies
// negatives for every other pair: the similarity matrix's diagonal holds the
// true pairs, everything off-diagonal is a negative. The diagonal is pushed
// up by a margin before a scaled softmax cross-entropy.
package trainer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/arliden/semlabel/internal/encoder"
)

// ErrBadBatch is returned for batches the loss is undefined on: mismatched
// query/positive counts or fewer than two pairs (no negatives).
var ErrBadBatch = errors.New("trainer: batch must contain at least two aligned pairs")

// Pair is one training example: a query and the text of its true label
// (or a representative labeled example).
type Pair struct {
	Query    string
	Positive string
}

// Config holds the training hyperparameters.
type Config struct {
	Margin    float64 // subtracted from each positive-pair logit
	Scale     float64 // logit multiplier before softmax
	LearnRate float64
	Symmetric bool // also apply the column-wise loss (positives as queries)
}

// DefaultConfig returns the standard in-batch-negatives recipe.
func DefaultConfig() Config {
	return Config{Margin: 0.3, Scale: 30, LearnRate: 0.05, Symmetric: false}
}

// Trainer owns the encoder weights for the duration of training. All other
// components must treat the encoder as read-only while a Trainer holds it.
type Trainer struct {
	enc     encoder.Trainable
	cfg     Config
	skipped int
}

// New creates a Trainer over the shared dual encoder.
func New(enc encoder.Trainable, cfg Config) *Trainer {
	if cfg.Scale <= 0 {
		cfg.Scale = 1
	}
	return &Trainer{enc: enc, cfg: cfg}
}

// SkippedSteps reports how many steps were dropped due to numeric
// instability. A growing count is a degraded-training signal.
func (t *Trainer) SkippedSteps() int { return t.skipped }

// Step runs one training step over the batch and returns the loss.
// A non-finite loss skips the weight update and is not an error; malformed
// batches are.
func (t *Trainer) Step(batch []Pair) (float64, error) {
	n := len(batch)
	if n < 2 {
		return 0, ErrBadBatch
	}

	queries := make([]string, n)
	positives := make([]string, n)
	for i, p := range batch {
		queries[i] = p.Query
		positives[i] = p.Positive
	}

	q, backQ, err := t.enc.Forward(queries)
	if err != nil {
		return 0, fmt.Errorf("trainer: encode queries: %w", err)
	}
	p, backP, err := t.enc.Forward(positives)
	if err != nil {
		return 0, fmt.Errorf("trainer: encode positives: %w", err)
	}
	if len(q) != n || len(p) != n {
		return 0, fmt.Errorf("trainer: encoder returned %d/%d vectors for %d pairs", len(q), len(p), n)
	}
	dim := len(q[0])
	for i := 0; i < n; i++ {
		if len(q[i]) != dim || len(p[i]) != dim {
			return 0, fmt.Errorf("trainer: %w", encoder.ErrDimensionMismatch)
		}
	}

	// Similarity matrix S[i][j] = q_i · p_j. Encoders emit unit vectors, so
	// this is cosine similarity.
	s := make([][]float64, n)
	for i := 0; i < n; i++ {
		s[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			var dot float64
			for d := 0; d < dim; d++ {
				dot += float64(q[i][d]) * float64(p[j][d])
			}
			s[i][j] = dot
		}
	}

	// gS accumulates dLoss/dS across the row-wise and, if configured, the
	// column-wise objective.
	gS := make([][]float64, n)
	for i := range gS {
		gS[i] = make([]float64, n)
	}

	loss := t.softmaxLoss(s, gS, false)
	if t.cfg.Symmetric {
		loss = (loss + t.softmaxLoss(s, gS, true)) / 2
		for i := range gS {
			for j := range gS[i] {
				gS[i][j] /= 2
			}
		}
	}

	if math.IsNaN(loss) || math.IsInf(loss, 0) {
		t.skipped++
		slog.Warn("skipping training step with non-finite loss",
			"loss", loss, "batch_size", n, "skipped_total", t.skipped)
		return loss, nil
	}

	// Chain to the embeddings: dL/dQ = gS · P, dL/dP = gSᵗ · Q.
	gQ := make([][]float32, n)
	gP := make([][]float32, n)
	for i := 0; i < n; i++ {
		gQ[i] = make([]float32, dim)
		gP[i] = make([]float32, dim)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			g := gS[i][j]
			if g == 0 {
				continue
			}
			for d := 0; d < dim; d++ {
				gQ[i][d] += float32(g * float64(p[j][d]))
				gP[j][d] += float32(g * float64(q[i][d]))
			}
		}
	}

	backQ(gQ, t.cfg.LearnRate)
	backP(gP, t.cfg.LearnRate)
	return loss, nil
}

// softmaxLoss computes the mean margin-adjusted softmax cross-entropy over
// rows of s (or over columns when transposed is set) and accumulates
// dLoss/dS into gS. The target for row i is column i.
func (t *Trainer) softmaxLoss(s, gS [][]float64, transposed bool) float64 {
	n := len(s)
	at := func(i, j int) float64 {
		if transposed {
			return s[j][i]
		}
		return s[i][j]
	}
	addGrad := func(i, j int, g float64) {
		if transposed {
			gS[j][i] += g
		} else {
			gS[i][j] += g
		}
	}

	var total float64
	logits := make([]float64, n)
	for i := 0; i < n; i++ {
		maxLogit := math.Inf(-1)
		for j := 0; j < n; j++ {
			l := at(i, j) * t.cfg.Scale
			if j == i {
				l -= t.cfg.Margin * t.cfg.Scale
			}
			logits[j] = l
			if l > maxLogit {
				maxLogit = l
			}
		}

		var sum float64
		for j := 0; j < n; j++ {
			sum += math.Exp(logits[j] - maxLogit)
		}
		logSum := math.Log(sum) + maxLogit
		total += logSum - logits[i]

		// dLoss_i/dS[i][j] = scale * (softmax_j - 1{j==i}) / n.
		for j := 0; j < n; j++ {
			prob := math.Exp(logits[j] - logSum)
			delta := 0.0
			if j == i {
				delta = 1
			}
			addGrad(i, j, t.cfg.Scale*(prob-delta)/float64(n))
		}
	}
	return total / float64(n)
}

// EpochStats summarizes one pass over the training pairs.
type EpochStats struct {
	Steps    int
	Skipped  int
	MeanLoss float64
}

// Run trains for the given number of epochs, cutting the pair list into
// batches of batchSize. Cancellation is honored between steps only; a step's
// weight update is atomic.
func (t *Trainer) Run(ctx context.Context, pairs []Pair, batchSize, epochs int) ([]EpochStats, error) {
	if batchSize < 2 {
		return nil, ErrBadBatch
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("trainer: no training pairs")
	}

	stats := make([]EpochStats, 0, epochs)
	for e := 0; e < epochs; e++ {
		var epochLoss float64
		var steps int
		skippedBefore := t.skipped

		for start := 0; start < len(pairs); start += batchSize {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
			end := min(start+batchSize, len(pairs))
			batch := pairs[start:end]
			if len(batch) < 2 {
				// Tail too small to supply negatives; fold it into nothing.
				continue
			}
			loss, err := t.Step(batch)
			if err != nil {
				return stats, err
			}
			if !math.IsNaN(loss) && !math.IsInf(loss, 0) {
				epochLoss += loss
				steps++
			}
		}

		st := EpochStats{Steps: steps, Skipped: t.skipped - skippedBefore}
		if steps > 0 {
			st.MeanLoss = epochLoss / float64(steps)
		}
		stats = append(stats, st)
		slog.Info("epoch complete", "epoch", e+1, "steps", st.Steps,
			"mean_loss", st.MeanLoss, "skipped", st.Skipped)
	}
	return stats, nil
}
