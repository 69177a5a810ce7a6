// Package recall runs the query path: encode text, search the current
// index, return ranked neighbors.
package recall

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/arliden/semlabel/internal/encoder"
	"github.com/arliden/semlabel/internal/index"
	"github.com/arliden/semlabel/internal/model"
)

// Config holds the query-path tunables.
type Config struct {
	K        int
	EfSearch int
	// Timeout bounds one query's graph walk. On expiry the neighbors found
	// so far are returned rather than an error. Zero disables the bound.
	Timeout time.Duration
}

// DefaultConfig returns query settings that favor recall on small corpora.
func DefaultConfig() Config {
	return Config{K: 10, EfSearch: 64, Timeout: 2 * time.Second}
}

// Engine executes recalls against whatever index the holder currently
// publishes. It holds the index read-only; rebuilds happen elsewhere and
// swap through the holder.
type Engine struct {
	enc    encoder.Encoder
	holder *index.Holder
	cfg    Config
}

// New creates a recall Engine.
func New(enc encoder.Encoder, holder *index.Holder, cfg Config) *Engine {
	if cfg.K <= 0 {
		cfg.K = DefaultConfig().K
	}
	if cfg.EfSearch < cfg.K {
		cfg.EfSearch = cfg.K
	}
	return &Engine{enc: enc, holder: holder, cfg: cfg}
}

// Recall encodes the query text and returns its top-K neighbors, best first.
// An absent or empty index yields a result with no neighbors, not an error.
func (e *Engine) Recall(ctx context.Context, text string) (model.QueryResult, error) {
	qr := model.QueryResult{QueryID: uuid.NewString()}

	idx := e.holder.Current()
	if idx == nil {
		return qr, nil
	}

	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	vec, err := e.enc.Encode(text)
	if err != nil {
		return qr, fmt.Errorf("recall: encode: %w", err)
	}

	hits, err := idx.SearchContext(ctx, vec, e.cfg.K, e.cfg.EfSearch)
	if err != nil {
		return qr, fmt.Errorf("recall: search: %w", err)
	}

	qr.Neighbors = make([]model.Neighbor, len(hits))
	for i, h := range hits {
		qr.Neighbors[i] = model.Neighbor{
			EntryID:  h.Entry.ID,
			Label:    h.Entry.Label,
			Score:    idx.Score(h.Distance),
			Distance: h.Distance,
		}
	}
	return qr, nil
}
