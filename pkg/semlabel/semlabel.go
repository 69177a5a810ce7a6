package semlabel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/arliden/semlabel/internal/corpus"
	"github.com/arliden/semlabel/internal/encoder"
	"github.com/arliden/semlabel/internal/index"
	"github.com/arliden/semlabel/internal/labelpath"
	"github.com/arliden/semlabel/internal/model"
	"github.com/arliden/semlabel/internal/recall"
	"github.com/arliden/semlabel/internal/vote"
)

// Example is one labeled corpus record. Label is a ##-separated path such
// as "体育##篮球".
type Example struct {
	Text  string
	Label string
}

// Neighbor is one recalled corpus entry. Score is a similarity: higher
// means closer.
type Neighbor struct {
	Label string
	Score float64
}

// Prediction is the classification result for one query. Label is
// Unclassified when no label reached the confidence threshold.
type Prediction struct {
	Label      string
	Confidence float64
}

// Unclassified is the Label value of predictions that failed the
// confidence threshold.
const Unclassified = model.UnclassifiedLabel

// Classifier embeds queries and classifies them against an indexed corpus.
// Safe for concurrent use.
type Classifier struct {
	enc      encoder.Encoder
	holder   *index.Holder
	engine   *recall.Engine
	voteOpts vote.Options

	indexCfg  index.Config
	embedOpts corpus.EmbedOptions
}

// New builds a Classifier: it creates the encoder, embeds the corpus, and
// constructs the search index. Corpus embedding dominates the cost; create
// once and reuse across queries.
func New(opts ...Option) (*Classifier, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	strategy, err := vote.ParseStrategy(o.strategy)
	if err != nil {
		return nil, fmt.Errorf("semlabel: %w", err)
	}

	enc, err := encoder.New(encoder.Config{
		Backend:       o.backend,
		Dim:           o.dim,
		Seed:          o.seed,
		ModelPath:     o.modelPath,
		TokenizerPath: o.tokenizerPath,
		MaxSeqLen:     o.maxSeqLen,
	})
	if err != nil {
		return nil, fmt.Errorf("semlabel: %w", err)
	}

	examples, err := gatherExamples(o)
	if err != nil {
		enc.Close()
		return nil, err
	}

	c := &Classifier{
		enc: enc,
		voteOpts: vote.Options{
			Strategy:      strategy,
			Depth:         o.depth,
			MinConfidence: o.minConfidence,
		},
		indexCfg: index.Config{
			M:              o.m,
			EfConstruction: o.efConstruction,
			Metric:         index.Metric(o.metric),
			Seed:           o.indexSeed,
		},
		embedOpts: corpus.EmbedOptions{Workers: o.embedWorkers},
	}

	idx, err := c.buildIndex(examples)
	if err != nil {
		enc.Close()
		return nil, err
	}
	c.holder = index.NewHolder(idx)
	c.engine = recall.New(enc, c.holder, recall.Config{
		K:        o.k,
		EfSearch: o.efSearch,
		Timeout:  o.timeout,
	})
	return c, nil
}

// Classify predicts the label of one query text.
func (c *Classifier) Classify(ctx context.Context, text string) (Prediction, error) {
	qr, err := c.engine.Recall(ctx, text)
	if err != nil {
		return Prediction{}, fmt.Errorf("semlabel: %w", err)
	}
	return toPublic(vote.Classify(qr, c.voteOpts)), nil
}

// ClassifyBatch predicts labels for multiple queries.
func (c *Classifier) ClassifyBatch(ctx context.Context, texts []string) ([]Prediction, error) {
	preds := make([]Prediction, len(texts))
	for i, text := range texts {
		p, err := c.Classify(ctx, text)
		if err != nil {
			return nil, err
		}
		preds[i] = p
	}
	return preds, nil
}

// Recall returns the query's raw nearest neighbors, best first, without
// voting. Useful for inspecting what the classifier would vote over.
func (c *Classifier) Recall(ctx context.Context, text string) ([]Neighbor, error) {
	qr, err := c.engine.Recall(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("semlabel: %w", err)
	}
	nbs := make([]Neighbor, len(qr.Neighbors))
	for i, nb := range qr.Neighbors {
		nbs[i] = Neighbor{Label: nb.Label.String(), Score: nb.Score}
	}
	return nbs, nil
}

// Rebuild re-embeds the given corpus and atomically swaps it in. In-flight
// queries finish against the old index; new queries see the new one.
func (c *Classifier) Rebuild(examples []Example) error {
	internal, err := toInternal(examples)
	if err != nil {
		return err
	}
	idx, err := c.buildIndex(internal)
	if err != nil {
		return err
	}
	c.holder.Replace(idx)
	return nil
}

// Close releases encoder resources. Only the ONNX backend holds any.
func (c *Classifier) Close() error {
	return c.enc.Close()
}

func (c *Classifier) buildIndex(examples []model.Example) (*index.Index, error) {
	entries, err := corpus.Embed(c.enc, examples, c.embedOpts)
	if err != nil {
		return nil, fmt.Errorf("semlabel: embed corpus: %w", err)
	}
	idx, err := index.Build(entries, c.indexCfg)
	if err != nil {
		return nil, fmt.Errorf("semlabel: build index: %w", err)
	}
	return idx, nil
}

func gatherExamples(o options) ([]model.Example, error) {
	var examples []model.Example
	if o.corpusFile != "" {
		loaded, report, err := corpus.LoadExamples(o.corpusFile)
		if err != nil {
			return nil, fmt.Errorf("semlabel: %w", err)
		}
		if report.Malformed > 0 {
			slog.Warn("corpus has malformed lines",
				"file", o.corpusFile, "malformed", report.Malformed, "loaded", len(loaded))
		}
		examples = loaded
	}
	direct, err := toInternal(o.examples)
	if err != nil {
		return nil, err
	}
	examples = append(examples, direct...)

	if len(examples) == 0 {
		return nil, errors.New("semlabel: no corpus: use WithCorpusFile or WithExamples")
	}
	return examples, nil
}

func toInternal(examples []Example) ([]model.Example, error) {
	out := make([]model.Example, len(examples))
	for i, ex := range examples {
		path, err := labelpath.Parse(ex.Label)
		if err != nil {
			return nil, fmt.Errorf("semlabel: example %d: %w", i, err)
		}
		out[i] = model.Example{Text: ex.Text, Label: path}
	}
	return out, nil
}

func toPublic(p model.Prediction) Prediction {
	if p.Unclassified() {
		return Prediction{Label: Unclassified, Confidence: p.Confidence}
	}
	return Prediction{Label: p.Label.String(), Confidence: p.Confidence}
}
