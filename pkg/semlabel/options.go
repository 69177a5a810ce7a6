package semlabel

import "time"

type options struct {
	backend       string
	dim           int
	seed          int64
	modelPath     string
	tokenizerPath string
	maxSeqLen     int

	corpusFile string
	examples   []Example

	m              int
	efConstruction int
	metric         string
	indexSeed      int64

	k        int
	efSearch int
	timeout  time.Duration

	strategy      string
	depth         int
	minConfidence float64

	embedWorkers int
}

// Option configures a Classifier.
type Option func(*options)

// WithBackend selects the encoder backend: "hash" (default), "linear",
// or "onnx".
func WithBackend(name string) Option {
	return func(o *options) { o.backend = name }
}

// WithDim sets the embedding dimension for the hash and linear backends.
// Default: 256.
func WithDim(dim int) Option {
	return func(o *options) { o.dim = dim }
}

// WithSeed sets the encoder initialization seed.
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = seed }
}

// WithModelPaths sets the ONNX model and tokenizer files for the "onnx"
// backend.
func WithModelPaths(model, tokenizer string) Option {
	return func(o *options) {
		o.modelPath = model
		o.tokenizerPath = tokenizer
	}
}

// WithCorpusFile loads the corpus from a TSV file of `text <TAB> label`
// lines, where label is a ##-separated path.
func WithCorpusFile(path string) Option {
	return func(o *options) { o.corpusFile = path }
}

// WithExamples supplies the corpus directly. Appends to any examples loaded
// via WithCorpusFile.
func WithExamples(examples []Example) Option {
	return func(o *options) { o.examples = append(o.examples, examples...) }
}

// WithK sets how many neighbors each query recalls. Default: 10.
func WithK(k int) Option {
	return func(o *options) { o.k = k }
}

// WithEfSearch widens the search beam; larger values trade latency for
// recall. Clamped to at least K.
func WithEfSearch(ef int) Option {
	return func(o *options) { o.efSearch = ef }
}

// WithTimeout bounds one query's index walk. On expiry the neighbors found
// so far are used. Default: 2s; zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithIndexParams sets the graph degree M and construction beam width.
// Defaults: 16 and 200.
func WithIndexParams(m, efConstruction int) Option {
	return func(o *options) {
		o.m = m
		o.efConstruction = efConstruction
	}
}

// WithMetric sets the index distance metric: "cosine" (default), "l2",
// or "dot".
func WithMetric(metric string) Option {
	return func(o *options) { o.metric = metric }
}

// WithStrategy sets the voting strategy: "best", "count", or "weighted"
// (default).
func WithStrategy(s string) Option {
	return func(o *options) { o.strategy = s }
}

// WithDepth predicts at this hierarchy level instead of the full label
// path. Zero (default) keeps full paths.
func WithDepth(depth int) Option {
	return func(o *options) { o.depth = depth }
}

// WithMinConfidence rejects predictions below the threshold, yielding
// Unclassified instead of a low-confidence guess. Default: 0.
func WithMinConfidence(min float64) Option {
	return func(o *options) { o.minConfidence = min }
}

// WithEmbedWorkers sets how many goroutines embed the corpus in parallel.
// Default: 1.
func WithEmbedWorkers(n int) Option {
	return func(o *options) { o.embedWorkers = n }
}

func defaultOptions() options {
	return options{
		backend:        "hash",
		dim:            256,
		m:              16,
		efConstruction: 200,
		metric:         "cosine",
		indexSeed:      1,
		k:              10,
		efSearch:       64,
		timeout:        2 * time.Second,
		strategy:       "weighted",
		embedWorkers:   1,
	}
}
