// Package index implements an in-process HNSW graph over corpus embeddings.
//
// The graph is built once per corpus snapshot and is immutable afterwards:
// concurrent searches need no locking, and a corpus refresh builds a new
// Index and swaps it into a Holder rather than mutating the live graph.
package index

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/arliden/semlabel/internal/encoder"
	"github.com/arliden/semlabel/internal/model"
)

// Metric selects the distance function over corpus vectors.
type Metric string

const (
	// MetricCosine is 1 − cosine similarity. The pipeline default: encoders
	// emit unit vectors, so ordering matches the trainer's dot-product view.
	MetricCosine Metric = "cosine"
	// MetricL2 is Euclidean distance.
	MetricL2 Metric = "l2"
	// MetricDot is negated inner product (higher dot = smaller distance).
	MetricDot Metric = "dot"
)

// ErrEmptyCorpus is returned when building over zero entries.
var ErrEmptyCorpus = errors.New("index: empty corpus")

// Config holds graph construction parameters.
type Config struct {
	// M is the maximum connections per node per layer (layer 0 allows 2M).
	M int
	// EfConstruction bounds the candidate pool scanned per insertion.
	EfConstruction int
	Metric         Metric
	// Seed drives layer assignment. The graph is deterministic given the
	// seed and the entry order.
	Seed int64
}

// DefaultConfig returns construction parameters that suit corpora up to the
// low millions of entries.
func DefaultConfig() Config {
	return Config{M: 16, EfConstruction: 200, Metric: MetricCosine, Seed: 1}
}

// node is one graph vertex: links[l] lists neighbor ordinals at layer l.
type node struct {
	links [][]int32
}

// Index is an immutable HNSW graph over corpus entries.
type Index struct {
	cfg      Config
	dim      int
	entries  []model.CorpusEntry
	nodes    []node
	entry    int32 // entry point ordinal
	topLayer int
	dist     func(a, b []float32) float64
}

// Hit is one search result.
type Hit struct {
	Entry    model.CorpusEntry
	Distance float64
}

// Build constructs the graph by inserting entries one at a time. Each new
// node searches the existing graph for its nearest neighbors (pool bounded
// by EfConstruction) and links bidirectionally, pruning overfull link lists
// back by distance. When M is at least the corpus size the graph degrades
// to a near-complete one and search becomes effectively exhaustive.
func Build(entries []model.CorpusEntry, cfg Config) (*Index, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyCorpus
	}
	if cfg.M <= 1 {
		cfg.M = DefaultConfig().M
	}
	if cfg.EfConstruction < cfg.M {
		cfg.EfConstruction = DefaultConfig().EfConstruction
	}
	if cfg.Metric == "" {
		cfg.Metric = MetricCosine
	}

	dim := len(entries[0].Vector)
	if dim == 0 {
		return nil, fmt.Errorf("index: entry %s has no vector", entries[0].ID)
	}
	for _, e := range entries {
		if len(e.Vector) != dim {
			return nil, fmt.Errorf("index: entry %s has dim %d, index dim %d: %w",
				e.ID, len(e.Vector), dim, encoder.ErrDimensionMismatch)
		}
	}

	distFn, err := distanceFunc(cfg.Metric)
	if err != nil {
		return nil, err
	}

	idx := &Index{
		cfg:     cfg,
		dim:     dim,
		entries: entries,
		nodes:   make([]node, len(entries)),
		dist:    distFn,
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	levelMult := 1 / math.Log(float64(cfg.M))

	for i := range entries {
		idx.insert(int32(i), idx.randomLevel(rng, levelMult))
	}
	return idx, nil
}

// randomLevel samples a node's top layer from the standard exponentially
// decaying distribution.
func (x *Index) randomLevel(rng *rand.Rand, mult float64) int {
	u := rng.Float64()
	for u == 0 {
		u = rng.Float64()
	}
	return int(-math.Log(u) * mult)
}

// insert links node ord into the graph up to layer level.
func (x *Index) insert(ord int32, level int) {
	x.nodes[ord].links = make([][]int32, level+1)

	if ord == 0 {
		x.entry = 0
		x.topLayer = level
		return
	}

	vec := x.entries[ord].Vector
	ep := x.entry
	epDist := x.dist(vec, x.entries[ep].Vector)

	// Greedy descent through layers above the new node's level.
	for l := x.topLayer; l > level; l-- {
		ep, epDist = x.greedyStep(vec, ep, epDist, l)
	}

	// From min(level, topLayer) down, gather candidates and link.
	for l := min(level, x.topLayer); l >= 0; l-- {
		found := x.searchLayer(vec, ep, x.cfg.EfConstruction, l, nil)
		m := x.maxLinks(l)
		neighbors := found
		if len(neighbors) > m {
			neighbors = neighbors[:m]
		}
		x.nodes[ord].links[l] = make([]int32, 0, len(neighbors))
		for _, nb := range neighbors {
			x.nodes[ord].links[l] = append(x.nodes[ord].links[l], nb.ord)
			x.linkBack(nb.ord, ord, l)
		}
		if len(found) > 0 {
			ep = found[0].ord
			epDist = found[0].dist
		}
	}
	_ = epDist

	if level > x.topLayer {
		x.topLayer = level
		x.entry = ord
	}
}

// linkBack adds `from` to node ord's links at layer l, pruning the list back
// to the layer's cap by distance when it overflows.
func (x *Index) linkBack(ord, from int32, l int) {
	links := append(x.nodes[ord].links[l], from)
	m := x.maxLinks(l)
	if len(links) > m {
		base := x.entries[ord].Vector
		// Drop the farthest link.
		worst, worstDist := -1, -1.0
		for i, nb := range links {
			d := x.dist(base, x.entries[nb].Vector)
			if d > worstDist {
				worst, worstDist = i, d
			}
		}
		links[worst] = links[len(links)-1]
		links = links[:len(links)-1]
	}
	x.nodes[ord].links[l] = links
}

// maxLinks is the link cap at layer l: 2M at the base layer, M above.
func (x *Index) maxLinks(l int) int {
	if l == 0 {
		return 2 * x.cfg.M
	}
	return x.cfg.M
}

// greedyStep moves to the closest neighbor of ep at layer l until no
// neighbor improves on the current distance.
func (x *Index) greedyStep(vec []float32, ep int32, epDist float64, l int) (int32, float64) {
	for {
		improved := false
		for _, nb := range x.linksAt(ep, l) {
			if d := x.dist(vec, x.entries[nb].Vector); d < epDist {
				ep, epDist = nb, d
				improved = true
			}
		}
		if !improved {
			return ep, epDist
		}
	}
}

// linksAt returns ep's neighbor list at layer l, or nil when the node does
// not reach that layer.
func (x *Index) linksAt(ep int32, l int) []int32 {
	if l >= len(x.nodes[ep].links) {
		return nil
	}
	return x.nodes[ep].links[l]
}

// Len returns the number of indexed entries.
func (x *Index) Len() int { return len(x.entries) }

// Dim returns the vector dimensionality the index was built with.
func (x *Index) Dim() int { return x.dim }

// Metric returns the configured distance metric.
func (x *Index) Metric() Metric { return x.cfg.Metric }

// Score converts a metric distance into a similarity (higher is closer).
func (x *Index) Score(distance float64) float64 {
	switch x.cfg.Metric {
	case MetricCosine:
		return 1 - distance
	default:
		return -distance
	}
}

// distanceFunc returns the vector distance for the metric.
func distanceFunc(m Metric) (func(a, b []float32) float64, error) {
	switch m {
	case MetricCosine:
		return cosineDistance, nil
	case MetricL2:
		return l2Distance, nil
	case MetricDot:
		return dotDistance, nil
	default:
		return nil, fmt.Errorf("index: unknown metric %q", m)
	}
}

func cosineDistance(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

func l2Distance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

func dotDistance(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return -dot
}
