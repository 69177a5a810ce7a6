package encoder

import (
	"encoding/gob"
	"fmt"
	"math"
	"math/rand"
	"os"
)

func init() {
	Register("linear", func(cfg Config) (Encoder, error) {
		if cfg.ModelPath != "" {
			return LoadLinear(cfg.ModelPath)
		}
		return NewLinear(4*cfg.Dim, cfg.Dim, cfg.Seed)
	})
}

// LinearEncoder is a trainable linear projection over hashed bag-of-features
// input: v = W·x, output L2-normalized. It is the simplest encoder the
// contrastive trainer can optimize end to end; heavier architectures sit
// behind the same Trainable interface.
type LinearEncoder struct {
	in   int
	out  int
	seed uint64
	w    []float32 // row-major [out][in]
}

// NewLinear creates a LinearEncoder with small random weights drawn from the
// given seed, so training runs are reproducible.
func NewLinear(featureDim, dim int, seed int64) (*LinearEncoder, error) {
	if featureDim <= 0 || dim <= 0 {
		return nil, fmt.Errorf("encoder: linear dims must be positive, got %d x %d", featureDim, dim)
	}
	e := &LinearEncoder{
		in:   featureDim,
		out:  dim,
		seed: uint64(seed),
		w:    make([]float32, featureDim*dim),
	}
	rng := rand.New(rand.NewSource(seed))
	scale := float32(1 / math.Sqrt(float64(featureDim)))
	for i := range e.w {
		e.w[i] = (rng.Float32()*2 - 1) * scale
	}
	return e, nil
}

// Encode produces a unit-length projection of the text's hashed features.
func (e *LinearEncoder) Encode(text string) ([]float32, error) {
	v, _, _ := e.project(text)
	l2normalize(v)
	return v, nil
}

// EncodeBatch encodes each text independently.
func (e *LinearEncoder) EncodeBatch(texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Encode(t)
		if err != nil {
			return nil, err
		}
		vecs[i] = v
	}
	return vecs, nil
}

// Dim returns the output dimensionality.
func (e *LinearEncoder) Dim() int { return e.out }

// Close is a no-op.
func (e *LinearEncoder) Close() error { return nil }

// project computes the raw (pre-normalization) projection of one text.
func (e *LinearEncoder) project(text string) (raw []float32, feats map[int]float32, norm float64) {
	feats = hashFeatures(text, e.in, e.seed)
	raw = make([]float32, e.out)
	for idx, x := range feats {
		col := idx
		for o := 0; o < e.out; o++ {
			raw[o] += e.w[o*e.in+col] * x
		}
	}
	var sum float64
	for _, x := range raw {
		sum += float64(x) * float64(x)
	}
	norm = math.Sqrt(sum)
	return raw, feats, norm
}

// Forward encodes a batch and returns a backward function that applies
// gradients through the normalization and projection via one SGD step.
func (e *LinearEncoder) Forward(texts []string) ([][]float32, Backward, error) {
	n := len(texts)
	units := make([][]float32, n)
	featsList := make([]map[int]float32, n)
	norms := make([]float64, n)

	for i, t := range texts {
		raw, feats, norm := e.project(t)
		unit := make([]float32, e.out)
		copy(unit, raw)
		l2normalize(unit)
		units[i] = unit
		featsList[i] = feats
		if norm == 0 {
			norm = 1 // zero projection: treat normalization as identity
		}
		norms[i] = norm
	}

	backward := func(grads [][]float32, learnRate float64) {
		for i, gu := range grads {
			u := units[i]
			// Gradient through u = v/|v|: gv = (gu - (gu·u)u) / |v|.
			var dot float64
			for o := 0; o < e.out; o++ {
				dot += float64(gu[o]) * float64(u[o])
			}
			inv := 1 / norms[i]
			for o := 0; o < e.out; o++ {
				gv := (float64(gu[o]) - dot*float64(u[o])) * inv
				step := learnRate * gv
				if step == 0 {
					continue
				}
				row := o * e.in
				for idx, x := range featsList[i] {
					e.w[row+idx] -= float32(step * float64(x))
				}
			}
		}
	}
	return units, backward, nil
}

// linearState is the serialized form of a LinearEncoder.
type linearState struct {
	In   int
	Out  int
	Seed uint64
	W    []float32
}

// Save writes the encoder weights to path.
func (e *LinearEncoder) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("encoder: save: %w", err)
	}
	defer f.Close()
	st := linearState{In: e.in, Out: e.out, Seed: e.seed, W: e.w}
	if err := gob.NewEncoder(f).Encode(st); err != nil {
		return fmt.Errorf("encoder: save: %w", err)
	}
	return nil
}

// LoadLinear reads encoder weights previously written by Save.
func LoadLinear(path string) (*LinearEncoder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("encoder: load: %w", err)
	}
	defer f.Close()
	var st linearState
	if err := gob.NewDecoder(f).Decode(&st); err != nil {
		return nil, fmt.Errorf("encoder: load: %w", err)
	}
	if st.In <= 0 || st.Out <= 0 || len(st.W) != st.In*st.Out {
		return nil, fmt.Errorf("encoder: load: corrupt weights in %s", path)
	}
	return &LinearEncoder{in: st.In, out: st.Out, seed: st.Seed, w: st.W}, nil
}
