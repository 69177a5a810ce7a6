package encoder

import "fmt"

func init() {
	Register("hash", func(cfg Config) (Encoder, error) {
		return NewHash(cfg.Dim, cfg.Seed)
	})
}

// HashEncoder is a deterministic, model-free encoder built on feature
// hashing. It needs no model files and produces identical vectors for
// identical text, which makes the rest of the pipeline testable without any
// learned weights.
type HashEncoder struct {
	dim  int
	seed uint64
}

// NewHash creates a HashEncoder with the given output dimension.
func NewHash(dim int, seed int64) (*HashEncoder, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("encoder: hash dimension must be positive, got %d", dim)
	}
	return &HashEncoder{dim: dim, seed: uint64(seed)}, nil
}

// Encode produces a unit-length hashed feature vector for the text.
func (e *HashEncoder) Encode(text string) ([]float32, error) {
	vec := make([]float32, e.dim)
	for idx, w := range hashFeatures(text, e.dim, e.seed) {
		vec[idx] += w
	}
	l2normalize(vec)
	return vec, nil
}

// EncodeBatch encodes each text independently.
func (e *HashEncoder) EncodeBatch(texts []string) ([][]float32, error) {
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
func (e *HashEncoder) Dim() int { return e.dim }

// Close is a no-op; the hash encoder holds no resources.
func (e *HashEncoder) Close() error { return nil }
