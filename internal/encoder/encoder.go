// Package encoder turns text into fixed-length dense vectors.
//
// The classification core only depends on the Encoder interface; backends
// register themselves by name so deployments can swap the ONNX model for the
// deterministic hash encoder (tests, bootstrap) without touching callers.
// All backends L2-normalize their output, so the dot product of two encoded
// vectors is their cosine similarity.
package encoder

import (
	"errors"
	"math"
)

// Encoder produces vector embeddings from text. Implementations must be
// deterministic for fixed weights and safe for concurrent use.
type Encoder interface {
	Encode(text string) ([]float32, error)
	EncodeBatch(texts []string) ([][]float32, error)
	Dim() int
	Close() error
}

// Backward applies gradients with respect to a Forward call's output vectors,
// updating encoder weights by one SGD step at the given learning rate.
type Backward func(grads [][]float32, learnRate float64)

// Trainable is an Encoder whose weights the contrastive trainer can update.
// Query and corpus sides of the dual encoder share one Trainable instance.
type Trainable interface {
	Encoder
	// Forward encodes a batch and returns the vectors together with a
	// backward function bound to this batch's activations.
	Forward(texts []string) ([][]float32, Backward, error)
}

// ErrDimensionMismatch is returned when vectors of different dimensionality
// meet. It is a configuration error and is never recovered by padding or
// truncation.
var ErrDimensionMismatch = errors.New("encoder: embedding dimension mismatch")

// l2normalize scales v to unit length in place. Zero vectors are left as-is.
func l2normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
}
