package encoder

import "fmt"

// Config carries backend-specific settings. Backends read the fields they
// need and ignore the rest.
type Config struct {
	Backend       string
	Dim           int    // hash/linear output dimension
	Seed          int64  // hash/linear weight initialization seed
	ModelPath     string // onnx model file
	TokenizerPath string // onnx tokenizer.json
	MaxSeqLen     int    // onnx token truncation length
}

// Constructor builds an Encoder from a Config.
type Constructor func(cfg Config) (Encoder, error)

var registry = map[string]Constructor{}

// Register adds an encoder constructor under the given backend name.
func Register(name string, ctor Constructor) {
	registry[name] = ctor
}

// New builds the encoder backend named in cfg.Backend.
func New(cfg Config) (Encoder, error) {
	ctor, ok := registry[cfg.Backend]
	if !ok {
		return nil, fmt.Errorf("encoder: unknown backend: %s", cfg.Backend)
	}
	return ctor(cfg)
}

// Backends returns the names of all registered encoder backends.
func Backends() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
