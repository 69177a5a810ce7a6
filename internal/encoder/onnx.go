package encoder

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/daulet/tokenizers"
	ort "github.com/yalue/onnxruntime_go"
)

func init() {
	Register("onnx", func(cfg Config) (Encoder, error) {
		return NewONNX(cfg.ModelPath, cfg.TokenizerPath, cfg.MaxSeqLen)
	})
}

const defaultMaxSeqLen = 128

// ortEnv manages global ONNX Runtime initialization (process-wide singleton).
var ortEnv struct {
	once sync.Once
	err  error
}

// initORT initializes the ONNX Runtime environment. Safe to call multiple
// times; only the first call has any effect.
func initORT(libPath string) error {
	ortEnv.once.Do(func() {
		ort.SetSharedLibraryPath(libPath)
		ortEnv.err = ort.InitializeEnvironment()
	})
	return ortEnv.err
}

// ONNXEncoder runs a BERT-style sentence encoder exported to ONNX:
// tokenize → inference → attention-mask mean pooling → L2 normalization.
// The same instance serves both sides of the dual encoder.
type ONNXEncoder struct {
	session    *ort.DynamicAdvancedSession
	tok        *tokenizers.Tokenizer
	inputNames []string
	embedDim   int64
	maxSeqLen  int
}

// NewONNX loads the ONNX model and its HuggingFace tokenizer.json. The ONNX
// Runtime shared library is expected next to the model file.
func NewONNX(modelPath, tokenizerPath string, maxSeqLen int) (*ONNXEncoder, error) {
	if maxSeqLen <= 0 {
		maxSeqLen = defaultMaxSeqLen
	}

	libPath := filepath.Join(filepath.Dir(modelPath), "libonnxruntime.so")
	if err := initORT(libPath); err != nil {
		return nil, fmt.Errorf("onnx: failed to initialize runtime: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to read model info: %w", err)
	}
	inputNames, err := validateInputs(inputs)
	if err != nil {
		return nil, err
	}
	if len(outputs) == 0 {
		return nil, fmt.Errorf("onnx: model has no outputs")
	}
	outputName := outputs[0].Name
	dims := outputs[0].Dimensions
	if len(dims) != 3 {
		return nil, fmt.Errorf("onnx: expected 3D output tensor, got %v", dims)
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session options: %w", err)
	}
	defer opts.Destroy()
	opts.SetIntraOpNumThreads(4)
	opts.SetInterOpNumThreads(1)

	session, err := ort.NewDynamicAdvancedSession(modelPath, inputNames, []string{outputName}, opts)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session: %w", err)
	}

	tok, err := tokenizers.FromFile(tokenizerPath)
	if err != nil {
		session.Destroy()
		return nil, fmt.Errorf("onnx: failed to load tokenizer: %w", err)
	}

	return &ONNXEncoder{
		session:    session,
		tok:        tok,
		inputNames: inputNames,
		embedDim:   dims[2],
		maxSeqLen:  maxSeqLen,
	}, nil
}

// validateInputs checks that the model has the expected BERT-style inputs
// and returns them in the canonical order.
func validateInputs(inputs []ort.InputOutputInfo) ([]string, error) {
	nameSet := make(map[string]bool, len(inputs))
	for _, inp := range inputs {
		nameSet[inp.Name] = true
	}
	required := []string{"input_ids", "attention_mask", "token_type_ids"}
	for _, name := range required {
		if !nameSet[name] {
			return nil, fmt.Errorf("onnx: model missing required input %q", name)
		}
	}
	return required, nil
}

// Dim returns the embedding dimensionality.
func (e *ONNXEncoder) Dim() int { return int(e.embedDim) }

// Encode produces a single embedding vector for the given text.
func (e *ONNXEncoder) Encode(text string) ([]float32, error) {
	vecs, err := e.EncodeBatch([]string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EncodeBatch tokenizes the texts with dynamic padding to the longest
// sequence, runs one inference call, mean-pools the hidden states and
// normalizes each vector.
func (e *ONNXEncoder) EncodeBatch(texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	batchSize := int64(len(texts))
	tokenIDs := make([][]uint32, len(texts))
	seqLen := int64(1)
	for i, t := range texts {
		ids, _ := e.tok.Encode(normalizeText(t), true)
		if len(ids) > e.maxSeqLen {
			ids = ids[:e.maxSeqLen]
		}
		tokenIDs[i] = ids
		if int64(len(ids)) > seqLen {
			seqLen = int64(len(ids))
		}
	}

	inputIDs := make([]int64, batchSize*seqLen)
	attentionMask := make([]int64, batchSize*seqLen)
	tokenTypeIDs := make([]int64, batchSize*seqLen)
	for i, ids := range tokenIDs {
		off := int64(i) * seqLen
		for j, id := range ids {
			inputIDs[off+int64(j)] = int64(id)
			attentionMask[off+int64(j)] = 1
		}
	}

	hidden, err := e.infer(inputIDs, attentionMask, tokenTypeIDs, batchSize, seqLen)
	if err != nil {
		return nil, err
	}

	pooled := meanPool(hidden, attentionMask, batchSize, seqLen, e.embedDim)
	results := make([][]float32, batchSize)
	for i := int64(0); i < batchSize; i++ {
		vec := make([]float32, e.embedDim)
		copy(vec, pooled[i*e.embedDim:(i+1)*e.embedDim])
		l2normalize(vec)
		results[i] = vec
	}
	return results, nil
}

// infer runs a single inference call over flat [batchSize * seqLen] inputs
// and returns the raw [batchSize * seqLen * embedDim] hidden states.
func (e *ONNXEncoder) infer(inputIDs, attentionMask, tokenTypeIDs []int64, batchSize, seqLen int64) ([]float32, error) {
	shape := ort.NewShape(batchSize, seqLen)

	tIDs, err := ort.NewTensor(shape, inputIDs)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create input_ids tensor: %w", err)
	}
	defer tIDs.Destroy()

	tMask, err := ort.NewTensor(shape, attentionMask)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create attention_mask tensor: %w", err)
	}
	defer tMask.Destroy()

	tTypes, err := ort.NewTensor(shape, tokenTypeIDs)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create token_type_ids tensor: %w", err)
	}
	defer tTypes.Destroy()

	outShape := ort.NewShape(batchSize, seqLen, e.embedDim)
	tOut, err := ort.NewEmptyTensor[float32](outShape)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create output tensor: %w", err)
	}
	defer tOut.Destroy()

	if err := e.session.Run([]ort.Value{tIDs, tMask, tTypes}, []ort.Value{tOut}); err != nil {
		return nil, fmt.Errorf("onnx: inference failed: %w", err)
	}

	src := tOut.GetData()
	result := make([]float32, len(src))
	copy(result, src)
	return result, nil
}

// Close releases the ONNX session and tokenizer resources.
func (e *ONNXEncoder) Close() error {
	if e.tok != nil {
		e.tok.Close()
		e.tok = nil
	}
	if e.session != nil {
		err := e.session.Destroy()
		e.session = nil
		return err
	}
	return nil
}
