package encoder

import (
	"math"
	"path/filepath"
	"testing"
)

func TestLinearDeterministicInit(t *testing.T) {
	a, err := NewLinear(128, 16, 42)
	if err != nil {
		t.Fatalf("NewLinear error: %v", err)
	}
	b, _ := NewLinear(128, 16, 42)
	va, _ := a.Encode("重复查询")
	vb, _ := b.Encode("重复查询")
	for i := range va {
		if va[i] != vb[i] {
			t.Fatal("same seed produced different encodings")
		}
	}
}

func TestLinearUnitLength(t *testing.T) {
	enc, _ := NewLinear(128, 16, 42)
	v, _ := enc.Encode("unit length check")
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if math.Abs(sum-1) > 1e-5 {
		t.Errorf("squared norm = %v, want 1", sum)
	}
}

func TestLinearForwardMatchesEncode(t *testing.T) {
	enc, _ := NewLinear(128, 16, 42)
	texts := []string{"查询一", "查询二"}
	fwd, _, err := enc.Forward(texts)
	if err != nil {
		t.Fatalf("Forward error: %v", err)
	}
	for i, text := range texts {
		single, _ := enc.Encode(text)
		for d := range single {
			if math.Abs(float64(fwd[i][d]-single[d])) > 1e-6 {
				t.Fatalf("Forward and Encode disagree for %q at dim %d", text, d)
			}
		}
	}
}

// A gradient pushing the output vector away from a target direction should,
// after the SGD step, move the encoding toward that target.
func TestLinearBackwardMovesTowardTarget(t *testing.T) {
	enc, _ := NewLinear(128, 16, 42)
	text := "梯度方向检查"

	target, _ := NewHash(16, 9)
	tv, _ := target.Encode(text)

	before, _ := enc.Encode(text)
	simBefore := cos(before, tv)

	for step := 0; step < 20; step++ {
		out, backward, err := enc.Forward([]string{text})
		if err != nil {
			t.Fatalf("Forward error: %v", err)
		}
		// d/du of (-u·t) is -t: descend toward the target direction.
		grad := make([]float32, len(out[0]))
		for d := range grad {
			grad[d] = -tv[d]
		}
		backward([][]float32{grad}, 0.5)
	}

	after, _ := enc.Encode(text)
	simAfter := cos(after, tv)
	if simAfter <= simBefore {
		t.Errorf("similarity to target did not improve: before %v, after %v", simBefore, simAfter)
	}
}

func TestLinearSaveLoad(t *testing.T) {
	enc, _ := NewLinear(64, 8, 3)
	path := filepath.Join(t.TempDir(), "weights.gob")
	if err := enc.Save(path); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	loaded, err := LoadLinear(path)
	if err != nil {
		t.Fatalf("LoadLinear error: %v", err)
	}
	a, _ := enc.Encode("对照文本")
	b, _ := loaded.Encode("对照文本")
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("loaded encoder produced different encoding")
		}
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  a   b  ", "a b"},
		{"ＡＢＣ", "ABC"}, // full-width folds to half-width under NFKC
		{"体育\t新闻", "体育 新闻"},
	}
	for _, tt := range tests {
		if got := normalizeText(tt.in); got != tt.want {
			t.Errorf("normalizeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
