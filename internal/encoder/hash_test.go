package encoder

import (
	"math"
	"testing"
)

func TestHashDeterministic(t *testing.T) {
	enc, err := NewHash(64, 1)
	if err != nil {
		t.Fatalf("NewHash error: %v", err)
	}
	a, _ := enc.Encode("国际新闻 汇率变动")
	b, _ := enc.Encode("国际新闻 汇率变动")
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("vector differs at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestHashUnitLength(t *testing.T) {
	enc, _ := NewHash(64, 1)
	v, err := enc.Encode("some query text")
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if math.Abs(sum-1) > 1e-5 {
		t.Errorf("squared norm = %v, want 1", sum)
	}
}

func TestHashDistinctTexts(t *testing.T) {
	enc, _ := NewHash(128, 1)
	a, _ := enc.Encode("体育 篮球比赛")
	b, _ := enc.Encode("教育 考研数学")
	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different texts produced identical vectors")
	}
}

func TestHashSimilarTextsCloser(t *testing.T) {
	enc, _ := NewHash(256, 1)
	q, _ := enc.Encode("篮球比赛 体育新闻")
	near, _ := enc.Encode("篮球比赛 今日体育新闻")
	far, _ := enc.Encode("汇率 外汇市场分析")

	if cos(q, near) <= cos(q, far) {
		t.Errorf("cos(q, near) = %v not greater than cos(q, far) = %v",
			cos(q, near), cos(q, far))
	}
}

func TestHashEncodeBatch(t *testing.T) {
	enc, _ := NewHash(64, 1)
	vecs, err := enc.EncodeBatch([]string{"a b", "c d", "e f"})
	if err != nil {
		t.Fatalf("EncodeBatch error: %v", err)
	}
	if len(vecs) != 3 {
		t.Fatalf("got %d vectors, want 3", len(vecs))
	}
	single, _ := enc.Encode("c d")
	for i := range single {
		if vecs[1][i] != single[i] {
			t.Fatal("batch encoding differs from single encoding")
		}
	}
}

func TestHashBadDim(t *testing.T) {
	if _, err := NewHash(0, 1); err == nil {
		t.Error("expected error for zero dimension")
	}
}

func TestRegistryBackends(t *testing.T) {
	enc, err := New(Config{Backend: "hash", Dim: 32, Seed: 7})
	if err != nil {
		t.Fatalf("New(hash) error: %v", err)
	}
	if enc.Dim() != 32 {
		t.Errorf("Dim() = %d, want 32", enc.Dim())
	}
	if _, err := New(Config{Backend: "nope"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}

// cos is a test helper; production code relies on vectors being unit length.
func cos(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
