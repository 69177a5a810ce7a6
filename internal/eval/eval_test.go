package eval

import (
	"context"
	"testing"

	"github.com/arliden/semlabel/internal/corpus"
	"github.com/arliden/semlabel/internal/encoder"
	"github.com/arliden/semlabel/internal/index"
	"github.com/arliden/semlabel/internal/labelpath"
	"github.com/arliden/semlabel/internal/model"
	"github.com/arliden/semlabel/internal/recall"
	"github.com/arliden/semlabel/internal/vote"
)

func mustPath(t *testing.T, s string) labelpath.Path {
	t.Helper()
	p, err := labelpath.Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", s, err)
	}
	return p
}

func buildEngine(t *testing.T, records [][2]string, k int) *recall.Engine {
	t.Helper()
	enc, err := encoder.NewHash(128, 1)
	if err != nil {
		t.Fatalf("NewHash error: %v", err)
	}
	examples := make([]model.Example, len(records))
	for i, r := range records {
		examples[i] = model.Example{Text: r[0], Label: mustPath(t, r[1])}
	}
	entries, err := corpus.Embed(enc, examples, corpus.EmbedOptions{})
	if err != nil {
		t.Fatalf("Embed error: %v", err)
	}
	idx, err := index.Build(entries, index.Config{M: 16, EfConstruction: 50, Metric: index.MetricCosine, Seed: 1})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	return recall.New(enc, index.NewHolder(idx), recall.Config{K: k, EfSearch: 32})
}

func TestEvaluatePerfectCorpus(t *testing.T) {
	eng := buildEngine(t, [][2]string{
		{"篮球 比赛 球员 得分", "体育##篮球"},
		{"考研 数学 复习 真题", "教育##考研"},
		{"汇率 美元 外汇 市场", "财经##外汇"},
	}, 1)

	golden := []model.Example{
		{Text: "篮球 比赛 球员 得分", Label: mustPath(t, "体育##篮球")},
		{Text: "考研 数学 复习 真题", Label: mustPath(t, "教育##考研")},
	}

	m, err := Evaluate(context.Background(), eng, golden, Options{Vote: vote.Options{Strategy: vote.Best}})
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if m.RecallAtK != 1 {
		t.Errorf("RecallAtK = %v, want 1", m.RecallAtK)
	}
	if m.Accuracy != 1 {
		t.Errorf("Accuracy = %v, want 1", m.Accuracy)
	}
	if m.Evaluated != 2 || m.Failed != 0 {
		t.Errorf("Evaluated = %d, Failed = %d", m.Evaluated, m.Failed)
	}
}

// Coarser comparisons are easier to satisfy: accuracy at depth 1 must be at
// least accuracy at full depth on the same predictions.
func TestAccuracyDepthOneAtLeastFullDepth(t *testing.T) {
	eng := buildEngine(t, [][2]string{
		{"篮球 运动 比赛 球员", "体育##篮球"},
		{"足球 运动 比赛 射门", "体育##足球"},
		{"考研 数学 复习", "教育##考研"},
	}, 2)

	// Gold says 足球 but the query text leans 篮球: full-depth accuracy
	// suffers while level-1 accuracy holds.
	golden := []model.Example{
		{Text: "篮球 运动 比赛", Label: mustPath(t, "体育##足球")},
		{Text: "考研 数学 复习", Label: mustPath(t, "教育##考研")},
	}

	full, err := Evaluate(context.Background(), eng, golden, Options{Vote: vote.Options{Strategy: vote.Best}})
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	coarse, err := Evaluate(context.Background(), eng, golden, Options{Vote: vote.Options{Strategy: vote.Best}, Depth: 1})
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}

	if coarse.Accuracy < full.Accuracy {
		t.Errorf("depth-1 accuracy %v below full-depth accuracy %v", coarse.Accuracy, full.Accuracy)
	}
	if full.Accuracy != 0.5 {
		t.Errorf("full-depth accuracy = %v, want 0.5", full.Accuracy)
	}
	if coarse.Accuracy != 1 {
		t.Errorf("depth-1 accuracy = %v, want 1", coarse.Accuracy)
	}
}

func TestRecallAtKVersusAccuracy(t *testing.T) {
	eng := buildEngine(t, [][2]string{
		{"篮球 运动 比赛 球员", "体育##篮球"},
		{"足球 运动 比赛 射门", "体育##足球"},
	}, 2)

	// The gold neighbor is within the top 2, but voting picks the closer
	// wrong label: recall@K above accuracy.
	golden := []model.Example{
		{Text: "篮球 运动 比赛", Label: mustPath(t, "体育##足球")},
	}

	m, err := Evaluate(context.Background(), eng, golden, Options{Vote: vote.Options{Strategy: vote.Best}})
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if m.RecallAtK != 1 {
		t.Errorf("RecallAtK = %v, want 1", m.RecallAtK)
	}
	if m.Accuracy != 0 {
		t.Errorf("Accuracy = %v, want 0", m.Accuracy)
	}
}

func TestEvaluateEmptyGolden(t *testing.T) {
	eng := buildEngine(t, [][2]string{{"文本", "体育"}}, 1)
	if _, err := Evaluate(context.Background(), eng, nil, Options{}); err == nil {
		t.Error("expected error for empty golden set")
	}
}
