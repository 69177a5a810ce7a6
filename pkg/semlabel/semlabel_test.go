package semlabel

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var sportsCorpus = []Example{
	{Text: "世界杯 小组赛 出线 形势", Label: "体育"},
	{Text: "湖人 击败 勇士 夺得 总冠军", Label: "体育##篮球"},
	{Text: "高考 志愿 填报 指南", Label: "教育"},
}

func TestClassifyNearestNeighborWins(t *testing.T) {
	c, err := New(
		WithExamples(sportsCorpus),
		WithDim(128),
		WithK(1),
		WithStrategy("best"),
	)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer c.Close()

	pred, err := c.Classify(context.Background(), "湖人 勇士 总冠军 比赛")
	if err != nil {
		t.Fatalf("Classify error: %v", err)
	}
	if pred.Label != "体育##篮球" {
		t.Errorf("label = %q, want 体育##篮球", pred.Label)
	}
	if pred.Confidence <= 0 {
		t.Errorf("confidence = %g, want positive", pred.Confidence)
	}
}

func TestClassifyBelowThresholdUnclassified(t *testing.T) {
	c, err := New(
		WithExamples(sportsCorpus),
		WithDim(128),
		WithK(1),
		WithStrategy("best"),
		WithMinConfidence(1.01), // impossible to reach
	)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer c.Close()

	pred, err := c.Classify(context.Background(), "湖人 勇士 总冠军")
	if err != nil {
		t.Fatalf("Classify error: %v", err)
	}
	if pred.Label != Unclassified {
		t.Errorf("label = %q, want %q", pred.Label, Unclassified)
	}
	if pred.Confidence <= 0 {
		t.Errorf("confidence should still report the rejected score, got %g", pred.Confidence)
	}
}

func TestClassifyDepthTruncates(t *testing.T) {
	c, err := New(
		WithExamples(sportsCorpus),
		WithDim(128),
		WithK(1),
		WithStrategy("best"),
		WithDepth(1),
	)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer c.Close()

	pred, err := c.Classify(context.Background(), "湖人 勇士 总冠军 比赛")
	if err != nil {
		t.Fatalf("Classify error: %v", err)
	}
	if pred.Label != "体育" {
		t.Errorf("label = %q, want 体育 (depth 1)", pred.Label)
	}
}

func TestClassifyBatch(t *testing.T) {
	c, err := New(WithExamples(sportsCorpus), WithDim(128), WithK(1), WithStrategy("best"))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer c.Close()

	preds, err := c.ClassifyBatch(context.Background(), []string{
		"湖人 勇士 总冠军",
		"高考 志愿 填报",
	})
	if err != nil {
		t.Fatalf("ClassifyBatch error: %v", err)
	}
	if len(preds) != 2 {
		t.Fatalf("got %d predictions, want 2", len(preds))
	}
	if preds[0].Label != "体育##篮球" {
		t.Errorf("preds[0] = %q, want 体育##篮球", preds[0].Label)
	}
	if preds[1].Label != "教育" {
		t.Errorf("preds[1] = %q, want 教育", preds[1].Label)
	}
}

func TestRecallReturnsRankedNeighbors(t *testing.T) {
	c, err := New(WithExamples(sportsCorpus), WithDim(128), WithK(3))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer c.Close()

	nbs, err := c.Recall(context.Background(), "湖人 勇士 总冠军")
	if err != nil {
		t.Fatalf("Recall error: %v", err)
	}
	if len(nbs) != 3 {
		t.Fatalf("got %d neighbors, want 3", len(nbs))
	}
	if nbs[0].Label != "体育##篮球" {
		t.Errorf("top neighbor = %q, want 体育##篮球", nbs[0].Label)
	}
	for i := 1; i < len(nbs); i++ {
		if nbs[i].Score > nbs[i-1].Score {
			t.Errorf("neighbors out of order at %d: %g > %g", i, nbs[i].Score, nbs[i-1].Score)
		}
	}
}

func TestRebuildSwapsCorpus(t *testing.T) {
	c, err := New(WithExamples(sportsCorpus), WithDim(128), WithK(1), WithStrategy("best"))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer c.Close()

	err = c.Rebuild([]Example{
		{Text: "新款 手机 发布 评测", Label: "科技##数码"},
	})
	if err != nil {
		t.Fatalf("Rebuild error: %v", err)
	}

	pred, err := c.Classify(context.Background(), "手机 评测")
	if err != nil {
		t.Fatalf("Classify error: %v", err)
	}
	if pred.Label != "科技##数码" {
		t.Errorf("label after rebuild = %q, want 科技##数码", pred.Label)
	}
}

func TestCorpusFileLoading(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.tsv")
	lines := []string{
		"湖人 击败 勇士\t体育##篮球",
		"考研 报名 开始\t教育##考研",
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := New(WithCorpusFile(path), WithDim(128), WithK(1), WithStrategy("best"))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer c.Close()

	pred, err := c.Classify(context.Background(), "考研 报名")
	if err != nil {
		t.Fatalf("Classify error: %v", err)
	}
	if pred.Label != "教育##考研" {
		t.Errorf("label = %q, want 教育##考研", pred.Label)
	}
}

func TestNewErrors(t *testing.T) {
	if _, err := New(); err == nil {
		t.Error("expected error without a corpus")
	}
	if _, err := New(WithExamples(sportsCorpus), WithBackend("bert")); err == nil {
		t.Error("expected error for unknown backend")
	}
	if _, err := New(WithExamples(sportsCorpus), WithStrategy("plurality")); err == nil {
		t.Error("expected error for unknown strategy")
	}
	if _, err := New(WithExamples([]Example{{Text: "x", Label: "a##"}})); err == nil {
		t.Error("expected error for malformed label path")
	}
}
