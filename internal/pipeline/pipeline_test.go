package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/arliden/semlabel/internal/corpus"
	"github.com/arliden/semlabel/internal/encoder"
	"github.com/arliden/semlabel/internal/index"
	"github.com/arliden/semlabel/internal/labelpath"
	"github.com/arliden/semlabel/internal/model"
	"github.com/arliden/semlabel/internal/recall"
	"github.com/arliden/semlabel/internal/vote"
)

// memOutput records predictions in order.
type memOutput struct {
	preds  []model.Prediction
	closed bool
}

func (m *memOutput) Write(_ context.Context, p model.Prediction) error {
	m.preds = append(m.preds, p)
	return nil
}

func (m *memOutput) Close() error {
	m.closed = true
	return nil
}

func buildPipeline(t *testing.T, out *memOutput) *Pipeline {
	t.Helper()

	enc, err := encoder.New(encoder.Config{Backend: "hash", Dim: 128, Seed: 1})
	if err != nil {
		t.Fatalf("encoder.New: %v", err)
	}

	examples := []model.Example{
		{Text: "湖人 击败 勇士 夺得 总冠军", Label: mustPath(t, "体育##篮球")},
		{Text: "世界杯 决赛 梅西 进球", Label: mustPath(t, "体育##足球")},
		{Text: "考研 报名 人数 创 新高", Label: mustPath(t, "教育##考研")},
	}
	entries, err := corpus.Embed(enc, examples, corpus.EmbedOptions{})
	if err != nil {
		t.Fatalf("corpus.Embed: %v", err)
	}
	idx, err := index.Build(entries, index.DefaultConfig())
	if err != nil {
		t.Fatalf("index.Build: %v", err)
	}
	holder := index.NewHolder(idx)

	eng := recall.New(enc, holder, recall.Config{K: 3})
	return New(eng, vote.Options{Strategy: vote.Weighted}, out)
}

func mustPath(t *testing.T, s string) []string {
	t.Helper()
	p, err := labelpath.Parse(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return p
}

func TestRunClassifiesEachLine(t *testing.T) {
	out := &memOutput{}
	p := buildPipeline(t, out)

	in := strings.NewReader("湖人 勇士 总冠军\n\n考研 报名 人数\n")
	stats, err := p.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if stats.Processed != 2 {
		t.Errorf("Processed = %d, want 2", stats.Processed)
	}
	if stats.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1 (the blank line)", stats.Skipped)
	}
	if len(out.preds) != 2 {
		t.Fatalf("wrote %d predictions, want 2", len(out.preds))
	}
	if got := strings.Join(out.preds[0].Label, "##"); got != "体育##篮球" {
		t.Errorf("first prediction label = %q, want 体育##篮球", got)
	}
	if got := strings.Join(out.preds[1].Label, "##"); got != "教育##考研" {
		t.Errorf("second prediction label = %q, want 教育##考研", got)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	out := &memOutput{}
	p := buildPipeline(t, out)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx, strings.NewReader("湖人 勇士\n"))
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestRunRecallDumpsRankedNeighbors(t *testing.T) {
	out := &memOutput{}
	p := buildPipeline(t, out)

	var sb strings.Builder
	stats, err := p.RunRecall(context.Background(), strings.NewReader("湖人 勇士 总冠军\n"), &sb)
	if err != nil {
		t.Fatalf("RunRecall error: %v", err)
	}
	if stats.Processed != 1 {
		t.Errorf("Processed = %d, want 1", stats.Processed)
	}

	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d dump lines, want 4 (header + 3 neighbors):\n%s", len(lines), sb.String())
	}
	if !strings.HasPrefix(lines[0], "# ") {
		t.Errorf("first line should name the query, got %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "1\t体育##篮球\t") {
		t.Errorf("top neighbor line = %q", lines[1])
	}
}

func TestCloseClosesOutput(t *testing.T) {
	out := &memOutput{}
	p := buildPipeline(t, out)
	if err := p.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if !out.closed {
		t.Error("output not closed")
	}
}
