package multi

import (
	"context"
	"errors"
	"testing"

	"github.com/arliden/semlabel/internal/model"
)

// memOutput records writes; optionally fails.
type memOutput struct {
	preds  []model.Prediction
	fail   bool
	closed bool
}

func (m *memOutput) Write(_ context.Context, p model.Prediction) error {
	if m.fail {
		return errors.New("write failed")
	}
	m.preds = append(m.preds, p)
	return nil
}

func (m *memOutput) Close() error {
	m.closed = true
	return nil
}

func TestFanOut(t *testing.T) {
	a, b := &memOutput{}, &memOutput{}
	m := New(a, b)

	if err := m.Write(context.Background(), model.Prediction{QueryID: "q1"}); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if len(a.preds) != 1 || len(b.preds) != 1 {
		t.Errorf("fan-out incomplete: %d, %d", len(a.preds), len(b.preds))
	}
}

func TestFailingOutputDoesNotBlockOthers(t *testing.T) {
	bad, good := &memOutput{fail: true}, &memOutput{}
	m := New(bad, good)

	err := m.Write(context.Background(), model.Prediction{QueryID: "q1"})
	if err == nil {
		t.Error("expected joined error from failing output")
	}
	if len(good.preds) != 1 {
		t.Errorf("healthy output missed the prediction")
	}
}

func TestCloseAll(t *testing.T) {
	a, b := &memOutput{}, &memOutput{}
	m := New(a, b)
	if err := m.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if !a.closed || !b.closed {
		t.Error("not all outputs closed")
	}
}
