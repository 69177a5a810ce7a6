package async

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/arliden/semlabel/internal/model"
)

// memOutput is a thread-safe recording output.
type memOutput struct {
	mu    sync.Mutex
	preds []model.Prediction
	fail  bool
}

func (m *memOutput) Write(_ context.Context, p model.Prediction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("write failed")
	}
	m.preds = append(m.preds, p)
	return nil
}

func (m *memOutput) Close() error { return nil }

func (m *memOutput) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.preds)
}

func TestDrainsAllOnClose(t *testing.T) {
	inner := &memOutput{}
	a := New(inner, WithBufferSize(8))

	for i := 0; i < 100; i++ {
		if err := a.Write(context.Background(), model.Prediction{QueryID: "q"}); err != nil {
			t.Fatalf("Write error: %v", err)
		}
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if inner.count() != 100 {
		t.Errorf("drained %d predictions, want 100", inner.count())
	}
}

func TestInnerErrorsGoToCallback(t *testing.T) {
	inner := &memOutput{fail: true}
	var mu sync.Mutex
	var errs int
	a := New(inner, WithOnError(func(error) {
		mu.Lock()
		errs++
		mu.Unlock()
	}))

	for i := 0; i < 5; i++ {
		a.Write(context.Background(), model.Prediction{})
	}
	a.Close()

	mu.Lock()
	defer mu.Unlock()
	if errs != 5 {
		t.Errorf("error callback fired %d times, want 5", errs)
	}
}

func TestCloseIdempotent(t *testing.T) {
	a := New(&memOutput{})
	if err := a.Close(); err != nil {
		t.Fatalf("first Close error: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("second Close error: %v", err)
	}
}
