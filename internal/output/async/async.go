package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/arliden/semlabel/internal/model"
	"github.com/arliden/semlabel/internal/output"
)

const (
	defaultBufferSize   = 1024
	defaultDrainTimeout = 5 * time.Second
)

// Option configures an Async wrapper.
type Option func(*Async)

// WithBufferSize sets the channel buffer capacity. Default: 1024.
func WithBufferSize(n int) Option {
	return func(a *Async) { a.bufSize = n }
}

// WithOnError sets the callback invoked when the inner output's Write
// fails. Default: logs a warning via slog.
func WithOnError(f func(error)) Option {
	return func(a *Async) { a.errFunc = f }
}

// WithDropOnFull makes Write return immediately (dropping the prediction)
// when the buffer is full, instead of blocking.
func WithDropOnFull() Option {
	return func(a *Async) { a.dropOnFull = true }
}

// Async decouples prediction production from consumption via a buffered
// channel drained by a background goroutine. Inner write errors go to
// errFunc rather than back to the caller.
type Async struct {
	inner      output.Output
	ch         chan model.Prediction
	done       chan struct{}
	errFunc    func(error)
	bufSize    int
	dropOnFull bool
	closeOnce  sync.Once
}

// New wraps an output in an async writer; the drain goroutine starts
// immediately.
func New(inner output.Output, opts ...Option) *Async {
	a := &Async{
		inner:   inner,
		bufSize: defaultBufferSize,
		errFunc: func(err error) { slog.Warn("async output write error", "error", err) },
	}
	for _, opt := range opts {
		opt(a)
	}
	a.ch = make(chan model.Prediction, a.bufSize)
	a.done = make(chan struct{})
	go a.drain()
	return a
}

// Write sends the prediction into the channel. Blocks when full unless
// WithDropOnFull is set.
func (a *Async) Write(_ context.Context, pred model.Prediction) error {
	if a.dropOnFull {
		select {
		case a.ch <- pred:
		default:
			slog.Warn("async output buffer full, dropping prediction", "query_id", pred.QueryID)
		}
		return nil
	}
	a.ch <- pred
	return nil
}

// Close stops accepting predictions, waits for the drain goroutine (with a
// timeout), then closes the inner output.
func (a *Async) Close() error {
	var err error
	a.closeOnce.Do(func() {
		close(a.ch)
		select {
		case <-a.done:
		case <-time.After(defaultDrainTimeout):
			slog.Warn("async output drain timed out")
		}
		err = a.inner.Close()
	})
	return err
}

func (a *Async) drain() {
	defer close(a.done)
	for pred := range a.ch {
		if err := a.inner.Write(context.Background(), pred); err != nil {
			a.errFunc(err)
		}
	}
}
