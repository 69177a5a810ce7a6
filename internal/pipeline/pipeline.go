// Package pipeline wires the query path end to end: read query lines,
// recall neighbors, vote, emit predictions.
package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/arliden/semlabel/internal/output"
	"github.com/arliden/semlabel/internal/recall"
	"github.com/arliden/semlabel/internal/vote"
)

// Stats counts a batch run's outcomes. Skipped lines are reported alongside
// results, never silently dropped.
type Stats struct {
	Processed    int
	Skipped      int
	Unclassified int
}

// Pipeline connects the recall engine, voter, and an output.
type Pipeline struct {
	engine *recall.Engine
	opts   vote.Options
	out    output.Output
}

// New creates a Pipeline from the given components.
func New(engine *recall.Engine, opts vote.Options, out output.Output) *Pipeline {
	return &Pipeline{engine: engine, opts: opts, out: out}
}

// Run classifies one query per input line and writes a prediction for each.
// Blank lines are counted as skipped. Stops early only on context
// cancellation or output failure.
func (p *Pipeline) Run(ctx context.Context, r io.Reader) (Stats, error) {
	var stats Stats

	err := eachLine(r, func(lineNo int, line string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		qr, err := p.engine.Recall(ctx, line)
		if err != nil {
			stats.Skipped++
			slog.Warn("query failed", "line", lineNo, "error", err)
			return nil
		}
		pred := vote.Classify(qr, p.opts)
		stats.Processed++
		if pred.Unclassified() {
			stats.Unclassified++
		}
		if err := p.out.Write(ctx, pred); err != nil {
			return fmt.Errorf("pipeline output: %w", err)
		}
		return nil
	}, &stats)
	return stats, err
}

// RunRecall dumps, for each query line, its ranked neighbors as
// `rank \t label \t score` lines to w, with queries separated by a line
// naming the query. Used for offline inspection of index quality.
func (p *Pipeline) RunRecall(ctx context.Context, r io.Reader, w io.Writer) (Stats, error) {
	var stats Stats

	err := eachLine(r, func(lineNo int, line string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		qr, err := p.engine.Recall(ctx, line)
		if err != nil {
			stats.Skipped++
			slog.Warn("query failed", "line", lineNo, "error", err)
			return nil
		}
		stats.Processed++
		if _, err := fmt.Fprintf(w, "# %s\n", line); err != nil {
			return fmt.Errorf("pipeline recall dump: %w", err)
		}
		for rank, nb := range qr.Neighbors {
			if _, err := fmt.Fprintln(w, output.RecallTSV(rank+1, nb)); err != nil {
				return fmt.Errorf("pipeline recall dump: %w", err)
			}
		}
		return nil
	}, &stats)
	return stats, err
}

// Close shuts down the output.
func (p *Pipeline) Close() error {
	return p.out.Close()
}

// eachLine feeds trimmed non-blank lines to fn, counting blank ones as
// skipped.
func eachLine(r io.Reader, fn func(lineNo int, line string) error, stats *Stats) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			stats.Skipped++
			continue
		}
		if err := fn(lineNo, line); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("pipeline read: %w", err)
	}
	return nil
}
