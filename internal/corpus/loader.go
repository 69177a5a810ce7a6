// Package corpus loads the tab-separated record files (label corpus,
// training pairs, golden evaluation pairs) and embeds corpus entries with
// the shared encoder.
package corpus

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/arliden/semlabel/internal/labelpath"
	"github.com/arliden/semlabel/internal/model"
	"github.com/arliden/semlabel/internal/trainer"
)

// LineError records a single rejected input line.
type LineError struct {
	Line int
	Err  error
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// LoadReport summarizes a file load. Malformed lines are rejected
// per-record; they never abort the load.
type LoadReport struct {
	Lines     int
	Malformed int
	Errors    []LineError
}

// reject records a bad line, keeping only the first few errors verbatim.
func (r *LoadReport) reject(line int, err error) {
	r.Malformed++
	if len(r.Errors) < 20 {
		r.Errors = append(r.Errors, LineError{Line: line, Err: err})
	}
}

// LoadExamples reads line-delimited `text \t level1##level2##...` records.
// Used for both the label corpus and golden evaluation files.
func LoadExamples(path string) ([]model.Example, *LoadReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("corpus: %w", err)
	}
	defer f.Close()
	return ReadExamples(f)
}

// ReadExamples parses example records from r. See LoadExamples.
func ReadExamples(r io.Reader) ([]model.Example, *LoadReport, error) {
	var examples []model.Example
	report := &LoadReport{}

	err := scanLines(r, func(lineNo int, line string) {
		report.Lines++
		text, labelField, ok := strings.Cut(line, "\t")
		if !ok || strings.Contains(labelField, "\t") {
			report.reject(lineNo, fmt.Errorf("expected exactly 2 tab-separated fields"))
			return
		}
		if err := labelpath.ValidateText(text); err != nil {
			report.reject(lineNo, err)
			return
		}
		label, err := labelpath.Parse(labelField)
		if err != nil {
			report.reject(lineNo, err)
			return
		}
		examples = append(examples, model.Example{Text: text, Label: label})
	})
	if err != nil {
		return nil, nil, err
	}
	return examples, report, nil
}

// LoadPairs reads line-delimited `query \t positive` training records.
func LoadPairs(path string) ([]trainer.Pair, *LoadReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("corpus: %w", err)
	}
	defer f.Close()
	return ReadPairs(f)
}

// ReadPairs parses training pairs from r. See LoadPairs.
func ReadPairs(r io.Reader) ([]trainer.Pair, *LoadReport, error) {
	var pairs []trainer.Pair
	report := &LoadReport{}

	err := scanLines(r, func(lineNo int, line string) {
		report.Lines++
		query, positive, ok := strings.Cut(line, "\t")
		if !ok || strings.Contains(positive, "\t") {
			report.reject(lineNo, fmt.Errorf("expected exactly 2 tab-separated fields"))
			return
		}
		if query == "" || positive == "" {
			report.reject(lineNo, fmt.Errorf("empty field"))
			return
		}
		pairs = append(pairs, trainer.Pair{Query: query, Positive: positive})
	})
	if err != nil {
		return nil, nil, err
	}
	return pairs, report, nil
}

// scanLines feeds non-empty lines to fn with 1-based line numbers.
func scanLines(r io.Reader, fn func(lineNo int, line string)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fn(lineNo, line)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("corpus: read: %w", err)
	}
	return nil
}
