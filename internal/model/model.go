// Package model holds the core data types shared across the pipeline.
package model

import "github.com/arliden/semlabel/internal/labelpath"

// Example is one labeled text record, used both as corpus material and as
// golden evaluation data.
type Example struct {
	Text  string
	Label labelpath.Path
}

// CorpusEntry is an embedded corpus record. Produced by the corpus embedder
// and owned by the index once built.
type CorpusEntry struct {
	ID     string
	Text   string
	Label  labelpath.Path
	Vector []float32
}

// Neighbor is one recalled corpus entry with its retrieval scores.
// Score is a similarity (higher is closer); Distance is the index's raw
// metric distance (lower is closer).
type Neighbor struct {
	EntryID  string
	Label    labelpath.Path
	Score    float64
	Distance float64
}

// QueryResult is the ordered recall output for one query, best match first.
type QueryResult struct {
	QueryID   string
	Neighbors []Neighbor
}

// Prediction is the final classification for one query. An empty Label means
// the query could not be classified with sufficient confidence.
type Prediction struct {
	QueryID    string
	Label      labelpath.Path
	Confidence float64
}

// Unclassified reports whether the prediction carries no label.
func (p Prediction) Unclassified() bool {
	return len(p.Label) == 0
}

// UnclassifiedLabel is the sentinel used for unclassified predictions in
// external output formats.
const UnclassifiedLabel = "UNCLASSIFIED"
