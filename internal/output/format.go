package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arliden/semlabel/internal/model"
)

// Record is the external representation of a prediction. Unclassified
// predictions carry the sentinel label rather than an empty string.
type Record struct {
	QueryID    string  `json:"query_id,omitempty"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// ToRecord converts a prediction into its external record form.
func ToRecord(p model.Prediction) Record {
	r := Record{
		QueryID:    p.QueryID,
		Confidence: p.Confidence,
		Label:      model.UnclassifiedLabel,
	}
	if !p.Unclassified() {
		r.Label = p.Label.String()
	}
	return r
}

// TSV renders the record as a tab-separated line without a trailing newline.
func (r Record) TSV() string {
	return r.Label + "\t" + strconv.FormatFloat(r.Confidence, 'f', 6, 64)
}

// RecallTSV renders one recalled neighbor as a `rank \t label \t score` line
// for offline inspection dumps.
func RecallTSV(rank int, nb model.Neighbor) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d\t%s\t%.6f", rank, nb.Label.String(), nb.Score)
	return b.String()
}
