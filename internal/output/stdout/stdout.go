package stdout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/arliden/semlabel/internal/model"
	"github.com/arliden/semlabel/internal/output"
)

// Format selects the line encoding.
type Format int

const (
	// JSON writes one NDJSON record per prediction.
	JSON Format = iota
	// TSV writes `label \t confidence` lines.
	TSV
)

// Output writes predictions to stdout.
type Output struct {
	w      io.Writer
	enc    *json.Encoder
	format Format
}

// New creates a stdout Output. pretty indents the JSON form and is ignored
// for TSV.
func New(format Format, pretty bool) *Output {
	return NewWriter(os.Stdout, format, pretty)
}

// NewWriter targets an arbitrary writer; used by tests.
func NewWriter(w io.Writer, format Format, pretty bool) *Output {
	o := &Output{w: w, format: format}
	if format == JSON {
		o.enc = json.NewEncoder(w)
		if pretty {
			o.enc.SetIndent("", "  ")
		}
	}
	return o
}

func (o *Output) Write(_ context.Context, pred model.Prediction) error {
	rec := output.ToRecord(pred)
	var err error
	if o.format == TSV {
		_, err = fmt.Fprintln(o.w, rec.TSV())
	} else {
		err = o.enc.Encode(rec)
	}
	if err != nil {
		return fmt.Errorf("stdout output: %w", err)
	}
	return nil
}

func (o *Output) Close() error {
	return nil
}
