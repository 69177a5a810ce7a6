package multi

import (
	"context"
	"errors"

	"github.com/arliden/semlabel/internal/model"
	"github.com/arliden/semlabel/internal/output"
)

// Multi fans each prediction out to several outputs. A failing output does
// not prevent delivery to the rest; errors are joined and returned.
type Multi struct {
	outputs []output.Output
}

// New creates a Multi over the given outputs.
func New(outputs ...output.Output) *Multi {
	return &Multi{outputs: outputs}
}

func (m *Multi) Write(ctx context.Context, pred model.Prediction) error {
	var errs []error
	for _, o := range m.outputs {
		if err := o.Write(ctx, pred); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Multi) Close() error {
	var errs []error
	for _, o := range m.outputs {
		if err := o.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
