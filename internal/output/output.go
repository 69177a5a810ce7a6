package output

import (
	"context"

	"github.com/arliden/semlabel/internal/model"
)

// Output defines the interface for prediction destinations.
type Output interface {
	Write(ctx context.Context, pred model.Prediction) error
	Close() error
}
