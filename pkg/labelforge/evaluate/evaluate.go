// Package evaluate will score a trained model against a dataset.
package evaluate

import (
	"fmt"

	"github.com/cognicore/labelforge/pkg/labelforge/internalerr"
)

// Options configures an evaluation run.
type Options struct {
	// ModelPath is the trained model to score.
	ModelPath string
	// DatasetPath is the artifact to evaluate against.
	DatasetPath string
}

// Run evaluates the model.
func Run(opts Options) error {
	return fmt.Errorf("evaluate: %w", internalerr.ErrNotImplemented)
}
