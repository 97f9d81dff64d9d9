// Package train will fit a model on a generated dataset.
package train

import (
	"fmt"

	"github.com/cognicore/labelforge/pkg/labelforge/internalerr"
)

// Defaults for the training parameters.
const (
	DefaultBaseModel  = "en_core_web_sm"
	DefaultIterations = 100
	DefaultDropout    = 0.3
)

// Options configures a training run.
type Options struct {
	// TrainPath and DevPath are the split dataset artifacts.
	TrainPath string
	DevPath   string
	// OutputDir receives the trained model.
	OutputDir string
	// BaseModel names the pipeline to start from.
	BaseModel string
	// Iterations is the number of training passes.
	Iterations int
	// Dropout is the dropout rate applied during training.
	Dropout float64
}

// Run trains a model.
func Run(opts Options) error {
	return fmt.Errorf("train: %w", internalerr.ErrNotImplemented)
}
