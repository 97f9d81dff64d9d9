// Package split will partition a dataset artifact into train and dev sets.
package split

import (
	"fmt"

	"github.com/cognicore/labelforge/pkg/labelforge/internalerr"
)

// Defaults for the split parameters.
const (
	DefaultDevSize = 0.2
	DefaultSeed    = 42
)

// Options configures a dataset split.
type Options struct {
	// InputPath is the artifact to partition.
	InputPath string
	// TrainPath and DevPath receive the partitioned artifacts.
	TrainPath string
	DevPath   string
	// DevSize is the fraction of documents held out for the dev set.
	DevSize float64
	// Seed fixes the shuffle so splits are reproducible.
	Seed int64
}

// Run partitions the dataset.
func Run(opts Options) error {
	return fmt.Errorf("split: %w", internalerr.ErrNotImplemented)
}
