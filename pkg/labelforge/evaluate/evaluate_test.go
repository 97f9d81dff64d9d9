package evaluate

import (
	"errors"
	"testing"

	"github.com/cognicore/labelforge/pkg/labelforge/internalerr"
)

func TestRunNotImplemented(t *testing.T) {
	err := Run(Options{ModelPath: "model", DatasetPath: "data.docpack"})
	if !errors.Is(err, internalerr.ErrNotImplemented) {
		t.Fatalf("expected ErrNotImplemented, got %v", err)
	}
}
