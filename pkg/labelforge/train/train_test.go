package train

import (
	"errors"
	"testing"

	"github.com/cognicore/labelforge/pkg/labelforge/internalerr"
)

func TestRunNotImplemented(t *testing.T) {
	err := Run(Options{TrainPath: "train.docpack", DevPath: "dev.docpack", BaseModel: DefaultBaseModel})
	if !errors.Is(err, internalerr.ErrNotImplemented) {
		t.Fatalf("expected ErrNotImplemented, got %v", err)
	}
}
