package export

import (
	"errors"
	"fmt"

	"github.com/chazu/envi/pkg/graph"
)

// Sentinels wrapped by ValidationError. Any of them aborts the frame.
var (
	ErrBadNode              = graph.ErrBadNode
	ErrFenestrationVertices = errors.New("window or door has more than 4 vertices")
	ErrBadConstruction      = errors.New("bad construction")
	ErrMissingHost          = errors.New("fenestration has no host surface")
)

// ValidationError is a finding that aborts the export of a frame.
type ValidationError struct {
	Frame   int
	Subject string
	Err     error
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("export: frame %d: %s: %v", e.Frame, e.Subject, e.Err)
	}
	return fmt.Sprintf("export: frame %d: %s: %v: %s", e.Frame, e.Subject, e.Err, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// errorKind names the sentinel behind err for metrics labels.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrBadNode):
		return "bad-node"
	case errors.Is(err, ErrFenestrationVertices):
		return "fenestration-vertices"
	case errors.Is(err, ErrBadConstruction):
		return "bad-construction"
	case errors.Is(err, ErrMissingHost):
		return "missing-host"
	default:
		return "other"
	}
}

// Warning is a non-fatal finding. The element it names was skipped.
type Warning struct {
	Kind    string
	Subject string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s: %s", w.Kind, w.Subject, w.Message)
}
