package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/chazu/envi/pkg/scene"
)

// EvalTimeout is the default limit for a single evaluation.
const EvalTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when a script runs past the engine's limit.
	ErrTimeout = errors.New("engine: evaluation timed out")
	// ErrSuperseded is returned to a caller whose evaluation was overtaken
	// by a later one.
	ErrSuperseded = errors.New("engine: evaluation superseded by newer request")
)

type evalResult struct {
	scene  *scene.Scene
	errors []EvalError
	err    error
}

func (e *Engine) current() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation
}

// await returns the result of evaluation gen. A script that never finishes
// keeps its goroutine; whatever it sends later is dropped because its
// generation is no longer current.
func (e *Engine) await(ch <-chan evalResult, gen uint64) (*scene.Scene, []EvalError, error) {
	limit := e.Timeout
	if limit <= 0 {
		limit = EvalTimeout
	}
	timer := time.NewTimer(limit)
	defer timer.Stop()

	select {
	case res := <-ch:
		if gen != e.current() {
			return nil, nil, ErrSuperseded
		}
		return res.scene, res.errors, res.err
	case <-timer.C:
		return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, limit)
	}
}
