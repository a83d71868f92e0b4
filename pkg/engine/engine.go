// Package engine evaluates scene-description scripts. It wraps zygomys in a
// sandboxed environment and produces a scene.Scene from user source code.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/envi/pkg/scene"
	zygo "github.com/glycerine/zygomys/zygo"
)

// DefaultSceneName names scenes whose script never calls building.
const DefaultSceneName = "envi"

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine wraps the zygomys interpreter.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64

	// Timeout bounds one evaluation; zero means EvalTimeout.
	Timeout time.Duration

	// EPVersion, when set, replaces the default EnergyPlus version of new
	// scenes. Scripts may still override it.
	EPVersion string
}

// NewEngine creates a new Engine instance.
func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate takes scene-description source and produces a new Scene.
//
// Return semantics:
//   - On success: returns scene + nil errors + nil error
//   - On parse/eval failure: returns nil scene + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*scene.Scene, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("engine: panic during evaluation: %v", r)}
			}
		}()

		sc, evalErrs, err := e.evaluate(source)
		ch <- evalResult{scene: sc, errors: evalErrs, err: err}
	}()

	return e.await(ch, gen)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*scene.Scene, []EvalError, error) {
	sc := scene.New(DefaultSceneName)
	if e.EPVersion != "" {
		sc.Params.EPVersion = e.EPVersion
	}
	if strings.TrimSpace(source) == "" {
		return sc, nil, nil
	}

	// Sandbox mode keeps scripts away from the filesystem and syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	b := newBuilder(sc)
	registerBuiltins(env, b)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if err := b.finish(); err != nil {
		return nil, []EvalError{{Message: err.Error()}}, nil
	}
	return sc, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, p := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := p.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}

	// Fallback: no line info available.
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
