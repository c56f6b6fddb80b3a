package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/chazu/welltube/pkg/graph"
)

// EvalTimeout bounds a single script run unless NewEngineWithTimeout says
// otherwise. Scripts are expected to finish in milliseconds; a script that
// loops forever must not wedge the editor.
const EvalTimeout = 5 * time.Second

var (
	// ErrTimeout means the script ran past the engine's limit.
	ErrTimeout = errors.New("evaluation timed out")
	// ErrSuperseded means a newer Evaluate started before this one finished.
	ErrSuperseded = errors.New("evaluation superseded by newer request")
)

type evalResult struct {
	graph  *graph.SceneGraph
	errors []EvalError
	err    error
}

// await collects the result of evaluation gen. A timed out script keeps its
// goroutine; whatever it sends later lands in the buffered channel unread.
func (e *Engine) await(ch <-chan evalResult, gen uint64) (*graph.SceneGraph, []EvalError, error) {
	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if !e.current(gen) {
			return nil, nil, ErrSuperseded
		}
		return res.graph, res.errors, res.err
	case <-timer.C:
		return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, e.timeout)
	}
}

func (e *Engine) current(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return gen == e.generation
}
