// Package engine evaluates welltube scene scripts. Each script runs in a
// fresh zygomys sandbox whose builtins (well, marker, place, group, camera
// and the lights) record nodes into a new SceneGraph.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/welltube/pkg/graph"
	"github.com/chazu/welltube/pkg/logging"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError is a problem in the user's script: a syntax error or a builtin
// rejecting its arguments. Line is 1-based and zero when unknown.
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

// Engine turns scene scripts into graphs. It is safe for concurrent use;
// when evaluations overlap, only the newest one's result is returned.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	timeout    time.Duration
	defaults   graph.Settings
}

// NewEngine returns an engine with the EvalTimeout limit.
func NewEngine() *Engine {
	return NewEngineWithTimeout(EvalTimeout)
}

// NewEngineWithTimeout returns an engine that abandons scripts running
// longer than d. Non-positive values mean EvalTimeout.
func NewEngineWithTimeout(d time.Duration) *Engine {
	if d <= 0 {
		d = EvalTimeout
	}
	return &Engine{timeout: d, defaults: graph.DefaultSettings()}
}

// SetSceneDefaults sets the camera, lights and background every evaluated
// graph starts from. Script forms override them.
func (e *Engine) SetSceneDefaults(s graph.Settings) {
	e.mu.Lock()
	e.defaults = s
	e.mu.Unlock()
}

// Evaluate runs source and returns the scene it describes.
//
// Problems in the script come back as EvalErrors with a nil graph. The
// error return is reserved for the engine itself failing: a timeout, a
// panic, or being superseded by a newer Evaluate.
func (e *Engine) Evaluate(source string) (*graph.SceneGraph, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	defaults := e.defaults
	e.mu.Unlock()

	log := logging.L().With("component", "engine", "generation", gen)
	start := time.Now()

	ch := make(chan evalResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()
		g, evalErrs := run(source, defaults)
		ch <- evalResult{graph: g, errors: evalErrs}
	}()

	g, evalErrs, err := e.await(ch, gen)
	switch {
	case err != nil:
		log.Warn("evaluation failed", "err", err)
	case len(evalErrs) > 0:
		log.Info("evaluation produced errors", "count", len(evalErrs), "first", evalErrs[0].Error())
	default:
		log.Debug("evaluation finished", "nodes", g.NodeCount(), "elapsed", time.Since(start))
	}
	return g, evalErrs, err
}

// run evaluates source in a new sandbox. Blank source is an empty scene.
func run(source string, defaults graph.Settings) (*graph.SceneGraph, []EvalError) {
	g := graph.New()
	g.Settings = defaults
	if strings.TrimSpace(source) == "" {
		return g, nil
	}

	// The sandbox has no filesystem or system access.
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, g)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err)
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err)
	}
	return g, nil
}

// locationPattern finds the line (and column, when given) zygomys reports,
// in either "Error on line N: msg" or "line N: msg" form.
var locationPattern = regexp.MustCompile(`(?i)(?:^|error )(?:on )?line (\d+)(?:,? col(?:umn)? (\d+))?:\s*(.*)`)

// parseZygomysError turns a zygomys failure into an EvalError, keeping the
// location when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := strings.TrimSpace(err.Error())
	m := locationPattern.FindStringSubmatch(msg)
	if m == nil {
		return []EvalError{{Message: msg}}
	}
	line, _ := strconv.Atoi(m[1])
	col, _ := strconv.Atoi(m[2])
	return []EvalError{{Line: line, Col: col, Message: strings.TrimSpace(m[3])}}
}
