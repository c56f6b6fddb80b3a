package engine

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/chazu/welltube/pkg/graph"
)

func TestEvaluateProducesEmptyScene(t *testing.T) {
	sources := map[string]string{
		"empty":         "",
		"whitespace":    "   \n\t  \n  ",
		"comments":      ";; survey pending\n;; nothing yet\n",
		"arithmetic":    "(+ 1 2)",
		"bindings only": "(def depth 3000)\n(def kop (* depth 0.1))\n(+ depth kop)",
	}
	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			g, evalErrs, err := NewEngine().Evaluate(src)
			if err != nil {
				t.Fatalf("unexpected fatal error: %v", err)
			}
			if len(evalErrs) > 0 {
				t.Fatalf("unexpected eval errors: %v", evalErrs)
			}
			if g == nil {
				t.Fatal("expected non-nil graph")
			}
			if g.NodeCount() != 0 || len(g.Roots) != 0 {
				t.Errorf("expected empty scene, got %d nodes", g.NodeCount())
			}
			if g.Settings != graph.DefaultSettings() {
				t.Errorf("empty scene should carry default settings, got %+v", g.Settings)
			}
		})
	}
}

func TestEvaluateFailuresAreEvalErrors(t *testing.T) {
	sources := map[string]string{
		"unbalanced":       `(well "w" :outer 5`,
		"undefined symbol": `(well "w" :outer radius :inner 4 :path (list (vec3 0 0 0) (vec3 0 0 -1)))`,
		"builtin error":    `(vec3 1 2)`,
	}
	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			g, evalErrs, err := NewEngine().Evaluate(src)
			if err != nil {
				t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
			}
			if g != nil {
				t.Fatal("expected nil graph on eval error")
			}
			if len(evalErrs) == 0 || evalErrs[0].Message == "" {
				t.Fatalf("expected an eval error with a message, got %v", evalErrs)
			}
		})
	}
}

func TestEvaluateSyntaxErrorLine(t *testing.T) {
	source := "(marker \"m\" :radius 1)\n(well \"w\""
	_, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error")
	}
	// Line info depends on the zygomys error format; when present it must
	// point into the source.
	if l := evalErrs[0].Line; l < 0 || l > 2 {
		t.Errorf("line = %d, want 0 (unknown) or within the 2-line source", l)
	}
}

func TestEvalErrorString(t *testing.T) {
	e := EvalError{Line: 5, Message: "well: :path is required"}
	if s := e.Error(); !strings.Contains(s, "line 5") || !strings.Contains(s, ":path is required") {
		t.Errorf("Error() = %q, want line and message", s)
	}
	if s := (EvalError{Message: "no location"}).Error(); strings.Contains(s, "line") {
		t.Errorf("Error() with no line should not mention a line, got %q", s)
	}
}

func TestEvaluateFreshSandboxEachTime(t *testing.T) {
	eng := NewEngine()
	src := `(well "w" :outer 5 :inner 4 :path (list (vec3 0 0 0) (vec3 0 0 -10)))`

	// The same name in a second evaluation is not a duplicate: every run
	// starts from an empty graph.
	for i := 0; i < 3; i++ {
		g, evalErrs, err := eng.Evaluate(src)
		if err != nil || len(evalErrs) > 0 {
			t.Fatalf("iteration %d: %v %v", i, err, evalErrs)
		}
		if g.NodeCount() != 1 {
			t.Errorf("iteration %d: %d nodes, want 1", i, g.NodeCount())
		}
	}

	// Definitions do not leak between evaluations either.
	if _, _, err := eng.Evaluate("(def leaked 1)"); err != nil {
		t.Fatal(err)
	}
	_, evalErrs, err := eng.Evaluate("(+ leaked 1)")
	if err != nil {
		t.Fatal(err)
	}
	if len(evalErrs) == 0 {
		t.Error("a binding from a previous evaluation should be undefined")
	}
}

func TestSetSceneDefaults(t *testing.T) {
	eng := NewEngine()
	s := graph.DefaultSettings()
	s.Camera.FOV = 30
	s.Background = graph.MustColor("#000000")
	eng.SetSceneDefaults(s)

	g, _, err := eng.Evaluate(`(camera :fov 70)`)
	if err != nil {
		t.Fatal(err)
	}
	if g.Settings.Camera.FOV != 70 {
		t.Errorf("script fov = %v, want 70", g.Settings.Camera.FOV)
	}
	if g.Settings.Background.Hex() != "#000000" {
		t.Errorf("background = %s, want configured #000000", g.Settings.Background.Hex())
	}
}

func TestEvaluateTimeout(t *testing.T) {
	// A channel that never delivers stands in for a runaway script.
	e := &Engine{timeout: 50 * time.Millisecond, generation: 1}
	ch := make(chan evalResult)

	done := make(chan error, 1)
	go func() {
		_, _, err := e.await(ch, 1)
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, ErrTimeout) {
			t.Fatalf("expected ErrTimeout, got %v", err)
		}
		if !strings.Contains(err.Error(), "50ms") {
			t.Errorf("timeout error should name the limit, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("await did not time out")
	}
}

func TestNewEngineWithTimeoutDefault(t *testing.T) {
	for _, d := range []time.Duration{0, -time.Second} {
		if eng := NewEngineWithTimeout(d); eng.timeout != EvalTimeout {
			t.Errorf("NewEngineWithTimeout(%s).timeout = %s, want %s", d, eng.timeout, EvalTimeout)
		}
	}
	if eng := NewEngineWithTimeout(time.Second); eng.timeout != time.Second {
		t.Errorf("timeout = %s, want 1s", eng.timeout)
	}
}

func TestEvaluateGenerationDiscardsStale(t *testing.T) {
	e := &Engine{timeout: time.Second, generation: 2}
	ch := make(chan evalResult, 1)
	ch <- evalResult{graph: graph.New()}

	// A result for generation 1 arrives after generation 2 started.
	_, _, err := e.await(ch, 1)
	if !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded, got: %v", err)
	}
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
		wantMsg  string
	}{
		{"error on line", "Error on line 5: unexpected token\n", 5, "unexpected token"},
		{"lowercase", "error on line 12: missing paren", 12, "missing paren"},
		{"short form", "line 3: well: :path is required", 3, ":path is required"},
		{"no line info", "ref: no node named \"target\"", 0, "no node named"},
		{"with column", "Error on line 2, column 7: unexpected )", 2, "unexpected )"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseZygomysError(errors.New(tt.msg))
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1", len(errs))
			}
			if errs[0].Line != tt.wantLine {
				t.Errorf("line = %d, want %d", errs[0].Line, tt.wantLine)
			}
			if !strings.Contains(errs[0].Message, tt.wantMsg) {
				t.Errorf("message = %q, want containing %q", errs[0].Message, tt.wantMsg)
			}
		})
	}
}

func TestParseZygomysErrorColumn(t *testing.T) {
	errs := parseZygomysError(errors.New("Error on line 2, column 7: unexpected )"))
	if errs[0].Col != 7 {
		t.Errorf("col = %d, want 7", errs[0].Col)
	}
	if errs = parseZygomysError(errors.New("line 4: bad")); errs[0].Col != 0 {
		t.Errorf("col = %d, want 0 when not reported", errs[0].Col)
	}
}
