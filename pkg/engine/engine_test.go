package engine

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chazu/archway/pkg/graph"
)

func TestEvaluateEmptyPrograms(t *testing.T) {
	sources := map[string]string{
		"empty":      "",
		"whitespace": "   \n\t  \n  ",
		"comment":    ";; walls go here later",
		"arithmetic": "(def x 10)\n(def y 20)\n(+ x y)",
	}
	for name, source := range sources {
		t.Run(name, func(t *testing.T) {
			g, evalErrs, err := NewEngine().Evaluate(source)
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
				t.Errorf("expected empty graph, got %d nodes and %d roots", g.NodeCount(), len(g.Roots))
			}
		})
	}
}

func TestEvaluateScriptErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"unmatched paren", `(wall "w" :width 2`},
		{"undefined symbol", `(wall "w" :width undefined-width :height 2)`},
		{"undefined function", `(window "w")`},
		{"error on second line", "(wall \"a\" :width 1 :height 1)\n(door \"d\" :walls"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, evalErrs, err := NewEngine().Evaluate(tt.source)
			if err != nil {
				t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
			}
			if g != nil {
				t.Fatal("a failed script must not yield a graph")
			}
			if len(evalErrs) == 0 {
				t.Fatal("expected at least one eval error")
			}
			if evalErrs[0].Message == "" {
				t.Error("eval error message should not be empty")
			}
			t.Logf("line=%d message=%q", evalErrs[0].Line, evalErrs[0].Message)
		})
	}
}

func TestEvalErrorString(t *testing.T) {
	var err error = EvalError{Line: 5, Message: "door: walls: expected wall reference"}
	if got := err.Error(); got != "line 5: door: walls: expected wall reference" {
		t.Errorf("Error() = %q", got)
	}
	err = EvalError{Message: "no location"}
	if got := err.Error(); got != "no location" {
		t.Errorf("Error() = %q", got)
	}
	var target EvalError
	if !errors.As(err, &target) {
		t.Error("EvalError should be usable with errors.As")
	}
}

func TestEvaluateDeterministicIDs(t *testing.T) {
	source := `(door "d" :walls (wall "w" :width 2 :height 2))`
	eng := NewEngine()

	var first *graph.DesignGraph
	for i := 0; i < 3; i++ {
		g, evalErrs, err := eng.Evaluate(source)
		if err != nil || len(evalErrs) > 0 {
			t.Fatalf("iteration %d: err=%v evalErrs=%v", i, err, evalErrs)
		}
		if first == nil {
			first = g
			continue
		}
		for name, id := range first.NameIndex {
			if g.NameIndex[name] != id {
				t.Errorf("iteration %d: %q has id %s, want %s", i, name, g.NameIndex[name].Short(), id.Short())
			}
		}
	}
	if want := graph.NewNodeID("wall/w"); first.NameIndex["w"] != want {
		t.Errorf("wall id = %s, want %s", first.NameIndex["w"].Short(), want.Short())
	}
}

func TestEvaluateSetsVersion(t *testing.T) {
	eng := NewEngine()
	for want := uint64(1); want <= 3; want++ {
		g, _, err := eng.Evaluate(`(wall "w" :width 1 :height 1)`)
		if err != nil {
			t.Fatalf("unexpected fatal error: %v", err)
		}
		if g.Version != want {
			t.Errorf("version = %d, want %d", g.Version, want)
		}
	}
}

func TestNewEngineDefaultTimeout(t *testing.T) {
	if got := NewEngine().Timeout; got != EvalTimeout {
		t.Errorf("Timeout = %s, want %s", got, EvalTimeout)
	}
}

func TestZeroEngineEvaluates(t *testing.T) {
	var eng Engine
	g, evalErrs, err := eng.Evaluate(`(wall "w" :width 1 :height 1)`)
	if err != nil || len(evalErrs) > 0 {
		t.Fatalf("err=%v evalErrs=%v", err, evalErrs)
	}
	if len(g.Walls()) != 1 {
		t.Errorf("walls = %d, want 1", len(g.Walls()))
	}
}

func TestWaitWithTimeout(t *testing.T) {
	var mu sync.Mutex

	t.Run("expires", func(t *testing.T) {
		gen := uint64(1)
		never := make(chan evalResult)
		start := time.Now()
		_, _, err := waitWithTimeout(never, 1, &mu, &gen, 50*time.Millisecond)
		if err == nil || !strings.Contains(err.Error(), "timed out after 50ms") {
			t.Fatalf("err = %v, want timeout after 50ms", err)
		}
		if time.Since(start) > EvalTimeout {
			t.Error("the configured timeout was not used")
		}
	})

	t.Run("stale generation", func(t *testing.T) {
		gen := uint64(2)
		ch := make(chan evalResult, 1)
		ch <- evalResult{graph: graph.New()}
		_, _, err := waitWithTimeout(ch, 1, &mu, &gen, EvalTimeout)
		if !errors.Is(err, errSuperseded) {
			t.Errorf("err = %v, want superseded", err)
		}
	})

	t.Run("current generation", func(t *testing.T) {
		gen := uint64(3)
		ch := make(chan evalResult, 1)
		want := graph.New()
		ch <- evalResult{graph: want}
		g, _, err := waitWithTimeout(ch, 3, &mu, &gen, EvalTimeout)
		if err != nil || g != want {
			t.Errorf("g=%p err=%v, want the sent graph", g, err)
		}
	})
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		msg      string
		wantLine int
		wantMsg  string
	}{
		{"Error on line 5: door: unknown keyword :colour\n", 5, "door: unknown keyword :colour"},
		{"error on line 12: missing paren", 12, "missing paren"},
		{"line 3: wall requires a name argument", 3, "wall requires a name argument"},
		{"some generic error", 0, "some generic error"},
	}
	for _, tt := range tests {
		t.Run(tt.wantMsg, func(t *testing.T) {
			errs := parseZygomysError(errors.New(tt.msg))
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1", len(errs))
			}
			if errs[0].Line != tt.wantLine {
				t.Errorf("line = %d, want %d", errs[0].Line, tt.wantLine)
			}
			if errs[0].Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", errs[0].Message, tt.wantMsg)
			}
		})
	}
}
