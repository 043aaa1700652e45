// Package engine runs door scripts.
//
// A script is zygomys Lisp with a handful of builtins (wall, door, arch,
// vec2, vec3, fill-options). Every evaluation gets a fresh sandbox, and the
// builtins record what the script declares into a graph.DesignGraph. The
// script itself never touches geometry; package build does that from the
// graph.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/archway/pkg/graph"
)

// EvalError is a problem in the script itself: a parse error, an unknown
// symbol, or a builtin rejecting its arguments. Line is 1-based and zero
// when zygomys did not report one.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line == 0 {
		return e.Message
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Engine evaluates scripts. A zero Timeout means EvalTimeout.
// Evaluate may be called from several goroutines. Only the most recent
// call delivers a graph; older calls still running report that they were
// superseded.
type Engine struct {
	// Timeout bounds a single evaluation. NewEngine sets EvalTimeout.
	Timeout time.Duration

	mu         sync.Mutex
	generation uint64
}

// NewEngine returns an Engine with the default timeout.
func NewEngine() *Engine {
	return &Engine{Timeout: EvalTimeout}
}

// Evaluate runs source and returns the design it declares, stamped with
// the evaluation's generation as its Version.
//
// Mistakes in the script come back as EvalErrors with a nil graph. The
// error result is reserved for the engine giving up: a timeout, a newer
// evaluation, or a panic inside zygomys.
func (e *Engine) Evaluate(source string) (*graph.DesignGraph, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	done := make(chan evalResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- evalResult{err: fmt.Errorf("evaluation panicked: %v", r)}
			}
		}()
		g, errs := run(source)
		if g != nil {
			g.Version = gen
		}
		done <- evalResult{graph: g, errors: errs}
	}()

	return waitWithTimeout(done, gen, &e.mu, &e.generation, e.Timeout)
}

// run evaluates source in a fresh sandbox. Blank source is an empty design.
func run(source string) (*graph.DesignGraph, []EvalError) {
	g := graph.New()
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

// zygomys reports locations as "Error on line N: ..." from the parser and
// builtins report them as "line N: ...".
var linePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`),
	regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`),
}

// parseZygomysError turns a zygomys error into an EvalError, pulling out
// the line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := strings.TrimSpace(err.Error())
	for _, re := range linePatterns {
		m := re.FindStringSubmatch(msg)
		if m == nil {
			continue
		}
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}
	return []EvalError{{Message: msg}}
}
