package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chazu/archway/pkg/graph"
)

// EvalTimeout is the default limit for a single evaluation.
const EvalTimeout = 5 * time.Second

// errSuperseded is returned to an evaluation that finished after a newer
// one had started.
var errSuperseded = errors.New("evaluation superseded by newer request")

type evalResult struct {
	graph  *graph.DesignGraph
	errors []EvalError
	err    error
}

// waitWithTimeout blocks until ch delivers or timeout passes. A result
// whose generation gen is no longer *currentGen is dropped. A timed-out
// evaluation keeps running in its goroutine; the buffered channel lets it
// finish without a reader.
func waitWithTimeout(ch <-chan evalResult, gen uint64, mu *sync.Mutex, currentGen *uint64, timeout time.Duration) (*graph.DesignGraph, []EvalError, error) {
	if timeout <= 0 {
		timeout = EvalTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil, nil, fmt.Errorf("evaluation timed out after %s", timeout)
	case res := <-ch:
		mu.Lock()
		stale := gen != *currentGen
		mu.Unlock()
		if stale {
			return nil, nil, errSuperseded
		}
		return res.graph, res.errors, res.err
	}
}
