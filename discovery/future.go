package discovery

import (
	"context"
	"errors"

	"github.com/winston-ci/buildwatch/api"
)

// ErrCancelled is returned from Wait when the discovery task was signalled
// before it resolved. Callers treat it as benign.
var ErrCancelled = errors.New("discovery cancelled")

// Future holds the one-time discovery result for a single target. It is
// written exactly once, during adapter initialization, and published by
// closing done; reads after that are lock-free.
type Future struct {
	target api.BuildTarget

	done chan struct{}
	urls []string
	err  error
}

func newFuture(target api.BuildTarget) *Future {
	return &Future{
		target: target,
		done:   make(chan struct{}),
	}
}

func (f *Future) Target() api.BuildTarget {
	return f.target
}

// Wait blocks until the discovery task resolves or ctx is done. A cancelled
// task yields ErrCancelled; a failed one yields the fetch or decode error.
func (f *Future) Wait(ctx context.Context) ([]string, error) {
	select {
	case <-f.done:
		return f.urls, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *Future) resolve(urls []string, err error) {
	f.urls = urls
	f.err = err
	close(f.done)
}
