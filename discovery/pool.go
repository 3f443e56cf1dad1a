package discovery

import (
	"context"
	"os"
	"sync"

	"code.cloudfoundry.org/lager/v3"
	"github.com/tedsuo/ifrit"

	"github.com/winston-ci/buildwatch/api"
)

// Pool owns one discovery future per configured target. Discovery runs
// exactly once per adapter lifetime; a build created after initialization is
// not seen until the next one.
type Pool struct {
	logger     lager.Logger
	discoverer *Discoverer
	futures    []*Future
}

func NewPool(logger lager.Logger, discoverer *Discoverer, targets []api.BuildTarget) *Pool {
	futures := make([]*Future, len(targets))
	for i, target := range targets {
		futures[i] = newFuture(target)
	}

	return &Pool{
		logger:     logger,
		discoverer: discoverer,
		futures:    futures,
	}
}

// Futures returns the per-target futures in configuration order.
func (pool *Pool) Futures() []*Future {
	return pool.futures
}

// Runner resolves every future, one task per target. A target's failure is
// recorded in its own future and never disturbs sibling tasks. Signalling the
// runner cancels any still-unresolved discovery, leaving those futures in the
// cancelled state; the runner exits once every future is resolved.
func (pool *Pool) Runner() ifrit.Runner {
	return ifrit.RunFunc(func(signals <-chan os.Signal, ready chan<- struct{}) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		resolving := new(sync.WaitGroup)

		for _, future := range pool.futures {
			resolving.Add(1)

			go func(future *Future) {
				defer resolving.Done()

				urls, err := pool.discoverer.Discover(ctx, future.target)
				if ctx.Err() != nil {
					future.resolve(nil, ErrCancelled)
					return
				}

				future.resolve(urls, err)
			}(future)
		}

		close(ready)

		resolved := make(chan struct{})
		go func() {
			resolving.Wait()
			close(resolved)
		}()

		select {
		case <-signals:
			pool.logger.Debug("cancelling-discovery")
			cancel()
			<-resolved
			return nil

		case <-resolved:
			return nil
		}
	})
}
