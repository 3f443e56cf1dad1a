package stream

import (
	"context"
	"errors"
	"time"

	"code.cloudfoundry.org/lager/v3"
	cache "github.com/patrickmn/go-cache"

	"github.com/winston-ci/buildwatch/api"
	"github.com/winston-ci/buildwatch/discovery"
	"github.com/winston-ci/buildwatch/fetcher"
)

const (
	completedBuildTTL      = 30 * time.Minute
	completedBuildSweepInt = 10 * time.Minute
)

// Producer turns the discovered build set into filtered event streams, one
// per query. Completed builds are immutable server-side, so their translated
// events are memoized across queries; running builds always hit the network.
type Producer struct {
	logger    lager.Logger
	fetcher   fetcher.Fetcher
	extractor api.CommitExtractor
	futures   []*discovery.Future

	completed *cache.Cache
}

func NewProducer(
	logger lager.Logger,
	f fetcher.Fetcher,
	extractor api.CommitExtractor,
	futures []*discovery.Future,
) *Producer {
	return &Producer{
		logger:    logger,
		fetcher:   f,
		extractor: extractor,
		futures:   futures,

		completed: cache.New(completedBuildTTL, completedBuildSweepInt),
	}
}

// Builds streams every discovered build matching the filter, in discovery
// order within a job and configuration order across jobs. Events whose commit
// list is empty are withheld; they cannot be correlated to repository
// history. Cancelling ctx (or closing the stream) stops emission promptly and
// completes the stream cleanly.
func (p *Producer) Builds(ctx context.Context, filter Filter) EventStream {
	ctx, cancel := context.WithCancel(ctx)
	items := make(chan streamItem)

	go p.produce(ctx, filter, items)

	return &buildStream{
		items:  items,
		cancel: cancel,
	}
}

func (p *Producer) produce(ctx context.Context, filter Filter, items chan<- streamItem) {
	defer close(items)

	logger := p.logger.Session("query")

	for _, future := range p.futures {
		target := future.Target()
		jobLogger := logger.Session("job", lager.Data{"job": target.Name})

		urls, err := future.Wait(ctx)
		if errors.Is(err, discovery.ErrCancelled) {
			jobLogger.Debug("discovery-cancelled")
			continue
		}

		if ctx.Err() != nil {
			return
		}

		if err != nil {
			jobLogger.Error("discovery-failed", err)
			if !p.send(ctx, items, streamItem{err: JobFailedError{Target: target, Err: err}}) {
				return
			}
			continue
		}

		if !p.produceJob(ctx, jobLogger, target, urls, filter, items) {
			return
		}
	}
}

// produceJob emits one job's matching events. It reports false only when the
// query was cancelled; a failing fetch errors the job and moves on.
func (p *Producer) produceJob(
	ctx context.Context,
	logger lager.Logger,
	target api.BuildTarget,
	urls []string,
	filter Filter,
	items chan<- streamItem,
) bool {
	for _, url := range urls {
		event, err := p.buildEvent(ctx, url)
		if err != nil {
			if ctx.Err() != nil {
				return false
			}

			var translateErr api.TranslateError
			if errors.As(err, &translateErr) {
				logger.Info("skipping-malformed-build", lager.Data{
					"build": url,
					"error": err.Error(),
				})
				continue
			}

			logger.Error("failed-to-fetch-build", err, lager.Data{"build": url})
			return p.send(ctx, items, streamItem{err: JobFailedError{Target: target, Err: err}})
		}

		if len(event.CommitHashes) == 0 {
			continue
		}

		if !filter.Match(event) {
			continue
		}

		if !p.send(ctx, items, streamItem{event: event}) {
			return false
		}
	}

	return true
}

func (p *Producer) buildEvent(ctx context.Context, url string) (api.BuildEvent, error) {
	if cached, found := p.completed.Get(url); found {
		return cached.(api.BuildEvent), nil
	}

	document, err := p.fetcher.Fetch(ctx, api.JSONURL(url))
	if err != nil {
		return api.BuildEvent{}, err
	}

	event, err := api.TranslateBuild(document, p.extractor)
	if err != nil {
		return api.BuildEvent{}, err
	}

	if !event.IsRunning {
		p.completed.Set(url, event, cache.DefaultExpiration)
	}

	return event, nil
}

func (p *Producer) send(ctx context.Context, items chan<- streamItem, item streamItem) bool {
	select {
	case items <- item:
		return true
	case <-ctx.Done():
		return false
	}
}
