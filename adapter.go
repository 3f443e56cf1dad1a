package buildwatch

import (
	"context"
	"errors"
	"net/http"
	"os"
	"regexp"
	"sync"

	"code.cloudfoundry.org/clock"
	"code.cloudfoundry.org/lager/v3"
	"github.com/tedsuo/ifrit"

	"github.com/winston-ci/buildwatch/api"
	"github.com/winston-ci/buildwatch/discovery"
	"github.com/winston-ci/buildwatch/fetcher"
	"github.com/winston-ci/buildwatch/stream"
)

var (
	ErrAlreadyInitialized = errors.New("adapter already initialized")
	ErrNotInitialized     = errors.New("adapter not initialized")
	ErrDisposed           = errors.New("adapter disposed")
)

type adapterState int

const (
	adapterCreated adapterState = iota
	adapterInitialized
	adapterDisposed
)

// Adapter is the host-facing entry point. Its lifecycle is a closed state
// machine: Created → Initialized → Disposed, one transition each.
//
// Initialize resolves the configured jobs and starts their one-time
// discovery; Builds answers queries against that snapshot; Dispose cancels
// any unresolved discovery and tears down the shared transport.
type Adapter struct {
	logger      lager.Logger
	config      Config
	credentials fetcher.CredentialProvider
	extractor   api.CommitExtractor
	clock       clock.Clock

	mu         sync.Mutex
	state      adapterState
	configured bool
	transport  *http.Transport
	producer   *stream.Producer
	discovered ifrit.Process
}

func NewAdapter(
	logger lager.Logger,
	config Config,
	credentials fetcher.CredentialProvider,
	extractor api.CommitExtractor,
) *Adapter {
	return &Adapter{
		logger:      logger.Session("adapter", lager.Data{"target": config.TargetID().String()}),
		config:      config,
		credentials: credentials,
		extractor:   extractor,
		clock:       clock.NewClock(),
	}
}

// Initialize moves the adapter to the Initialized state. A malformed job
// filter or an empty job set leaves the adapter unconfigured rather than
// erroring: it initializes, polls nothing, and streams empty.
func (a *Adapter) Initialize() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch a.state {
	case adapterInitialized:
		return ErrAlreadyInitialized
	case adapterDisposed:
		return ErrDisposed
	}

	a.state = adapterInitialized

	filter, err := regexp.Compile(a.config.JobFilter)
	if err != nil {
		a.logger.Error("invalid-job-filter", err)
		return nil
	}

	if a.config.Server.URL == nil {
		a.logger.Info("no-server-configured")
		return nil
	}

	targets := a.config.targets(filter)
	if len(targets) == 0 {
		a.logger.Info("no-jobs-configured")
		return nil
	}

	a.transport = &http.Transport{}

	apiFetcher := fetcher.NewAPIFetcher(a.logger, a.transport, a.credentials, a.clock)

	if creds := a.credentials.Credentials(false); creds == nil {
		a.logger.Debug("no-initial-credentials")
	}

	pool := discovery.NewPool(
		a.logger,
		discovery.NewDiscoverer(a.logger, apiFetcher),
		targets,
	)

	a.discovered = ifrit.Invoke(pool.Runner())

	a.producer = stream.NewProducer(a.logger, apiFetcher, a.extractor, pool.Futures())

	a.configured = true

	return nil
}

// Builds answers one query. The returned stream must be consumed (or closed)
// by the caller; it is single-pass.
func (a *Adapter) Builds(ctx context.Context, filter stream.Filter) (stream.EventStream, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch a.state {
	case adapterCreated:
		return nil, ErrNotInitialized
	case adapterDisposed:
		return nil, ErrDisposed
	}

	if !a.configured {
		return stream.EmptyStream(), nil
	}

	return a.producer.Builds(ctx, filter), nil
}

func (a *Adapter) Dispose() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch a.state {
	case adapterCreated:
		return ErrNotInitialized
	case adapterDisposed:
		return ErrDisposed
	}

	a.state = adapterDisposed

	if a.discovered != nil {
		a.discovered.Signal(os.Interrupt)
		<-a.discovered.Wait()
	}

	if a.transport != nil {
		a.transport.CloseIdleConnections()
	}

	return nil
}
