package fetcher

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"time"

	"code.cloudfoundry.org/clock"
	"code.cloudfoundry.org/lager/v3"
	"github.com/cenkalti/backoff/v5"
	"github.com/concourse/retryhttp"
)

// transient-cancel retries are bounded; the transport layer occasionally
// cancels requests of its own accord and a flapping network must not livelock
// the fetch.
const maxTransientAttempts = 3

const transientRetryInterval = 500 * time.Millisecond

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 . Fetcher

type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 . CredentialProvider

// CredentialProvider is the host's credential collaborator. Interactive
// requests may prompt the user; a nil result means credentials were denied.
// The token is opaque to the fetcher beyond being sendable as an
// Authorization header.
type CredentialProvider interface {
	Credentials(interactive bool) *Credentials
}

type Credentials struct {
	Type  string
	Value string
}

// APIFetcher performs authenticated GETs against the build server. The
// transport it is given is shared across all jobs and queries; connection
// level retries are handled underneath it by retryhttp.
type APIFetcher struct {
	logger      lager.Logger
	httpClient  *http.Client
	credentials CredentialProvider
	clock       clock.Clock
}

func NewAPIFetcher(
	logger lager.Logger,
	transport http.RoundTripper,
	credentials CredentialProvider,
	clk clock.Clock,
) *APIFetcher {
	return &APIFetcher{
		logger: logger,
		httpClient: &http.Client{
			Transport: &retryhttp.RetryRoundTripper{
				Logger:         logger.Session("retry-round-tripper"),
				BackOffFactory: retryhttp.NewExponentialBackOffFactory(5 * time.Minute),
				RoundTripper:   transport,
				Retryer:        &retryhttp.DefaultRetryer{},
			},
		},
		credentials: credentials,
		clock:       clk,
	}
}

func (f *APIFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f.fetch(ctx, url, f.credentials.Credentials(false), true)
}

func (f *APIFetcher) fetch(ctx context.Context, url string, creds *Credentials, mayReauth bool) ([]byte, error) {
	logger := f.logger.Session("fetch", lager.Data{"url": url})

	retrySchedule := backoff.NewExponentialBackOff()
	retrySchedule.InitialInterval = transientRetryInterval
	retrySchedule.Reset()

	var challenge *authChallenge

	for attempt := 1; ; attempt++ {
		body, ch, err := f.attempt(ctx, url, creds)
		if err == nil && ch == nil {
			return body, nil
		}

		if ch != nil {
			challenge = ch
			break
		}

		if isTransientCancel(ctx, err) && attempt < maxTransientAttempts {
			logger.Debug("retrying-transient-cancel", lager.Data{"attempt": attempt})
			f.clock.Sleep(retrySchedule.NextBackOff())
			continue
		}

		return nil, err
	}

	if !mayReauth {
		return nil, AuthCancelledError{Reason: challenge.reason}
	}

	logger.Info("re-authenticating", lager.Data{"reason": challenge.reason})

	freshCreds := f.credentials.Credentials(true)
	if freshCreds == nil {
		logger.Info("credentials-denied")
		return nil, AuthCancelledError{Reason: challenge.reason}
	}

	return f.fetch(ctx, url, freshCreds, false)
}

type authChallenge struct {
	reason string
}

// attempt performs a single GET. A non-nil challenge means the server wants
// authentication: a 401, a 403, or an HTML login page substituted for the
// JSON document on an otherwise successful response.
func (f *APIFetcher) attempt(ctx context.Context, url string, creds *Credentials) ([]byte, *authChallenge, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, nil, err
	}

	if creds != nil {
		req.Header.Set("Authorization", creds.Type+" "+creds.Value)
	}

	response, err := f.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}

	defer response.Body.Close()

	switch {
	case response.StatusCode == http.StatusUnauthorized,
		response.StatusCode == http.StatusForbidden:
		io.Copy(io.Discard, response.Body)
		return nil, &authChallenge{reason: response.Status}, nil

	case response.StatusCode >= 200 && response.StatusCode < 300:
		if !jsonContentType(response.Header.Get("Content-Type")) {
			io.Copy(io.Discard, response.Body)
			return nil, &authChallenge{reason: "login page returned for " + url}, nil
		}

		body, err := io.ReadAll(response.Body)
		if err != nil {
			return nil, nil, err
		}

		return body, nil, nil

	default:
		io.Copy(io.Discard, response.Body)
		return nil, nil, RequestFailedError{
			StatusCode: response.StatusCode,
			Reason:     response.Status,
		}
	}
}

// isTransientCancel reports whether the transport cancelled the request
// without the caller having asked for it.
func isTransientCancel(ctx context.Context, err error) bool {
	return errors.Is(err, context.Canceled) && ctx.Err() == nil
}

func jsonContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == "application/json" || mediaType == "text/json"
}
