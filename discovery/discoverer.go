package discovery

import (
	"context"
	"encoding/json"

	"code.cloudfoundry.org/lager/v3"
	"github.com/tedsuo/rata"

	"github.com/winston-ci/buildwatch/api"
	"github.com/winston-ci/buildwatch/fetcher"
)

// Discoverer resolves the build detail URLs of one job by fetching its
// listing document.
type Discoverer struct {
	logger  lager.Logger
	fetcher fetcher.Fetcher
}

func NewDiscoverer(logger lager.Logger, f fetcher.Fetcher) *Discoverer {
	return &Discoverer{
		logger:  logger,
		fetcher: f,
	}
}

func (d *Discoverer) Discover(ctx context.Context, target api.BuildTarget) ([]string, error) {
	logger := d.logger.Session("discover", lager.Data{"job": target.Name})

	generator := rata.NewRequestGenerator(target.URL, api.Routes)
	request, err := generator.CreateRequest(api.GetJob, nil, nil)
	if err != nil {
		return nil, err
	}

	document, err := d.fetcher.Fetch(ctx, request.URL.String())
	if err != nil {
		logger.Error("failed-to-fetch-job-listing", err)
		return nil, err
	}

	var job api.JobDocument
	err = json.Unmarshal(document, &job)
	if err != nil {
		logger.Error("failed-to-decode-job-listing", err)
		return nil, err
	}

	urls := make([]string, 0, len(job.Builds))
	for _, build := range job.Builds {
		urls = append(urls, build.URL)
	}

	logger.Debug("resolved", lager.Data{"builds": len(urls)})

	return urls, nil
}
