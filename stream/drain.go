package stream

import (
	"io"

	"github.com/hashicorp/go-multierror"

	"github.com/winston-ci/buildwatch/api"
)

// Drain consumes a stream to completion, collecting its events and folding
// any job-scoped failures into one aggregate error.
func Drain(s EventStream) ([]api.BuildEvent, error) {
	var events []api.BuildEvent
	var failures *multierror.Error

	for {
		event, err := s.NextEvent()
		if err == io.EOF {
			break
		}

		if err != nil {
			failures = multierror.Append(failures, err)
			continue
		}

		events = append(events, event)
	}

	return events, failures.ErrorOrNil()
}
