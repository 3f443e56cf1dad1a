package stream

import (
	"context"
	"fmt"
	"io"

	"github.com/winston-ci/buildwatch/api"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 . EventStream

// EventStream is a single-pass sequence of build events. NextEvent returns
// io.EOF when the stream completes; a JobFailedError reports one job's
// failure and leaves the stream open for events from the remaining jobs.
type EventStream interface {
	NextEvent() (api.BuildEvent, error)
	Close() error
}

// JobFailedError is delivered in-band through NextEvent when one job's
// discovery or fetching failed. Sibling jobs are unaffected.
type JobFailedError struct {
	Target api.BuildTarget
	Err    error
}

func (err JobFailedError) Error() string {
	return fmt.Sprintf("job %s failed: %s", err.Target.Name, err.Err)
}

func (err JobFailedError) Unwrap() error {
	return err.Err
}

type streamItem struct {
	event api.BuildEvent
	err   error
}

type buildStream struct {
	items  <-chan streamItem
	cancel context.CancelFunc
}

func (s *buildStream) NextEvent() (api.BuildEvent, error) {
	item, ok := <-s.items
	if !ok {
		return api.BuildEvent{}, io.EOF
	}

	return item.event, item.err
}

func (s *buildStream) Close() error {
	s.cancel()
	return nil
}

type emptyStream struct{}

func (emptyStream) NextEvent() (api.BuildEvent, error) {
	return api.BuildEvent{}, io.EOF
}

func (emptyStream) Close() error {
	return nil
}

// EmptyStream completes immediately with no events. An unconfigured adapter
// hands it out rather than erroring its caller.
func EmptyStream() EventStream {
	return emptyStream{}
}
