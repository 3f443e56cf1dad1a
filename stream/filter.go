package stream

import (
	"time"

	"github.com/winston-ci/buildwatch/api"
)

// Filter is the caller's per-query predicate. Nil fields do not filter.
type Filter struct {
	// Since excludes builds that started strictly before it.
	Since *time.Time

	// Running, when set, requires the build's running state to match it.
	Running *bool
}

func (f Filter) Match(event api.BuildEvent) bool {
	if f.Since != nil && event.StartTime.Before(*f.Since) {
		return false
	}

	if f.Running != nil && event.IsRunning != *f.Running {
		return false
	}

	return true
}
