package api

import (
	"time"
)

// BuildTarget identifies one job to poll: the job's name and its base URL on
// the build server. Targets are computed once from configuration and are
// immutable for the adapter's lifetime.
type BuildTarget struct {
	Name string
	URL  string
}

// JobDocument is the job listing returned by GET <job>/api/json.
type JobDocument struct {
	Builds []BuildRef `json:"builds"`
}

// BuildRef points at one build's detail document.
type BuildRef struct {
	URL string `json:"url"`
}

// BuildDocument is the raw build detail returned by GET <build>/api/json.
// Timestamp and Building are pointers so that a missing field can be told
// apart from a zero value.
type BuildDocument struct {
	Description     string        `json:"description"`
	FullDisplayName string        `json:"fullDisplayName"`
	Timestamp       *int64        `json:"timestamp"`
	Building        *bool         `json:"building"`
	ChangeSet       ChangeSet     `json:"changeSet"`
	Actions         []BuildAction `json:"actions"`
}

type ChangeSet struct {
	Items []ChangeSetItem `json:"items"`
}

type ChangeSetItem struct {
	CommitID string `json:"commitId"`
}

type BuildAction struct {
	LastBuiltRevision *BuildRevision `json:"lastBuiltRevision"`
}

type BuildRevision struct {
	SHA1 string `json:"SHA1"`
}

// BuildEvent is the normalized record emitted to the caller for one build.
type BuildEvent struct {
	Description  string
	StartTime    time.Time
	IsRunning    bool
	CommitHashes []string
}
