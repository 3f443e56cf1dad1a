package api

import (
	"encoding/json"
	"fmt"
	"time"
)

// TranslateError is returned for a build document that cannot be decoded or
// is missing a required field. Callers skip the offending build; it is never
// fatal to the job.
type TranslateError struct {
	Err error
}

func (err TranslateError) Error() string {
	return fmt.Sprintf("malformed build document: %s", err.Err)
}

func (err TranslateError) Unwrap() error {
	return err.Err
}

type missingFieldError struct {
	field string
}

func (err missingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", err.field)
}

// TranslateBuild normalizes one build detail document into a BuildEvent.
// Timestamps are interpreted as milliseconds since the epoch, UTC. The commit
// list may come back empty; discarding commitless events is the caller's
// concern, not translation's.
func TranslateBuild(document []byte, extractor CommitExtractor) (BuildEvent, error) {
	var doc BuildDocument
	err := json.Unmarshal(document, &doc)
	if err != nil {
		return BuildEvent{}, TranslateError{Err: err}
	}

	if doc.Timestamp == nil {
		return BuildEvent{}, TranslateError{Err: missingFieldError{"timestamp"}}
	}

	if doc.Building == nil {
		return BuildEvent{}, TranslateError{Err: missingFieldError{"building"}}
	}

	description := doc.FullDisplayName
	if description == "" {
		description = doc.Description
	}

	return BuildEvent{
		Description:  description,
		StartTime:    time.UnixMilli(*doc.Timestamp).UTC(),
		IsRunning:    *doc.Building,
		CommitHashes: extractor.ExtractCommits(doc),
	}, nil
}
