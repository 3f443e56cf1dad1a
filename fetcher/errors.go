package fetcher

import "fmt"

// RequestFailedError is a non-2xx outcome with no authentication remedy.
type RequestFailedError struct {
	StatusCode int
	Reason     string
}

func (err RequestFailedError) Error() string {
	return fmt.Sprintf("request failed: %s", err.Reason)
}

// AuthCancelledError is returned when the server challenged the fetch and
// fresh credentials were not granted. It carries the server's original
// reason phrase.
type AuthCancelledError struct {
	Reason string
}

func (err AuthCancelledError) Error() string {
	return fmt.Sprintf("authentication cancelled: %s", err.Reason)
}
