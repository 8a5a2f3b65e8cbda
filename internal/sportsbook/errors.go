package sportsbook

import (
	"fmt"
)

// NetworkError reports a failed round trip: connection failure, timeout, or a non-2xx status
type NetworkError struct {
	URL        string
	StatusCode int // zero when no response was received
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("network error: GET %s returned status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("network error: GET %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// FormatError reports a response body that is not JSON or lacks the selections structure
type FormatError struct {
	URL    string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("format error: %s from %s: %v", e.Reason, e.URL, e.Err)
	}
	return fmt.Sprintf("format error: %s from %s", e.Reason, e.URL)
}

func (e *FormatError) Unwrap() error { return e.Err }
