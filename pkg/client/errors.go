package client

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport covers failures where no usable response arrived: dial,
	// DNS, timeouts, an open breaker or an undecodable success body.
	ErrTransport = errors.New("client: transport failure")
	// ErrInvalidResponse is returned for a decodable success body whose
	// recommendations field is missing or not an array of strings.
	ErrInvalidResponse = errors.New("client: invalid response")
)

// StatusError is returned for non-2xx responses. Message holds the service's
// error string and is empty when the body carried none.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("client: recommender returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("client: recommender returned status %d: %s", e.StatusCode, e.Message)
}
