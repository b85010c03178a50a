package raindrop

import (
	"errors"
	"fmt"
)

// ErrMissingToken is returned before any request when no API token is set.
var ErrMissingToken = errors.New("raindrop API token is not set")

// RemoteError reports a non-200 response from the service.
type RemoteError struct {
	Op     string
	Status int
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("failed to fetch %s: status %d", e.Op, e.Status)
}
