package opensea

import (
	"errors"
	"fmt"
)

// ErrCollectionNotFound is returned when the marketplace answers 404 for a slug.
var ErrCollectionNotFound = errors.New("collection not found")

// ErrThrottled is returned when the marketplace answers 429.
var ErrThrottled = errors.New("marketplace throttled request")

// ErrEmptyResponse is returned for a 200 body without a collection object.
var ErrEmptyResponse = errors.New("response has no collection")

// StatusError reports any other non-200 response.
type StatusError struct {
	Slug       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("collection %s: status %d", e.Slug, e.StatusCode)
	}
	return fmt.Sprintf("collection %s: status %d: %s", e.Slug, e.StatusCode, e.Body)
}

// IsNotFound reports whether err means the slug does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCollectionNotFound)
}
