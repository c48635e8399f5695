package geodata

import (
	"errors"
	"fmt"
)

// Client input errors. Their messages are returned to callers verbatim.
var (
	ErrMissingCoordinates = errors.New("lat and lng are required")
	ErrInvalidCoordinates = errors.New("lat and lng must be valid coordinates")
	ErrInvalidRadius      = errors.New("radiusKm must be a positive number within the allowed range")
)

// UpstreamError reports a provider that answered with a non-success status
// or could not be reached at all (StatusCode 0, including timeouts).
type UpstreamError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s upstream returned status %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s upstream unavailable: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// IsClientError reports whether err was caused by bad request input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrMissingCoordinates) ||
		errors.Is(err, ErrInvalidCoordinates) ||
		errors.Is(err, ErrInvalidRadius)
}
