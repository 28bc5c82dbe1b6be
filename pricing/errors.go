package pricing

import (
	"fmt"
	"time"
)

// Predefined errors
var (
	// ErrNotReady is returned by lookups before Start has installed a snapshot
	ErrNotReady = fmt.Errorf("pricing: cache not started")
	// ErrNilUpstream is returned when no upstream capability is provided
	ErrNilUpstream = fmt.Errorf("pricing: upstream is required")
)

// NotFoundError is returned when a lookup key or country code is absent
// from the current snapshot. Callers should treat it as an invalid
// price/tax configuration, not as a cache malfunction.
type NotFoundError struct {
	Kind string // "price" or "tax rate"
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("pricing: no %s for %q in current snapshot", e.Kind, e.Key)
}

// Error constructors

// ErrInitialFetch wraps a failed initial fetch. It is fatal: the dependent
// service must not start without a populated cache.
func ErrInitialFetch(err error) error {
	return fmt.Errorf("pricing: initial fetch failed: %w", err)
}

// ErrFetch wraps an upstream fetch failure for one collection
func ErrFetch(collection string, err error) error {
	return fmt.Errorf("pricing: fetching %s: %w", collection, err)
}

// ErrInvalidName returns an error for invalid name
func ErrInvalidName(name string) error {
	return fmt.Errorf("pricing: invalid name: %q (must be non-empty)", name)
}

// ErrInvalidRefreshInterval returns an error for invalid refresh interval
func ErrInvalidRefreshInterval(interval time.Duration) error {
	return fmt.Errorf("pricing: invalid refresh interval: %v (must be > 0)", interval)
}

// ErrInvalidFetchTimeout returns an error for invalid fetch timeout
func ErrInvalidFetchTimeout(timeout time.Duration) error {
	return fmt.Errorf("pricing: invalid fetch timeout: %v (must be > 0)", timeout)
}
