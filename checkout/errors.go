package checkout

import "fmt"

// Predefined errors
var (
	// ErrNilDatabase is returned when no database is provided to NewStore
	ErrNilDatabase = fmt.Errorf("checkout: database is required")
)

// ErrNilDependency returns an error for a missing constructor dependency
func ErrNilDependency(name string) error {
	return fmt.Errorf("checkout: %s is required", name)
}

// ErrInvalidPricing wraps a pricing lookup miss: the requested lookup key
// or country has no matching upstream configuration
func ErrInvalidPricing(err error) error {
	return fmt.Errorf("checkout: invalid pricing configuration: %w", err)
}

// ErrStore wraps a persistence failure
func ErrStore(op string, err error) error {
	return fmt.Errorf("checkout: %s: %w", op, err)
}

// ErrBadEventPayload wraps an event whose payload could not be decoded
func ErrBadEventPayload(err error) error {
	return fmt.Errorf("checkout: decoding event payload: %w", err)
}
