package events

import "fmt"

// ErrInvalidConfig publisher configuration error
func ErrInvalidConfig(msg string) error {
	return fmt.Errorf("events: invalid config: %s", msg)
}

// ErrConnection kafka connection error
func ErrConnection(err error) error {
	return fmt.Errorf("events: connection failed: %w", err)
}

// ErrEncode event encoding error
func ErrEncode(err error) error {
	return fmt.Errorf("events: encoding event: %w", err)
}
