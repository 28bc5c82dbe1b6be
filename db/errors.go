package db

import "fmt"

// ErrNotConnected is returned when a handle is requested before a
// connection was opened
var ErrNotConnected = fmt.Errorf("db: no connection established")

// ErrInvalidConfig database configuration error
func ErrInvalidConfig(msg string) error {
	return fmt.Errorf("db: invalid config: %s", msg)
}

// ErrConnection wraps a failed connect or ping
func ErrConnection(err error) error {
	return fmt.Errorf("db: connecting to mysql: %w", err)
}
