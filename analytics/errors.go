package analytics

import "fmt"

var (
	// ErrSinkClosed when the sink is closed
	ErrSinkClosed = fmt.Errorf("analytics: sink is closed")
)

// ErrInvalidConfig invalid config
func ErrInvalidConfig(msg string) error {
	return fmt.Errorf("analytics: invalid config: %s", msg)
}

// ErrConnection ClickHouse connection error
func ErrConnection(err error) error {
	return fmt.Errorf("analytics: connection failed: %w", err)
}
