package logger

import "fmt"

// ErrBuildLogger wraps a zap build failure
func ErrBuildLogger(err error) error {
	return fmt.Errorf("logger: building zap logger: %w", err)
}

// ErrInvalidLevel reports a level outside the supported set
func ErrInvalidLevel(level string, err error) error {
	return fmt.Errorf("logger: unsupported level %q: %w", level, err)
}

// ErrInvalidEncoding reports an encoding outside the supported set
func ErrInvalidEncoding(encoding string) error {
	return fmt.Errorf("logger: unsupported encoding %q (want json or console)", encoding)
}
