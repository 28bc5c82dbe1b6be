package stripe

import "fmt"

// ErrInvalidConfig invalid config
func ErrInvalidConfig(msg string) error {
	return fmt.Errorf("stripe: invalid config: %s", msg)
}

// ErrList wraps a failed list call for one collection
func ErrList(collection string, err error) error {
	return fmt.Errorf("stripe: listing %s: %w", collection, err)
}

// ErrCreateSession wraps a failed checkout session creation
func ErrCreateSession(err error) error {
	return fmt.Errorf("stripe: creating checkout session: %w", err)
}

// ErrDecodeEvent wraps a webhook event that failed signature verification
// or decoding
func ErrDecodeEvent(err error) error {
	return fmt.Errorf("stripe: decoding webhook event: %w", err)
}
