// Package analytics records processed checkout events into ClickHouse for
// reporting. Rows are buffered on an unbounded channel and flushed in
// batches on size or interval; the write path never blocks the webhook.
package analytics

import (
	"context"
	"time"

	"github.com/flowlet/billingkit/checkout"
	"github.com/shopspring/decimal"
)

// Sink buffers and batch-inserts checkout event rows.
// It satisfies checkout.Recorder.
type Sink interface {
	// Start begins the background flush loop
	Start() error

	// RecordCompleted enqueues one completed checkout for insertion
	RecordCompleted(ctx context.Context, eventType string, e checkout.CompletedEvent) error

	// Close flushes buffered rows and shuts the sink down
	Close() error
}

// row is one entry in the billing_checkout_events table
type row struct {
	EventType     string
	SessionID     string
	CustomerEmail string
	AmountTotal   decimal.Decimal
	Currency      string
	OccurredAt    time.Time
}
