// Package checkout owns the checkout lifecycle around the pricing cache:
// starting a hosted checkout session from a lookup key and country code,
// persisting the resulting records, and handling the completion webhook.
//
// The cache translates human-facing keys into opaque upstream identifiers;
// everything else here is glue between the upstream session API, the
// relational store, and the downstream event/analytics sinks.
package checkout

import (
	"context"
	"time"

	"github.com/flowlet/billingkit/stripe"
	"github.com/shopspring/decimal"
	stripeapi "github.com/stripe/stripe-go/v76"
)

// Checkout statuses
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusExpired   = "expired"
)

// Record is one checkout session as persisted. A row is created pending
// when the session is started and marked completed by the webhook.
type Record struct {
	ID            uint   `gorm:"primaryKey"`
	SessionID     string `gorm:"size:255;uniqueIndex"`
	CustomerEmail string `gorm:"size:255"`
	PriceID       string `gorm:"size:255"`
	TaxRateID     string `gorm:"size:255"`
	AmountTotal   decimal.Decimal `gorm:"type:decimal(20,4)"`
	Currency      string          `gorm:"size:8"`
	Status        string          `gorm:"size:32;index"`
	CompletedAt   time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName sets the table name for Record
func (Record) TableName() string {
	return "checkout_records"
}

// Store persists checkout records
type Store interface {
	// AutoMigrate creates or updates the backing table
	AutoMigrate(ctx context.Context) error

	// CreatePending inserts a new pending record for a started session
	CreatePending(ctx context.Context, rec *Record) error

	// MarkCompleted upserts the record for a completed session, keyed by
	// session ID. Replayed webhook deliveries are harmless: they write the
	// same values again.
	MarkCompleted(ctx context.Context, rec *Record) error

	// BySessionID returns the record for a session, or gorm.ErrRecordNotFound
	BySessionID(ctx context.Context, sessionID string) (*Record, error)

	// ExpirePending marks pending records created before the cutoff as
	// expired and returns how many rows changed
	ExpirePending(ctx context.Context, before time.Time) (int64, error)
}

// CompletedEvent is the payload fanned out to the event stream and the
// analytics sink when a checkout completes.
type CompletedEvent struct {
	SessionID     string          `json:"session_id"`
	CustomerEmail string          `json:"customer_email"`
	AmountTotal   decimal.Decimal `json:"amount_total"`
	Currency      string          `json:"currency"`
	CompletedAt   time.Time       `json:"completed_at"`
}

// Publisher publishes completed checkouts to the event stream
type Publisher interface {
	PublishCompleted(ctx context.Context, e CompletedEvent) error
}

// Recorder records processed webhook events for analytics
type Recorder interface {
	RecordCompleted(ctx context.Context, eventType string, e CompletedEvent) error
}

// EventDecoder verifies and decodes a webhook payload.
// Implemented by stripe.Client.
type EventDecoder interface {
	DecodeEvent(payload []byte, sigHeader string) (*stripeapi.Event, error)
}

// SessionCreator creates hosted checkout sessions upstream.
// Implemented by stripe.Client.
type SessionCreator interface {
	CreateCheckoutSession(ctx context.Context, p stripe.CheckoutParams) (*stripe.CheckoutSession, error)
}
