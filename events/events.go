// Package events publishes completed checkouts to Kafka for downstream
// consumers (fulfillment, notifications). billingkit only produces; the
// inbound path is the webhook, so no consumer lives here.
package events

import (
	"context"

	"github.com/flowlet/billingkit/checkout"
)

// Publisher publishes checkout events to the stream
// It satisfies checkout.Publisher
type Publisher interface {
	PublishCompleted(ctx context.Context, e checkout.CompletedEvent) error
	Close() error
}
