// Package stripe implements billingkit's upstream capabilities on the
// Stripe API: the pricing.Upstream fetches, checkout session creation, and
// webhook event decoding with signature verification.
package stripe

import (
	"github.com/flowlet/billingkit/logger"
	stripeapi "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// Client wraps the Stripe SDK behind billingkit-shaped operations.
// It satisfies pricing.Upstream.
type Client struct {
	logger logger.Logger
	api    *client.API
	config *Config
}

// New creates a Stripe client. It fails on missing credentials so a
// misconfigured service aborts at startup instead of at first use.
func New(log logger.Logger, cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig("config is required")
	}
	cfg = cfg.MergeDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	api := &client.API{}
	api.Init(cfg.SecretKey, nil)

	log.Info("stripe client initialized")

	return &Client{
		logger: log,
		api:    api,
		config: cfg,
	}, nil
}

// DecodeEvent verifies the webhook signature header against the configured
// signing secret and returns the decoded event.
func (c *Client) DecodeEvent(payload []byte, sigHeader string) (*stripeapi.Event, error) {
	event, err := webhook.ConstructEvent(payload, sigHeader, c.config.WebhookSecret)
	if err != nil {
		return nil, ErrDecodeEvent(err)
	}
	return &event, nil
}
