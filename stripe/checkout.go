package stripe

import (
	"context"

	stripeapi "github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

// CheckoutParams describes one checkout session to create. Price and tax
// rate identifiers are the opaque upstream IDs resolved through the pricing
// cache, never hardcoded.
type CheckoutParams struct {
	CustomerEmail string
	PriceID       string
	TaxRateID     string
	// Quantity defaults to 1
	Quantity int64
}

// CheckoutSession is the subset of the created session the application
// needs: the identifier to correlate webhook events and the hosted URL to
// redirect the customer to.
type CheckoutSession struct {
	ID  string
	URL string
}

// CreateCheckoutSession creates a hosted checkout session for a single
// line item with the given tax rate applied.
func (c *Client) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*CheckoutSession, error) {
	if p.PriceID == "" {
		return nil, ErrInvalidConfig("price id is required")
	}
	quantity := p.Quantity
	if quantity == 0 {
		quantity = 1
	}

	item := &stripeapi.CheckoutSessionLineItemParams{
		Price:    stripeapi.String(p.PriceID),
		Quantity: stripeapi.Int64(quantity),
	}
	if p.TaxRateID != "" {
		item.TaxRates = stripeapi.StringSlice([]string{p.TaxRateID})
	}

	params := &stripeapi.CheckoutSessionParams{
		Mode:       stripeapi.String(string(stripeapi.CheckoutSessionModePayment)),
		SuccessURL: stripeapi.String(c.config.SuccessURL),
		CancelURL:  stripeapi.String(c.config.CancelURL),
		LineItems:  []*stripeapi.CheckoutSessionLineItemParams{item},
	}
	if p.CustomerEmail != "" {
		params.CustomerEmail = stripeapi.String(p.CustomerEmail)
	}
	params.Context = ctx

	session, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, ErrCreateSession(err)
	}

	c.logger.Info("checkout session created",
		zap.String("session_id", session.ID),
		zap.String("price_id", p.PriceID),
	)

	return &CheckoutSession{ID: session.ID, URL: session.URL}, nil
}
