package stripe

import (
	"context"

	"github.com/flowlet/billingkit/pricing"
	"github.com/shopspring/decimal"
	stripeapi "github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

// ListActivePrices fetches all active prices, in Stripe's list order.
func (c *Client) ListActivePrices(ctx context.Context) ([]pricing.PriceRecord, error) {
	params := &stripeapi.PriceListParams{
		Active: stripeapi.Bool(true),
	}
	params.Context = ctx

	var records []pricing.PriceRecord
	iter := c.api.Prices.List(params)
	for iter.Next() {
		records = append(records, priceRecord(iter.Price()))
	}
	if err := iter.Err(); err != nil {
		return nil, ErrList("prices", err)
	}

	c.logger.Debug("fetched active prices", zap.Int("count", len(records)))
	return records, nil
}

// ListActiveTaxRates fetches all active tax rates, in Stripe's list order.
func (c *Client) ListActiveTaxRates(ctx context.Context) ([]pricing.TaxRateRecord, error) {
	params := &stripeapi.TaxRateListParams{
		Active: stripeapi.Bool(true),
	}
	params.Context = ctx

	var records []pricing.TaxRateRecord
	iter := c.api.TaxRates.List(params)
	for iter.Next() {
		records = append(records, taxRateRecord(iter.TaxRate()))
	}
	if err := iter.Err(); err != nil {
		return nil, ErrList("tax rates", err)
	}

	c.logger.Debug("fetched active tax rates", zap.Int("count", len(records)))
	return records, nil
}

func priceRecord(p *stripeapi.Price) pricing.PriceRecord {
	return pricing.PriceRecord{
		ID:         p.ID,
		LookupKey:  p.LookupKey,
		Currency:   string(p.Currency),
		UnitAmount: decimal.NewFromInt(p.UnitAmount),
	}
}

func taxRateRecord(r *stripeapi.TaxRate) pricing.TaxRateRecord {
	return pricing.TaxRateRecord{
		ID:         r.ID,
		Country:    r.Country,
		Percentage: decimal.NewFromFloat(r.Percentage),
	}
}
