package schedule

import (
	"context"
	"time"

	"github.com/flowlet/billingkit/checkout"
	"github.com/flowlet/billingkit/logger"
	"github.com/flowlet/billingkit/pricing"
	"go.uber.org/zap"
)

// SharedData keys written by RefreshPricingTask and read by
// ReportPricingTask.
const (
	KeyPricingOutcome  = "pricing:outcome"
	KeyPricingPrices   = "pricing:prices"
	KeyPricingTaxRates = "pricing:tax_rates"
)

// RefreshPricingTask forces a pricing cache refresh outside the cache's own
// loop, typically chained before ReportPricingTask. It records the outcome
// and snapshot sizes in SharedData for downstream tasks.
type RefreshPricingTask struct {
	cache pricing.Cache
}

// NewRefreshPricingTask creates a task that refreshes the given cache.
func NewRefreshPricingTask(cache pricing.Cache) *RefreshPricingTask {
	return &RefreshPricingTask{cache: cache}
}

func (t *RefreshPricingTask) Name() string {
	return "refresh-pricing"
}

func (t *RefreshPricingTask) Run(ctx context.Context) error {
	outcome := t.cache.Refresh(ctx)

	if sd := GetSharedData(ctx); sd != nil {
		sd.Set(KeyPricingOutcome, outcome)
		sd.Set(KeyPricingPrices, len(t.cache.Prices()))
		sd.Set(KeyPricingTaxRates, len(t.cache.TaxRates()))
	}
	return nil
}

// ReportPricingTask logs the outcome recorded by a preceding
// RefreshPricingTask in the same chain. When run without one it reports the
// cache's current state instead.
type ReportPricingTask struct {
	logger logger.Logger
	cache  pricing.Cache
}

// NewReportPricingTask creates a task that reports pricing cache state.
func NewReportPricingTask(log logger.Logger, cache pricing.Cache) *ReportPricingTask {
	return &ReportPricingTask{logger: log, cache: cache}
}

func (t *ReportPricingTask) Name() string {
	return "report-pricing"
}

func (t *ReportPricingTask) Run(ctx context.Context) error {
	outcome := "unknown"
	prices := len(t.cache.Prices())
	taxRates := len(t.cache.TaxRates())

	if sd := GetSharedData(ctx); sd != nil {
		if v, ok := sd.Get(KeyPricingOutcome); ok {
			outcome = v.(pricing.RefreshOutcome).String()
		}
		if v, ok := sd.Get(KeyPricingPrices); ok {
			prices = v.(int)
		}
		if v, ok := sd.Get(KeyPricingTaxRates); ok {
			taxRates = v.(int)
		}
	}

	fields := []zap.Field{
		zap.String("outcome", outcome),
		zap.Int("prices", prices),
		zap.Int("tax_rates", taxRates),
	}
	if snap := t.cache.Snapshot(); snap != nil {
		fields = append(fields, zap.Time("fetched_at", snap.FetchedAt()))
	}
	t.logger.Info("pricing cache state", fields...)
	return nil
}

// ExpireCheckoutsTask marks pending checkout records older than MaxAge as
// expired. Stripe checkout sessions expire upstream after 24 hours, so the
// default keeps the store in step with Stripe.
type ExpireCheckoutsTask struct {
	logger logger.Logger
	store  checkout.Store
	maxAge time.Duration
}

// NewExpireCheckoutsTask creates a task expiring pending checkouts older
// than maxAge. A non-positive maxAge defaults to 24 hours.
func NewExpireCheckoutsTask(log logger.Logger, store checkout.Store, maxAge time.Duration) *ExpireCheckoutsTask {
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	return &ExpireCheckoutsTask{logger: log, store: store, maxAge: maxAge}
}

func (t *ExpireCheckoutsTask) Name() string {
	return "expire-checkouts"
}

func (t *ExpireCheckoutsTask) Run(ctx context.Context) error {
	before := time.Now().Add(-t.maxAge)

	expired, err := t.store.ExpirePending(ctx, before)
	if err != nil {
		return err
	}
	t.logger.Debug("checkout expiry run finished",
		zap.Int64("expired", expired),
		zap.Time("before", before),
	)
	return nil
}
