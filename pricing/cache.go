package pricing

import (
	"context"
	"sync"
	"time"

	"github.com/flowlet/billingkit/logger"
	"github.com/flowlet/billingkit/routine"
	"go.uber.org/zap"
)

// refreshableCache is the default Cache implementation
type refreshableCache struct {
	// Dependencies
	logger   logger.Logger
	upstream Upstream

	// Configuration
	name            string
	refreshInterval time.Duration
	fetchTimeout    time.Duration

	// Runtime state
	mu       sync.RWMutex
	snapshot *Snapshot
	ctx      context.Context
	cancel   context.CancelFunc
	once     sync.Once // Ensures Stop is only executed once
}

// New creates a new pricing cache
// It returns an error if the configuration is invalid
// The returned Cache must have Start() called before use
func New(log logger.Logger, cfg *Config, upstream Upstream) (Cache, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	} else {
		cfg = cfg.MergeDefaults()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if upstream == nil {
		return nil, ErrNilUpstream
	}

	return &refreshableCache{
		logger:          log,
		upstream:        upstream,
		name:            cfg.Name,
		refreshInterval: cfg.RefreshInterval,
		fetchTimeout:    cfg.FetchTimeout,
	}, nil
}

// Start performs the initial blocking fetch and starts the refresh loop
// Returns an error if the initial fetch fails; no snapshot is installed and
// no goroutine is started in that case
func (c *refreshableCache) Start() error {
	c.ctx, c.cancel = context.WithCancel(context.Background())

	snap, err := c.fetch(c.ctx)
	if err != nil {
		c.cancel()
		return ErrInitialFetch(err)
	}
	c.install(snap)

	c.logger.Info("pricing cache populated",
		zap.String("cache", c.name),
		zap.Int("prices", len(snap.Prices())),
		zap.Int("tax_rates", len(snap.TaxRates())),
	)

	routine.GoNamedWithContext(c.ctx, c.logger, c.name+"-refresh", func(ctx context.Context) {
		ticker := time.NewTicker(c.refreshInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.Refresh(ctx)
			case <-ctx.Done():
				c.logger.Info("stopping refresh loop", zap.String("cache", c.name))
				return
			}
		}
	})

	return nil
}

// Stop stops the refresh loop
// It can be called multiple times safely
func (c *refreshableCache) Stop() {
	c.once.Do(func() {
		if c.cancel != nil {
			c.cancel()
		}
	})
}

func (c *refreshableCache) Ready() bool {
	return c.current() != nil
}

func (c *refreshableCache) Snapshot() *Snapshot {
	return c.current()
}

func (c *refreshableCache) Prices() []PriceRecord {
	snap := c.current()
	if snap == nil {
		return nil
	}
	return snap.Prices()
}

func (c *refreshableCache) TaxRates() []TaxRateRecord {
	snap := c.current()
	if snap == nil {
		return nil
	}
	return snap.TaxRates()
}

func (c *refreshableCache) PriceID(lookupKey string) (string, error) {
	snap := c.current()
	if snap == nil {
		return "", ErrNotReady
	}
	return snap.PriceID(lookupKey)
}

func (c *refreshableCache) TaxRateID(country string) (string, error) {
	snap := c.current()
	if snap == nil {
		return "", ErrNotReady
	}
	return snap.TaxRateID(country)
}

// Refresh fetches both collections and swaps the snapshot on success
// A failed fetch keeps the previous snapshot, so concurrent lookups keep
// observing consistent (possibly stale) data
func (c *refreshableCache) Refresh(ctx context.Context) RefreshOutcome {
	snap, err := c.fetch(ctx)
	if err != nil {
		c.logger.Warn("refresh failed, keeping stale snapshot",
			zap.String("cache", c.name),
			zap.Error(err),
		)
		return StaleKept
	}

	c.install(snap)
	c.logger.Debug("snapshot refreshed",
		zap.String("cache", c.name),
		zap.Int("prices", len(snap.Prices())),
		zap.Int("tax_rates", len(snap.TaxRates())),
	)
	return Refreshed
}

// fetch retrieves both collections under the configured timeout and builds
// a snapshot. Either both collections come from this fetch or the fetch
// fails as a whole; a snapshot never mixes fetches.
func (c *refreshableCache) fetch(ctx context.Context) (*Snapshot, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	prices, err := c.upstream.ListActivePrices(fetchCtx)
	if err != nil {
		return nil, ErrFetch("prices", err)
	}

	taxRates, err := c.upstream.ListActiveTaxRates(fetchCtx)
	if err != nil {
		return nil, ErrFetch("tax rates", err)
	}

	return NewSnapshot(prices, taxRates), nil
}

// current returns the installed snapshot pointer. The pointer read and the
// replacement in install are each atomic under the mutex, so readers see
// either the old snapshot or the new one, never a partial state.
func (c *refreshableCache) current() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

func (c *refreshableCache) install(snap *Snapshot) {
	c.mu.Lock()
	c.snapshot = snap
	c.mu.Unlock()
}
