// Package pricing holds a periodically refreshed snapshot of upstream
// reference data (active prices and tax rates) and serves point lookups
// against it.
//
// The pricing package follows billingkit conventions:
// - Interface-driven design for testability
// - Uses logger.Logger interface for unified logging
// - Uses routine package for safe goroutine execution
// - Configuration with validation and defaults
// - Structured error handling
//
// The cache is populated by a blocking initial fetch in Start and then kept
// fresh by a background refresh loop. A failed refresh keeps the previous
// snapshot, so transient upstream outages degrade to serving stale but
// internally consistent data instead of failing lookups.
package pricing

import "context"

// Upstream is the capability the cache depends on for fetching reference
// data. The production implementation lives in the stripe package; tests
// supply fakes.
type Upstream interface {
	// ListActivePrices returns all currently active prices
	ListActivePrices(ctx context.Context) ([]PriceRecord, error)

	// ListActiveTaxRates returns all currently active tax rates
	ListActiveTaxRates(ctx context.Context) ([]TaxRateRecord, error)
}

// Cache serves point lookups against the latest successfully fetched
// snapshot and owns the refresh protocol.
type Cache interface {
	// Start performs a blocking fetch of both collections and, on success,
	// installs the first snapshot and begins the periodic refresh loop.
	// On failure nothing is installed and the error is returned; a service
	// must not come up without a populated cache.
	Start() error

	// Stop stops the refresh loop. It can be called multiple times safely.
	Stop()

	// Ready reports whether a snapshot has been installed.
	Ready() bool

	// Snapshot returns the currently installed snapshot, or nil before
	// Start has succeeded. It never blocks on I/O.
	Snapshot() *Snapshot

	// Prices returns the price records of the current snapshot.
	//
	// The returned slice is shared with the snapshot and MUST be treated
	// as read-only. Modifying it will cause data races.
	Prices() []PriceRecord

	// TaxRates returns the tax rate records of the current snapshot.
	// The same read-only contract as Prices applies.
	TaxRates() []TaxRateRecord

	// PriceID resolves a lookup key to a price identifier against the
	// current snapshot. A miss returns a *NotFoundError carrying the key.
	PriceID(lookupKey string) (string, error)

	// TaxRateID resolves a country code to a tax rate identifier against
	// the current snapshot. A miss returns a *NotFoundError.
	TaxRateID(country string) (string, error)

	// Refresh fetches both collections and, on success, atomically replaces
	// the snapshot. On failure it logs a warning and keeps the previous
	// snapshot. Invoked by the refresh loop; exported for scheduled jobs
	// and tests.
	Refresh(ctx context.Context) RefreshOutcome
}

// RefreshOutcome reports what a Refresh call did to the installed snapshot.
type RefreshOutcome int

const (
	// Refreshed means the fetch succeeded and a new snapshot was installed
	Refreshed RefreshOutcome = iota
	// StaleKept means the fetch failed and the previous snapshot was kept
	StaleKept
)

// String returns the outcome name for logging
func (o RefreshOutcome) String() string {
	switch o {
	case Refreshed:
		return "refreshed"
	case StaleKept:
		return "stale_kept"
	default:
		return "unknown"
	}
}
