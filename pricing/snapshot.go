package pricing

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// PriceRecord is one upstream price as the cache sees it. UnitAmount is in
// the currency's minor unit (cents for USD).
type PriceRecord struct {
	ID         string
	LookupKey  string
	Currency   string
	UnitAmount decimal.Decimal
}

// TaxRateRecord is one upstream tax rate, keyed by country code for lookups.
type TaxRateRecord struct {
	ID         string
	Country    string
	Percentage decimal.Decimal
}

// Snapshot is an immutable pair of price and tax rate collections produced
// by one successful fetch. Records never mix across fetches: a reader holds
// either this snapshot in full or another one in full.
type Snapshot struct {
	prices    []PriceRecord
	taxRates  []TaxRateRecord
	fetchedAt time.Time
}

// NewSnapshot builds a snapshot from one fetch. The input slices are cloned
// so later mutation by the caller cannot reach into an installed snapshot.
func NewSnapshot(prices []PriceRecord, taxRates []TaxRateRecord) *Snapshot {
	return &Snapshot{
		prices:    slices.Clone(prices),
		taxRates:  slices.Clone(taxRates),
		fetchedAt: time.Now(),
	}
}

// Prices returns the snapshot's price records in fetch order.
// The returned slice MUST be treated as read-only.
func (s *Snapshot) Prices() []PriceRecord {
	return s.prices
}

// TaxRates returns the snapshot's tax rate records in fetch order.
// The returned slice MUST be treated as read-only.
func (s *Snapshot) TaxRates() []TaxRateRecord {
	return s.taxRates
}

// FetchedAt returns when the snapshot's fetch completed.
func (s *Snapshot) FetchedAt() time.Time {
	return s.fetchedAt
}

// PriceID returns the identifier of the first price whose lookup key equals
// lookupKey. Upstream data is expected to hold at most one price per lookup
// key, but the cache does not deduplicate; first match in fetch order wins.
func (s *Snapshot) PriceID(lookupKey string) (string, error) {
	for _, p := range s.prices {
		if p.LookupKey == lookupKey {
			return p.ID, nil
		}
	}
	return "", &NotFoundError{Kind: "price", Key: lookupKey}
}

// TaxRateID returns the identifier of the first tax rate for the given
// country code.
func (s *Snapshot) TaxRateID(country string) (string, error) {
	for _, r := range s.taxRates {
		if r.Country == country {
			return r.ID, nil
		}
	}
	return "", &NotFoundError{Kind: "tax rate", Key: country}
}
