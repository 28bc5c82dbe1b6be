package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/flowlet/billingkit/logger"
	"github.com/flowlet/billingkit/pricing"
	"github.com/flowlet/billingkit/stripe"
	"github.com/shopspring/decimal"
)

// staticUpstream serves fixed reference data for a real pricing cache
type staticUpstream struct {
	prices   []pricing.PriceRecord
	taxRates []pricing.TaxRateRecord
}

func (s *staticUpstream) ListActivePrices(ctx context.Context) ([]pricing.PriceRecord, error) {
	return s.prices, nil
}

func (s *staticUpstream) ListActiveTaxRates(ctx context.Context) ([]pricing.TaxRateRecord, error) {
	return s.taxRates, nil
}

type fakeSessions struct {
	created []stripe.CheckoutParams
	err     error
}

func (f *fakeSessions) CreateCheckoutSession(ctx context.Context, p stripe.CheckoutParams) (*stripe.CheckoutSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, p)
	return &stripe.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.example/cs_test_1"}, nil
}

func startedCache(t *testing.T) pricing.Cache {
	t.Helper()
	upstream := &staticUpstream{
		prices: []pricing.PriceRecord{
			{ID: "price_1", LookupKey: "feature-item", Currency: "usd", UnitAmount: decimal.NewFromInt(500)},
		},
		taxRates: []pricing.TaxRateRecord{
			{ID: "txr_1", Country: "AU", Percentage: decimal.NewFromInt(10)},
		},
	}
	cache, err := pricing.New(logger.NewNop(), &pricing.Config{Name: "test"}, upstream)
	if err != nil {
		t.Fatalf("pricing.New failed: %v", err)
	}
	if err := cache.Start(); err != nil {
		t.Fatalf("cache.Start failed: %v", err)
	}
	t.Cleanup(cache.Stop)
	return cache
}

func TestNewService_RequiredDeps(t *testing.T) {
	cache := startedCache(t)
	sessions := &fakeSessions{}
	store := newFakeStore()

	tests := []struct {
		name     string
		cache    pricing.Cache
		sessions SessionCreator
		store    Store
	}{
		{"nil cache", nil, sessions, store},
		{"nil sessions", cache, nil, store},
		{"nil store", cache, sessions, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewService(logger.NewNop(), tt.cache, tt.sessions, tt.store); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestService_BeginCheckout(t *testing.T) {
	cache := startedCache(t)
	sessions := &fakeSessions{}
	store := newFakeStore()

	svc, err := NewService(logger.NewNop(), cache, sessions, store)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	session, err := svc.BeginCheckout(context.Background(), "me@example.com", "feature-item", "AU")
	if err != nil {
		t.Fatalf("BeginCheckout failed: %v", err)
	}
	if session.ID != "cs_test_1" {
		t.Errorf("session ID = %q, want cs_test_1", session.ID)
	}

	if len(sessions.created) != 1 {
		t.Fatalf("sessions created = %d, want 1", len(sessions.created))
	}
	params := sessions.created[0]
	if params.PriceID != "price_1" {
		t.Errorf("PriceID = %q, want price_1 (resolved via lookup key)", params.PriceID)
	}
	if params.TaxRateID != "txr_1" {
		t.Errorf("TaxRateID = %q, want txr_1 (resolved via country)", params.TaxRateID)
	}

	rec, err := store.BySessionID(context.Background(), "cs_test_1")
	if err != nil {
		t.Fatalf("pending record not persisted: %v", err)
	}
	if rec.Status != StatusPending {
		t.Errorf("Status = %q, want %q", rec.Status, StatusPending)
	}
}

func TestService_BeginCheckout_UnknownLookupKey(t *testing.T) {
	svc, err := NewService(logger.NewNop(), startedCache(t), &fakeSessions{}, newFakeStore())
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	_, err = svc.BeginCheckout(context.Background(), "me@example.com", "missing", "AU")
	if err == nil {
		t.Fatal("expected error for unknown lookup key")
	}
	var nf *pricing.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected wrapped NotFoundError, got %v", err)
	}
	if nf.Key != "missing" {
		t.Errorf("NotFoundError.Key = %q, want missing", nf.Key)
	}
}

func TestService_BeginCheckout_UnknownCountry(t *testing.T) {
	sessions := &fakeSessions{}
	svc, err := NewService(logger.NewNop(), startedCache(t), sessions, newFakeStore())
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	_, err = svc.BeginCheckout(context.Background(), "me@example.com", "feature-item", "US")
	if err == nil {
		t.Fatal("expected error for unknown country")
	}
	if len(sessions.created) != 0 {
		t.Error("no session must be created for an invalid tax configuration")
	}
}
