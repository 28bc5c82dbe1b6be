package checkout

import (
	"context"

	"github.com/flowlet/billingkit/logger"
	"github.com/flowlet/billingkit/pricing"
	"github.com/flowlet/billingkit/stripe"
	"go.uber.org/zap"
)

// Service starts checkout sessions. It resolves the application's lookup
// key and country code to upstream identifiers through the pricing cache,
// so a missing key means an invalid pricing configuration, not a cache
// failure.
type Service struct {
	logger   logger.Logger
	cache    pricing.Cache
	sessions SessionCreator
	store    Store
}

// NewService creates a checkout service
func NewService(log logger.Logger, cache pricing.Cache, sessions SessionCreator, store Store) (*Service, error) {
	if cache == nil {
		return nil, ErrNilDependency("pricing cache")
	}
	if sessions == nil {
		return nil, ErrNilDependency("session creator")
	}
	if store == nil {
		return nil, ErrNilDependency("store")
	}
	return &Service{
		logger:   log,
		cache:    cache,
		sessions: sessions,
		store:    store,
	}, nil
}

// BeginCheckout resolves the price and tax rate for the given lookup key
// and country, creates a hosted checkout session, and records it pending.
func (s *Service) BeginCheckout(ctx context.Context, email, lookupKey, country string) (*stripe.CheckoutSession, error) {
	priceID, err := s.cache.PriceID(lookupKey)
	if err != nil {
		return nil, ErrInvalidPricing(err)
	}
	taxRateID, err := s.cache.TaxRateID(country)
	if err != nil {
		return nil, ErrInvalidPricing(err)
	}

	session, err := s.sessions.CreateCheckoutSession(ctx, stripe.CheckoutParams{
		CustomerEmail: email,
		PriceID:       priceID,
		TaxRateID:     taxRateID,
	})
	if err != nil {
		return nil, err
	}

	rec := &Record{
		SessionID:     session.ID,
		CustomerEmail: email,
		PriceID:       priceID,
		TaxRateID:     taxRateID,
	}
	if err := s.store.CreatePending(ctx, rec); err != nil {
		// The session exists upstream either way; the webhook upsert will
		// still record the completion.
		s.logger.Error("failed to record pending checkout",
			zap.String("session_id", session.ID),
			zap.Error(err),
		)
	}

	s.logger.Info("checkout started",
		zap.String("session_id", session.ID),
		zap.String("lookup_key", lookupKey),
		zap.String("country", country),
	)

	return session, nil
}
