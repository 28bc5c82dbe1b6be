package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/flowlet/billingkit/logger"
	"github.com/shopspring/decimal"
	stripeapi "github.com/stripe/stripe-go/v76"
)

// fakeDecoder returns a scripted event or error, standing in for signature
// verification
type fakeDecoder struct {
	event *stripeapi.Event
	err   error
}

func (f *fakeDecoder) DecodeEvent(payload []byte, sigHeader string) (*stripeapi.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.event, nil
}

// fakeStore is an in-memory Store
type fakeStore struct {
	mu        sync.Mutex
	records   map[string]*Record
	failNext  error
	completed int
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[string]*Record{}}
}

func (f *fakeStore) AutoMigrate(ctx context.Context) error { return nil }

func (f *fakeStore) CreatePending(ctx context.Context, rec *Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext != nil {
		return f.failNext
	}
	cp := *rec
	cp.Status = StatusPending
	f.records[rec.SessionID] = &cp
	return nil
}

func (f *fakeStore) MarkCompleted(ctx context.Context, rec *Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext != nil {
		return f.failNext
	}
	cp := *rec
	cp.Status = StatusCompleted
	f.records[rec.SessionID] = &cp
	f.completed++
	return nil
}

func (f *fakeStore) BySessionID(ctx context.Context, sessionID string) (*Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[sessionID]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return rec, nil
}

func (f *fakeStore) ExpirePending(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

type fakePublisher struct {
	events []CompletedEvent
	err    error
}

func (f *fakePublisher) PublishCompleted(ctx context.Context, e CompletedEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, e)
	return nil
}

type fakeRecorder struct {
	rows int
}

func (f *fakeRecorder) RecordCompleted(ctx context.Context, eventType string, e CompletedEvent) error {
	f.rows++
	return nil
}

func completedEvent(t *testing.T, sessionID string) *stripeapi.Event {
	t.Helper()
	session := map[string]any{
		"id":             sessionID,
		"customer_email": "me@example.com",
		"amount_total":   550,
		"currency":       "usd",
	}
	raw, err := json.Marshal(session)
	if err != nil {
		t.Fatalf("marshal session: %v", err)
	}
	return &stripeapi.Event{
		ID:      "evt_1",
		Type:    eventCheckoutCompleted,
		Created: time.Now().Unix(),
		Data:    &stripeapi.EventData{Raw: raw},
	}
}

func postWebhook(t *testing.T, h http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader("{}"))
	req.Header.Set("Stripe-Signature", "t=1,v1=sig")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestNewWebhookHandler_RequiredDeps(t *testing.T) {
	if _, err := NewWebhookHandler(logger.NewNop(), nil, newFakeStore(), nil, nil); err == nil {
		t.Error("expected error for nil decoder")
	}
	if _, err := NewWebhookHandler(logger.NewNop(), &fakeDecoder{}, nil, nil, nil); err == nil {
		t.Error("expected error for nil store")
	}
}

func TestWebhookHandler_MethodNotAllowed(t *testing.T) {
	h, err := NewWebhookHandler(logger.NewNop(), &fakeDecoder{}, newFakeStore(), nil, nil)
	if err != nil {
		t.Fatalf("NewWebhookHandler failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/webhooks/stripe", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
}

func TestWebhookHandler_BadSignature(t *testing.T) {
	decoder := &fakeDecoder{err: fmt.Errorf("signature mismatch")}
	store := newFakeStore()
	h, err := NewWebhookHandler(logger.NewNop(), decoder, store, nil, nil)
	if err != nil {
		t.Fatalf("NewWebhookHandler failed: %v", err)
	}

	w := postWebhook(t, h)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if store.completed != 0 {
		t.Error("nothing should be persisted for an unverified event")
	}
}

func TestWebhookHandler_Completed(t *testing.T) {
	decoder := &fakeDecoder{event: completedEvent(t, "cs_test_1")}
	store := newFakeStore()
	publisher := &fakePublisher{}
	recorder := &fakeRecorder{}
	h, err := NewWebhookHandler(logger.NewNop(), decoder, store, publisher, recorder)
	if err != nil {
		t.Fatalf("NewWebhookHandler failed: %v", err)
	}

	w := postWebhook(t, h)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	rec, err := store.BySessionID(context.Background(), "cs_test_1")
	if err != nil {
		t.Fatalf("record not persisted: %v", err)
	}
	if rec.Status != StatusCompleted {
		t.Errorf("Status = %q, want %q", rec.Status, StatusCompleted)
	}
	if rec.CustomerEmail != "me@example.com" {
		t.Errorf("CustomerEmail = %q, want me@example.com", rec.CustomerEmail)
	}
	if !rec.AmountTotal.Equal(decimal.NewFromInt(550)) {
		t.Errorf("AmountTotal = %s, want 550", rec.AmountTotal)
	}
	if rec.Currency != "usd" {
		t.Errorf("Currency = %q, want usd", rec.Currency)
	}

	if len(publisher.events) != 1 {
		t.Errorf("published events = %d, want 1", len(publisher.events))
	}
	if recorder.rows != 1 {
		t.Errorf("recorded rows = %d, want 1", recorder.rows)
	}
}

func TestWebhookHandler_IgnoresOtherEvents(t *testing.T) {
	decoder := &fakeDecoder{event: &stripeapi.Event{ID: "evt_2", Type: "invoice.paid"}}
	store := newFakeStore()
	h, err := NewWebhookHandler(logger.NewNop(), decoder, store, nil, nil)
	if err != nil {
		t.Fatalf("NewWebhookHandler failed: %v", err)
	}

	w := postWebhook(t, h)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d (unknown events are acknowledged)", w.Code, http.StatusOK)
	}
	if store.completed != 0 {
		t.Error("unknown events must not touch the store")
	}
}

func TestWebhookHandler_StoreFailure(t *testing.T) {
	decoder := &fakeDecoder{event: completedEvent(t, "cs_test_2")}
	store := newFakeStore()
	store.failNext = fmt.Errorf("connection refused")
	h, err := NewWebhookHandler(logger.NewNop(), decoder, store, nil, nil)
	if err != nil {
		t.Fatalf("NewWebhookHandler failed: %v", err)
	}

	w := postWebhook(t, h)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d so the delivery is retried", w.Code, http.StatusInternalServerError)
	}
}

func TestWebhookHandler_PublisherFailureStillAcknowledged(t *testing.T) {
	decoder := &fakeDecoder{event: completedEvent(t, "cs_test_3")}
	store := newFakeStore()
	publisher := &fakePublisher{err: fmt.Errorf("broker down")}
	h, err := NewWebhookHandler(logger.NewNop(), decoder, store, publisher, nil)
	if err != nil {
		t.Fatalf("NewWebhookHandler failed: %v", err)
	}

	w := postWebhook(t, h)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d (publish is best effort)", w.Code, http.StatusOK)
	}
	if store.completed != 1 {
		t.Error("record must still be persisted when publishing fails")
	}
}
