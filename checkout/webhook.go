package checkout

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/flowlet/billingkit/logger"
	"github.com/shopspring/decimal"
	stripeapi "github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

// maxBodyBytes caps the webhook request body
const maxBodyBytes = int64(65536)

const eventCheckoutCompleted = "checkout.session.completed"

// WebhookHandler is the HTTP endpoint for upstream webhook deliveries.
// Signature verification is delegated to the EventDecoder; only
// checkout.session.completed is acted on, everything else is acknowledged.
type WebhookHandler struct {
	logger    logger.Logger
	decoder   EventDecoder
	store     Store
	publisher Publisher // optional
	recorder  Recorder  // optional
}

// NewWebhookHandler creates the webhook handler. Publisher and recorder may
// be nil; persistence is the only hard requirement.
func NewWebhookHandler(log logger.Logger, decoder EventDecoder, store Store, publisher Publisher, recorder Recorder) (*WebhookHandler, error) {
	if decoder == nil {
		return nil, ErrNilDependency("event decoder")
	}
	if store == nil {
		return nil, ErrNilDependency("store")
	}
	return &WebhookHandler{
		logger:    log,
		decoder:   decoder,
		store:     store,
		publisher: publisher,
		recorder:  recorder,
	}, nil
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Error("webhook: failed to read request body", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	event, err := h.decoder.DecodeEvent(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		h.logger.Error("webhook: failed to decode event", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch string(event.Type) {
	case eventCheckoutCompleted:
		if err := h.handleCompleted(r.Context(), event); err != nil {
			h.logger.Error("webhook: failed to process completed checkout",
				zap.String("event_id", event.ID),
				zap.Error(err),
			)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	default:
		h.logger.Debug("webhook: ignoring event", zap.String("type", string(event.Type)))
	}

	w.WriteHeader(http.StatusOK)
}

func (h *WebhookHandler) handleCompleted(ctx context.Context, event *stripeapi.Event) error {
	var session stripeapi.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return ErrBadEventPayload(err)
	}

	email := session.CustomerEmail
	if email == "" && session.CustomerDetails != nil {
		email = session.CustomerDetails.Email
	}

	completed := CompletedEvent{
		SessionID:     session.ID,
		CustomerEmail: email,
		AmountTotal:   decimal.NewFromInt(session.AmountTotal),
		Currency:      string(session.Currency),
		CompletedAt:   time.Unix(event.Created, 0),
	}

	rec := &Record{
		SessionID:     completed.SessionID,
		CustomerEmail: completed.CustomerEmail,
		AmountTotal:   completed.AmountTotal,
		Currency:      completed.Currency,
		CompletedAt:   completed.CompletedAt,
	}
	if err := h.store.MarkCompleted(ctx, rec); err != nil {
		return err
	}

	// Stream and analytics are best effort: a failure there must not make
	// the upstream retry a delivery we already persisted.
	if h.publisher != nil {
		if err := h.publisher.PublishCompleted(ctx, completed); err != nil {
			h.logger.Error("webhook: failed to publish completed event",
				zap.String("session_id", completed.SessionID),
				zap.Error(err),
			)
		}
	}
	if h.recorder != nil {
		if err := h.recorder.RecordCompleted(ctx, eventCheckoutCompleted, completed); err != nil {
			h.logger.Error("webhook: failed to record analytics event",
				zap.String("session_id", completed.SessionID),
				zap.Error(err),
			)
		}
	}

	h.logger.Info("checkout completed",
		zap.String("session_id", completed.SessionID),
		zap.String("currency", completed.Currency),
	)
	return nil
}
