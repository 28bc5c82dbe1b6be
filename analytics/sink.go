package analytics

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/flowlet/billingkit/checkout"
	"github.com/flowlet/billingkit/logger"
	"github.com/smallnest/chanx"
	"go.uber.org/zap"
)

type clickhouseSink struct {
	config *Config
	logger logger.Logger

	conn driver.Conn

	rows        *chanx.UnboundedChan[row]
	flushTicker *time.Ticker

	done   chan struct{}
	wg     sync.WaitGroup
	closed atomic.Bool
}

// NewSink connects to ClickHouse and prepares the sink.
// Caller must call Start() to begin flushing.
func NewSink(log logger.Logger, config *Config) (Sink, error) {
	if config == nil {
		config = DefaultConfig()
	} else {
		config = config.MergeDefaults()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	ctx := context.Background()

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: config.Hosts,
		Auth: clickhouse.Auth{
			Database: config.Database,
			Username: config.Username,
			Password: config.Password,
		},
		DialTimeout: config.DialTimeout,
		Debug:       config.Debug,
	})
	if err != nil {
		return nil, ErrConnection(err)
	}

	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, ErrConnection(err)
	}

	sink := &clickhouseSink{
		config:      config,
		logger:      log,
		conn:        conn,
		rows:        chanx.NewUnboundedChan[row](ctx, config.FlushSize),
		flushTicker: time.NewTicker(config.FlushInterval),
		done:        make(chan struct{}),
	}

	log.Info("analytics sink initialized",
		zap.Strings("hosts", config.Hosts),
		zap.String("database", config.Database),
		zap.Duration("flush_interval", config.FlushInterval),
		zap.Int("flush_size", config.FlushSize),
	)

	return sink, nil
}

func (s *clickhouseSink) Start() error {
	s.wg.Add(1)
	go s.processLoop()

	s.logger.Info("analytics sink started")
	return nil
}

func (s *clickhouseSink) RecordCompleted(ctx context.Context, eventType string, e checkout.CompletedEvent) error {
	if s.closed.Load() {
		return ErrSinkClosed
	}

	r := row{
		EventType:     eventType,
		SessionID:     e.SessionID,
		CustomerEmail: e.CustomerEmail,
		AmountTotal:   e.AmountTotal,
		Currency:      e.Currency,
		OccurredAt:    e.CompletedAt,
	}

	select {
	case s.rows.In <- r:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *clickhouseSink) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	s.flushTicker.Stop()
	close(s.done)
	// Closing In lets the channel drain its internal buffer into Out and
	// then close it, so the process loop sees every accepted row before it
	// does the final flush.
	close(s.rows.In)
	s.wg.Wait()

	if err := s.conn.Close(); err != nil {
		return ErrConnection(err)
	}

	s.logger.Info("analytics sink shutdown complete")
	return nil
}

// processLoop batches rows and flushes them on size or interval
func (s *clickhouseSink) processLoop() {
	defer s.wg.Done()

	batch := make([]row, 0, s.config.FlushSize)

	for {
		select {
		case r, ok := <-s.rows.Out:
			if !ok {
				s.flush(batch)
				return
			}
			batch = append(batch, r)
			if len(batch) >= s.config.FlushSize {
				s.flush(batch)
				batch = batch[:0]
			}
		case <-s.flushTicker.C:
			if len(batch) > 0 {
				s.flush(batch)
				batch = batch[:0]
			}
		case <-s.done:
			// In is closed together with done, so Out delivers every row
			// still buffered and then closes. Receive until then; a plain
			// empty-channel check here would race the channel's internal
			// buffering and drop accepted rows.
			for r := range s.rows.Out {
				batch = append(batch, r)
				if len(batch) >= s.config.FlushSize {
					s.flush(batch)
					batch = batch[:0]
				}
			}
			s.flush(batch)
			return
		}
	}
}

func (s *clickhouseSink) flush(batch []row) {
	if len(batch) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.config.InsertTimeout)
	defer cancel()

	insert := fmt.Sprintf(
		"INSERT INTO %s (event_type, session_id, customer_email, amount_total, currency, occurred_at)",
		s.config.Table,
	)
	b, err := s.conn.PrepareBatch(ctx, insert)
	if err != nil {
		s.logger.Error("failed to prepare batch",
			zap.String("table", s.config.Table),
			zap.Int("rows", len(batch)),
			zap.Error(err),
		)
		return
	}

	for _, r := range batch {
		if err := b.Append(r.EventType, r.SessionID, r.CustomerEmail, r.AmountTotal, r.Currency, r.OccurredAt); err != nil {
			s.logger.Error("failed to append row", zap.Error(err))
			return
		}
	}

	if err := b.Send(); err != nil {
		s.logger.Error("failed to insert batch",
			zap.String("table", s.config.Table),
			zap.Int("rows", len(batch)),
			zap.Error(err),
		)
		return
	}

	s.logger.Debug("batch inserted",
		zap.String("table", s.config.Table),
		zap.Int("rows", len(batch)),
	)
}
