package analytics

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/flowlet/billingkit/checkout"
	"github.com/flowlet/billingkit/logger"
	"github.com/shopspring/decimal"
	"github.com/smallnest/chanx"
)

// fakeConn captures batch inserts in memory. Methods the sink never calls
// come from the embedded interface and stay unimplemented.
type fakeConn struct {
	driver.Conn

	mu      sync.Mutex
	rows    [][]any
	batches int
}

func (c *fakeConn) PrepareBatch(ctx context.Context, query string, opts ...driver.PrepareBatchOption) (driver.Batch, error) {
	return &fakeBatch{conn: c}, nil
}

func (c *fakeConn) Close() error {
	return nil
}

func (c *fakeConn) inserted() [][]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]any(nil), c.rows...)
}

type fakeBatch struct {
	driver.Batch

	conn *fakeConn
	rows [][]any
}

func (b *fakeBatch) Append(v ...any) error {
	b.rows = append(b.rows, v)
	return nil
}

func (b *fakeBatch) Send() error {
	b.conn.mu.Lock()
	defer b.conn.mu.Unlock()
	b.conn.rows = append(b.conn.rows, b.rows...)
	b.conn.batches++
	return nil
}

// newTestSink builds a sink around a fake connection, bypassing the
// connect-and-ping of NewSink.
func newTestSink(conn driver.Conn, config *Config) *clickhouseSink {
	if config == nil {
		config = DefaultConfig()
	} else {
		config = config.MergeDefaults()
	}
	return &clickhouseSink{
		config:      config,
		logger:      logger.NewNop(),
		conn:        conn,
		rows:        chanx.NewUnboundedChan[row](context.Background(), config.FlushSize),
		flushTicker: time.NewTicker(config.FlushInterval),
		done:        make(chan struct{}),
	}
}

func completedEvent(n int) checkout.CompletedEvent {
	return checkout.CompletedEvent{
		SessionID:     fmt.Sprintf("cs_test_%d", n),
		CustomerEmail: "buyer@example.com",
		AmountTotal:   decimal.NewFromInt(500),
		Currency:      "usd",
		CompletedAt:   time.Unix(1700000000, 0),
	}
}

func TestSink_CloseFlushesAcceptedRows(t *testing.T) {
	conn := &fakeConn{}
	// Large flush size and long interval so only the shutdown path can
	// flush what we record.
	sink := newTestSink(conn, &Config{
		Hosts:         []string{"test"},
		Username:      "u",
		Password:      "p",
		FlushSize:     100,
		FlushInterval: time.Hour,
	})

	if err := sink.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	const recorded = 5
	for i := 0; i < recorded; i++ {
		if err := sink.RecordCompleted(context.Background(), "checkout.session.completed", completedEvent(i)); err != nil {
			t.Fatalf("RecordCompleted(%d) error = %v", i, err)
		}
	}

	// Close immediately: rows may still sit in the channel's internal
	// buffer, and every one of them must reach the final flush.
	if err := sink.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	got := conn.inserted()
	if len(got) != recorded {
		t.Fatalf("inserted %d rows, want %d", len(got), recorded)
	}
	if got[0][1] != "cs_test_0" {
		t.Fatalf("first row session id = %v, want cs_test_0", got[0][1])
	}
	if got[recorded-1][1] != fmt.Sprintf("cs_test_%d", recorded-1) {
		t.Fatalf("last row session id = %v", got[recorded-1][1])
	}
}

func TestSink_FlushOnBatchSize(t *testing.T) {
	conn := &fakeConn{}
	sink := newTestSink(conn, &Config{
		Hosts:         []string{"test"},
		Username:      "u",
		Password:      "p",
		FlushSize:     2,
		FlushInterval: time.Hour,
	})

	if err := sink.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer sink.Close()

	for i := 0; i < 2; i++ {
		if err := sink.RecordCompleted(context.Background(), "checkout.session.completed", completedEvent(i)); err != nil {
			t.Fatalf("RecordCompleted(%d) error = %v", i, err)
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if len(conn.inserted()) >= 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("batch not flushed within deadline, inserted %d rows", len(conn.inserted()))
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSink_RecordAfterCloseRejected(t *testing.T) {
	conn := &fakeConn{}
	sink := newTestSink(conn, &Config{
		Hosts:    []string{"test"},
		Username: "u",
		Password: "p",
	})

	if err := sink.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}

	err := sink.RecordCompleted(context.Background(), "checkout.session.completed", completedEvent(0))
	if err != ErrSinkClosed {
		t.Fatalf("RecordCompleted after Close error = %v, want %v", err, ErrSinkClosed)
	}
}
