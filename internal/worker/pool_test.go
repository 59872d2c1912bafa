package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/pitwall/strategy-api/internal/models"
)

type mockConn struct {
	driver.Conn
	mu   sync.Mutex
	rows int
	sent int
}

func (m *mockConn) PrepareBatch(ctx context.Context, query string, opts ...driver.PrepareBatchOption) (driver.Batch, error) {
	return &mockBatch{conn: m}, nil
}

func (m *mockConn) counts() (rows, sent int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows, m.sent
}

type mockBatch struct {
	driver.Batch
	conn *mockConn
}

func (b *mockBatch) Append(v ...interface{}) error {
	b.conn.mu.Lock()
	b.conn.rows++
	b.conn.mu.Unlock()
	return nil
}

func (b *mockBatch) Send() error {
	b.conn.mu.Lock()
	b.conn.sent++
	b.conn.mu.Unlock()
	return nil
}

func testLap(n int) models.Lap {
	return models.Lap{SessionKey: 9001, DriverNumber: 44, LapNumber: n, LapDuration: 90.5}
}

func TestPoolFlushesOnStop(t *testing.T) {
	conn := &mockConn{}
	p := NewPool(PoolConfig{
		WorkerCount:   2,
		QueueSize:     100,
		BatchSize:     50,
		FlushInterval: time.Hour, // force flush via Stop, not ticker
		ClickHouse:    conn,
		Logger:        zap.NewNop(),
	})
	p.Start(context.Background())

	for i := 1; i <= 10; i++ {
		if !p.Enqueue(testLap(i)) {
			t.Fatalf("enqueue %d rejected", i)
		}
	}
	p.Stop()

	rows, sent := conn.counts()
	if rows != 10 {
		t.Errorf("wrote %d rows, want 10", rows)
	}
	if sent == 0 {
		t.Error("no batch was sent")
	}
}

func TestPoolFlushesOnBatchSize(t *testing.T) {
	conn := &mockConn{}
	p := NewPool(PoolConfig{
		WorkerCount:   1,
		QueueSize:     100,
		BatchSize:     5,
		FlushInterval: time.Hour,
		ClickHouse:    conn,
		Logger:        zap.NewNop(),
	})
	p.Start(context.Background())

	for i := 1; i <= 5; i++ {
		p.Enqueue(testLap(i))
	}
	// Wait for the single worker to drain the batch.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, sent := conn.counts(); sent > 0 || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	p.Stop()

	rows, sent := conn.counts()
	if rows != 5 || sent == 0 {
		t.Errorf("rows = %d sent = %d, want 5 rows in at least one batch", rows, sent)
	}
}

func TestPoolLoadShedding(t *testing.T) {
	conn := &mockConn{}
	p := NewPool(PoolConfig{
		WorkerCount:   1,
		QueueSize:     2,
		BatchSize:     100,
		FlushInterval: time.Hour,
		ClickHouse:    conn,
		Logger:        zap.NewNop(),
	})
	// Not started: nothing drains the queue, so the third enqueue must shed.
	if !p.Enqueue(testLap(1)) || !p.Enqueue(testLap(2)) {
		t.Fatal("queue rejected laps below capacity")
	}
	if p.Enqueue(testLap(3)) {
		t.Error("full queue accepted a lap instead of shedding")
	}
	if p.QueueDepth() != 2 {
		t.Errorf("queue depth = %d, want 2", p.QueueDepth())
	}
}
