package handlers

import (
	"context"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pitwall/strategy-api/internal/models"
)

// MockConn is a ClickHouse connection stub that accepts every batch.
type MockConn struct {
	driver.Conn
	Batches int
	Rows    int
}

func (m *MockConn) PrepareBatch(ctx context.Context, query string, opts ...driver.PrepareBatchOption) (driver.Batch, error) {
	m.Batches++
	return &MockBatch{conn: m}, nil
}

func (m *MockConn) Query(ctx context.Context, query string, args ...interface{}) (driver.Rows, error) {
	return &MockRows{}, nil
}

func (m *MockConn) Ping(ctx context.Context) error { return nil }

type MockBatch struct {
	driver.Batch
	conn *MockConn
}

func (b *MockBatch) Append(v ...interface{}) error {
	b.conn.Rows++
	return nil
}

func (b *MockBatch) Send() error { return nil }

type MockRows struct {
	driver.Rows
}

func (m *MockRows) Next() bool   { return false }
func (m *MockRows) Close() error { return nil }
func (m *MockRows) Err() error   { return nil }

// MockPg satisfies logic.PgPool; every query is empty, every exec succeeds.
type MockPg struct {
	ExecCalls int
}

func (m *MockPg) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}

func (m *MockPg) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return mockRow{}
}

func (m *MockPg) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	m.ExecCalls++
	return pgconn.CommandTag{}, nil
}

type mockRow struct{}

func (mockRow) Scan(dest ...any) error { return pgx.ErrNoRows }

// MockQueue is an ingest queue that records enqueued laps.
type MockQueue struct {
	Laps   []models.Lap
	Reject bool
}

func (q *MockQueue) Enqueue(lap models.Lap) bool {
	if q.Reject {
		return false
	}
	q.Laps = append(q.Laps, lap)
	return true
}

func (q *MockQueue) QueueDepth() int { return len(q.Laps) }
