// Package worker implements the buffered worker pool for async lap ingest.
// This decouples HTTP request handling from database writes, providing:
// - Backpressure handling via load shedding
// - Batch inserts for efficient ClickHouse writes
// - Graceful shutdown with flush guarantees

package worker

import (
	"context"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/pitwall/strategy-api/internal/models"
)

// Prometheus metrics
var (
	lapsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "f1_laps_ingested_total",
		Help: "Total number of lap records accepted into the queue",
	})

	lapsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "f1_laps_processed_total",
		Help: "Total number of lap records written to ClickHouse",
	})

	lapsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "f1_laps_failed_total",
		Help: "Total number of lap records that failed to write",
	})

	lapsLoadShed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "f1_laps_load_shed_total",
		Help: "Total number of lap records dropped because the queue was full",
	})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "f1_ingest_queue_depth",
		Help: "Current depth of the lap ingest queue",
	})

	batchInsertDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "f1_batch_insert_duration_seconds",
		Help:    "Duration of lap batch inserts to ClickHouse",
		Buckets: prometheus.DefBuckets,
	})
)

// PoolConfig configures the worker pool
type PoolConfig struct {
	WorkerCount   int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
	ClickHouse    driver.Conn
	Logger        *zap.Logger
}

// Pool manages a pool of workers that batch lap records into ClickHouse.
type Pool struct {
	config   PoolConfig
	jobQueue chan models.Lap
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *zap.SugaredLogger
}

// NewPool creates a new worker pool
func NewPool(cfg PoolConfig) *Pool {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 10000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}

	return &Pool{
		config:   cfg,
		jobQueue: make(chan models.Lap, cfg.QueueSize),
		logger:   cfg.Logger.Sugar(),
	}
}

// Start launches the worker goroutines
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	go p.reportQueueDepth()

	p.logger.Infow("Worker pool started",
		"workers", p.config.WorkerCount,
		"queueSize", p.config.QueueSize,
		"batchSize", p.config.BatchSize,
	)
}

// Stop gracefully shuts down the worker pool, flushing queued laps.
func (p *Pool) Stop() {
	p.logger.Info("Stopping worker pool...")
	p.cancel()
	close(p.jobQueue)
	p.wg.Wait()
	p.logger.Info("Worker pool stopped")
}

// Enqueue adds a lap to the queue. A full queue sheds the record instead of
// blocking the ingest handler.
func (p *Pool) Enqueue(lap models.Lap) bool {
	// Protect against sending on closed channel
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warnw("Failed to enqueue lap (pool stopped)", "error", r)
		}
	}()

	select {
	case p.jobQueue <- lap:
		lapsIngested.Inc()
		return true
	default:
		lapsLoadShed.Inc()
		return false
	}
}

// QueueDepth returns current queue size
func (p *Pool) QueueDepth() int {
	return len(p.jobQueue)
}

// worker processes laps from the queue in batches
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	batch := make([]models.Lap, 0, p.config.BatchSize)
	ticker := time.NewTicker(p.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		start := time.Now()
		if err := p.insertBatch(batch); err != nil {
			p.logger.Errorw("Batch insert failed",
				"worker", id,
				"batchSize", len(batch),
				"error", err,
			)
			lapsFailed.Add(float64(len(batch)))
		} else {
			lapsProcessed.Add(float64(len(batch)))
		}
		batchInsertDuration.Observe(time.Since(start).Seconds())
		batch = batch[:0]
	}

	for {
		select {
		case lap, ok := <-p.jobQueue:
			if !ok {
				flush()
				return
			}
			batch = append(batch, lap)
			if len(batch) >= p.config.BatchSize {
				flush()
			}

		case <-ticker.C:
			flush()

		case <-p.ctx.Done():
			// Drain whatever is already queued before exiting.
			for {
				select {
				case lap, ok := <-p.jobQueue:
					if !ok {
						flush()
						return
					}
					batch = append(batch, lap)
					if len(batch) >= p.config.BatchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

// insertBatch writes one batch of laps to ClickHouse.
func (p *Pool) insertBatch(batch []models.Lap) error {
	ctx := context.Background()

	chBatch, err := p.config.ClickHouse.PrepareBatch(ctx, `
		INSERT INTO f1_telemetry.laps
		(session_key, driver_number, lap_number, lap_duration,
		 duration_sector_1, duration_sector_2, duration_sector_3,
		 tyre_life, position, is_pit_out_lap)
	`)
	if err != nil {
		return err
	}
	for _, lap := range batch {
		if err := chBatch.Append(
			lap.SessionKey,
			lap.DriverNumber,
			lap.LapNumber,
			lap.LapDuration,
			lap.Sector1,
			lap.Sector2,
			lap.Sector3,
			lap.TyreLife,
			lap.Position,
			lap.IsPitOutLap,
		); err != nil {
			return err
		}
	}
	return chBatch.Send()
}

func (p *Pool) reportQueueDepth() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			queueDepth.Set(float64(len(p.jobQueue)))
		case <-p.ctx.Done():
			return
		}
	}
}
