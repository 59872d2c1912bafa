package handlers

import (
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pitwall/strategy-api/internal/logic"
	"github.com/pitwall/strategy-api/internal/ml"
	"github.com/pitwall/strategy-api/internal/models"
)

// MaxBodySize limits the size of request bodies to 4MB; full-session
// telemetry payloads run well past the usual 1MB.
const MaxBodySize = 4 << 20

// IngestQueue defines the interface for the lap ingest worker pool
type IngestQueue interface {
	Enqueue(lap models.Lap) bool
	QueueDepth() int
}

type Config struct {
	WorkerPool IngestQueue
	Postgres   *pgxpool.Pool
	ClickHouse driver.Conn
	Redis      *redis.Client
	Logger     *zap.Logger
	// Services
	Registry   *ml.Registry
	Training   *logic.TrainingService
	Prediction *logic.PredictionService
	Telemetry  *logic.TelemetryService
}

type Handler struct {
	pool       IngestQueue
	pg         *pgxpool.Pool
	ch         driver.Conn
	redis      *redis.Client
	logger     *zap.SugaredLogger
	validator  *validator.Validate
	registry   *ml.Registry
	training   *logic.TrainingService
	prediction *logic.PredictionService
	telemetry  *logic.TelemetryService
}

func New(cfg Config) *Handler {
	return &Handler{
		pool:       cfg.WorkerPool,
		pg:         cfg.Postgres,
		ch:         cfg.ClickHouse,
		redis:      cfg.Redis,
		logger:     cfg.Logger.Sugar(),
		validator:  validator.New(),
		registry:   cfg.Registry,
		training:   cfg.Training,
		prediction: cfg.Prediction,
		telemetry:  cfg.Telemetry,
	}
}
