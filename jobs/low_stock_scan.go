package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/catalogd/catalogd/internal/jobs"
)

// LowStockScanJob walks the product table and logs every product whose stock
// sits below the threshold. The log lines feed the alerting pipeline.
type LowStockScanJob struct {
	Pool    *pgxpool.Pool
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewLowStockScanJob wires dependencies for the scan handler.
func NewLowStockScanJob(pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) *LowStockScanJob {
	return &LowStockScanJob{
		Pool:    pool,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes low-stock scan tasks.
func (j *LowStockScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Pool == nil {
		return errors.New("low stock scan: handler not configured")
	}
	var payload LowStockScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Threshold <= 0 {
		payload.Threshold = 10
	}

	tracker := j.metrics().Track(TaskLowStockScan)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.Int("threshold", payload.Threshold))
	start := j.now()
	logger.Info("starting low stock scan")

	rows, err := j.Pool.Query(ctx, `SELECT id, name, stock_quantity FROM products WHERE stock_quantity < $1 ORDER BY stock_quantity ASC, id ASC`, payload.Threshold)
	if err != nil {
		resultErr = err
		logger.Error("query low stock", slog.Any("error", err))
		return resultErr
	}
	defer rows.Close()

	flagged := 0
	for rows.Next() {
		var id int64
		var name string
		var stock int
		if err := rows.Scan(&id, &name, &stock); err != nil {
			resultErr = err
			logger.Error("scan low stock row", slog.Any("error", err))
			return resultErr
		}
		logger.Warn("low stock product",
			slog.Int64("product_id", id),
			slog.String("name", name),
			slog.Int("stock_quantity", stock),
		)
		flagged++
	}
	if err := rows.Err(); err != nil {
		resultErr = err
		return resultErr
	}

	j.metrics().AddLowStock(flagged)
	logger.Info("completed low stock scan", slog.Int("flagged", flagged), slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *LowStockScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskLowStockScan))
	}
	return slog.Default().With(slog.String("job", TaskLowStockScan))
}

func (j *LowStockScanJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *LowStockScanJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
