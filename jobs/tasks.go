package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskStatsWarmup pre-populates the admin statistics cache.
	TaskStatsWarmup = "catalog:stats_warmup"
	// TaskLowStockScan reports products below the stock threshold.
	TaskLowStockScan = "catalog:low_stock_scan"
)

// StatsWarmupPayload configures a warmup run.
type StatsWarmupPayload struct {
	Threshold int `json:"threshold"`
}

// NewStatsWarmupTask constructs an Asynq task for cache warmup.
func NewStatsWarmupTask(threshold int) (*asynq.Task, error) {
	data, err := json.Marshal(StatsWarmupPayload{Threshold: threshold})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStatsWarmup, data), nil
}

// LowStockScanPayload configures a low-stock scan run.
type LowStockScanPayload struct {
	Threshold int `json:"threshold"`
}

// NewLowStockScanTask constructs an Asynq task for the low-stock scan.
func NewLowStockScanTask(threshold int) (*asynq.Task, error) {
	data, err := json.Marshal(LowStockScanPayload{Threshold: threshold})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockScan, data), nil
}
