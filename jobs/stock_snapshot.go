package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/meridian-pos/meridian-pos/internal/jobs"
)

const (
	// TaskStockSnapshot archives live stock quantities under a month label.
	TaskStockSnapshot = "stocks:snapshot"
)

// StockSnapshotPayload configures the archive month. An empty month resolves
// to the month just opened, which makes the day-one run capture that month's
// opening baseline.
type StockSnapshotPayload struct {
	Month string `json:"month"`
}

// SnapshotService describes the behaviour required to archive stock.
type SnapshotService interface {
	SnapshotMonth(ctx context.Context, month time.Time) (int, error)
}

// StockSnapshotJob coordinates the monthly archive run.
type StockSnapshotJob struct {
	Service SnapshotService
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewStockSnapshotJob constructs the job handler.
func NewStockSnapshotJob(service SnapshotService, logger *slog.Logger, metrics *jobmetrics.Metrics) *StockSnapshotJob {
	return &StockSnapshotJob{
		Service: service,
		Logger:  logger,
		Metrics: metrics,
		clock:   time.Now,
	}
}

// NewStockSnapshotTask creates an Asynq task for the monthly archive.
func NewStockSnapshotTask(month string) (*asynq.Task, error) {
	body, err := json.Marshal(StockSnapshotPayload{Month: month})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStockSnapshot, body, asynq.Queue(QueueDefault)), nil
}

// Handle executes the snapshot job. The archive write overwrites, so a retry
// for the same month is safe.
func (j *StockSnapshotJob) Handle(ctx context.Context, task *asynq.Task) error {
	if j == nil || j.Service == nil {
		return errors.New("stock snapshot: dependencies not configured")
	}
	var payload StockSnapshotPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskStockSnapshot)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	month, err := resolveMonth(payload.Month, j.now)
	if err != nil {
		j.log().Error("resolve month", slog.String("month", payload.Month), slog.Any("error", err))
		return asynq.SkipRetry
	}

	start := j.now()
	archived, err := j.Service.SnapshotMonth(ctx, month)
	if err != nil {
		resultErr = err
		j.log().Error("archive stock", slog.String("month", month.Format(MonthLayout)), slog.Any("error", err))
		return resultErr
	}

	j.log().Info("archived stock",
		slog.String("month", month.Format(MonthLayout)),
		slog.Int("rows", archived),
		slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *StockSnapshotJob) metrics() *jobmetrics.Metrics {
	if j != nil && j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *StockSnapshotJob) log() *slog.Logger {
	if j != nil && j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskStockSnapshot))
	}
	return slog.Default().With(slog.String("job", TaskStockSnapshot))
}

func (j *StockSnapshotJob) now() time.Time {
	if j != nil && j.clock != nil {
		return j.clock()
	}
	return time.Now()
}

// WithClock overrides the internal clock for deterministic tests.
func (j *StockSnapshotJob) WithClock(clock func() time.Time) {
	if j != nil && clock != nil {
		j.clock = clock
	}
}
