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
	// TaskCostRecompute folds one day's purchases into every affected
	// product's moving-average cost.
	TaskCostRecompute = "costing:recompute"
)

// CostRecomputePayload configures the purchase day. An empty date resolves to
// the previous business day when the task runs.
type CostRecomputePayload struct {
	Date string `json:"date"`
}

// CostingService describes the behaviour required to revise average costs.
type CostingService interface {
	RecomputeForDate(ctx context.Context, date time.Time) (int, error)
}

// CostRecomputeJob coordinates the nightly average-cost pass.
type CostRecomputeJob struct {
	Service CostingService
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewCostRecomputeJob constructs the job handler.
func NewCostRecomputeJob(service CostingService, logger *slog.Logger, metrics *jobmetrics.Metrics) *CostRecomputeJob {
	return &CostRecomputeJob{
		Service: service,
		Logger:  logger,
		Metrics: metrics,
		clock:   time.Now,
	}
}

// NewCostRecomputeTask creates an Asynq task for the average-cost pass.
func NewCostRecomputeTask(date string) (*asynq.Task, error) {
	body, err := json.Marshal(CostRecomputePayload{Date: date})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCostRecompute, body, asynq.Queue(QueueDefault)), nil
}

// Handle executes the average-cost job. Re-running it for a date whose
// purchases were already folded in revises the average again, so retries are
// limited to payload decode failures upstream.
func (j *CostRecomputeJob) Handle(ctx context.Context, task *asynq.Task) error {
	if j == nil || j.Service == nil {
		return errors.New("cost recompute: dependencies not configured")
	}
	var payload CostRecomputePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskCostRecompute)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	date, err := resolveDate(payload.Date, -1, j.now)
	if err != nil {
		j.log().Error("resolve date", slog.String("date", payload.Date), slog.Any("error", err))
		return asynq.SkipRetry
	}

	start := j.now()
	updated, err := j.Service.RecomputeForDate(ctx, date)
	if err != nil {
		resultErr = err
		j.log().Error("recompute average cost", slog.String("date", date.Format(DateLayout)), slog.Any("error", err))
		return resultErr
	}

	j.log().Info("recomputed average cost",
		slog.String("date", date.Format(DateLayout)),
		slog.Int("products", updated),
		slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *CostRecomputeJob) metrics() *jobmetrics.Metrics {
	if j != nil && j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *CostRecomputeJob) log() *slog.Logger {
	if j != nil && j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskCostRecompute))
	}
	return slog.Default().With(slog.String("job", TaskCostRecompute))
}

func (j *CostRecomputeJob) now() time.Time {
	if j != nil && j.clock != nil {
		return j.clock()
	}
	return time.Now()
}

// WithClock overrides the internal clock for deterministic tests.
func (j *CostRecomputeJob) WithClock(clock func() time.Time) {
	if j != nil && clock != nil {
		j.clock = clock
	}
}
