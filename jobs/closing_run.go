package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/meridian-pos/meridian-pos/internal/closing"
	jobmetrics "github.com/meridian-pos/meridian-pos/internal/jobs"
)

const (
	// TaskClosingRun builds one shop's daily closing report and ships it.
	TaskClosingRun = "closing:run"
)

// ClosingRunPayload names the shop and business day to close. An empty date
// resolves to the current business day when the task runs.
type ClosingRunPayload struct {
	ShopCode string `json:"shop_code"`
	Date     string `json:"date"`
}

// ClosingService describes the behaviour required to run a daily closing.
type ClosingService interface {
	Run(ctx context.Context, shopCode string, date time.Time) (closing.Report, error)
}

// ClosingRunJob coordinates the closing workflow for one shop and day.
type ClosingRunJob struct {
	Service ClosingService
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewClosingRunJob constructs the job handler.
func NewClosingRunJob(service ClosingService, logger *slog.Logger, metrics *jobmetrics.Metrics) *ClosingRunJob {
	return &ClosingRunJob{
		Service: service,
		Logger:  logger,
		Metrics: metrics,
		clock:   time.Now,
	}
}

// NewClosingRunTask creates an Asynq task for a shop's daily closing.
func NewClosingRunTask(shopCode, date string) (*asynq.Task, error) {
	body, err := json.Marshal(ClosingRunPayload{ShopCode: shopCode, Date: date})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskClosingRun, body, asynq.Queue(QueueDefault)), nil
}

// Handle executes the closing job.
func (j *ClosingRunJob) Handle(ctx context.Context, task *asynq.Task) error {
	if j == nil || j.Service == nil {
		return errors.New("closing run: dependencies not configured")
	}
	var payload ClosingRunPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.ShopCode == "" {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskClosingRun)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	date, err := resolveDate(payload.Date, 0, j.now)
	if err != nil {
		j.log().Error("resolve date", slog.String("date", payload.Date), slog.Any("error", err))
		return asynq.SkipRetry
	}

	start := j.now()
	report, err := j.Service.Run(ctx, payload.ShopCode, date)
	if err != nil {
		if errors.Is(err, closing.ErrNoSession) {
			j.log().Warn("no register session",
				slog.String("shop", payload.ShopCode),
				slog.String("date", date.Format(DateLayout)))
			return asynq.SkipRetry
		}
		resultErr = err
		j.log().Error("run closing",
			slog.String("shop", payload.ShopCode),
			slog.String("date", date.Format(DateLayout)),
			slog.Any("error", err))
		return resultErr
	}

	j.log().Info("closed day",
		slog.String("shop", payload.ShopCode),
		slog.String("date", date.Format(DateLayout)),
		slog.String("report_id", report.ID),
		slog.Int("sales", report.SaleCount),
		slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *ClosingRunJob) metrics() *jobmetrics.Metrics {
	if j != nil && j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *ClosingRunJob) log() *slog.Logger {
	if j != nil && j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskClosingRun))
	}
	return slog.Default().With(slog.String("job", TaskClosingRun))
}

func (j *ClosingRunJob) now() time.Time {
	if j != nil && j.clock != nil {
		return j.clock()
	}
	return time.Now()
}

// WithClock overrides the internal clock for deterministic tests.
func (j *ClosingRunJob) WithClock(clock func() time.Time) {
	if j != nil && clock != nil {
		j.clock = clock
	}
}
