package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/meridian-pos/meridian-pos/internal/jobs"
	"github.com/meridian-pos/meridian-pos/internal/shops"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

const (
	// TaskShopSync pulls the shop roster from the back-office system and
	// upserts it, provisioning accounts for shops seen for the first time.
	TaskShopSync = "shops:sync"
)

// ShopSyncPayload configures the roster date. An empty date resolves to the
// current business day when the task runs.
type ShopSyncPayload struct {
	Date string `json:"date"`
}

// ShopSyncJob coordinates the nightly roster synchronisation.
type ShopSyncJob struct {
	Syncer  *shops.Syncer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewShopSyncJob constructs the job handler.
func NewShopSyncJob(syncer *shops.Syncer, logger *slog.Logger, metrics *jobmetrics.Metrics) *ShopSyncJob {
	return &ShopSyncJob{
		Syncer:  syncer,
		Logger:  logger,
		Metrics: metrics,
		clock:   time.Now,
	}
}

// NewShopSyncTask creates an Asynq task for the roster sync.
func NewShopSyncTask(date string) (*asynq.Task, error) {
	body, err := json.Marshal(ShopSyncPayload{Date: date})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskShopSync, body, asynq.Queue(QueueDefault)), nil
}

// Handle executes the roster sync job.
func (j *ShopSyncJob) Handle(ctx context.Context, task *asynq.Task) error {
	if j == nil || j.Syncer == nil {
		return errors.New("shop sync: dependencies not configured")
	}
	var payload ShopSyncPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskShopSync)
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
	result, err := j.Syncer.Sync(ctx, date)
	if err != nil {
		resultErr = err
		j.log().Error("sync shops", slog.String("date", date.Format(DateLayout)), slog.Any("error", err))
		return resultErr
	}

	j.log().Info("synced shops",
		slog.String("date", date.Format(DateLayout)),
		slog.Int("total", result.Total),
		slog.Int("provisioned", result.Provisioned),
		slog.Int("batches", result.Batches),
		slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *ShopSyncJob) metrics() *jobmetrics.Metrics {
	if j != nil && j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *ShopSyncJob) log() *slog.Logger {
	if j != nil && j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskShopSync))
	}
	return slog.Default().With(slog.String("job", TaskShopSync))
}

func (j *ShopSyncJob) now() time.Time {
	if j != nil && j.clock != nil {
		return j.clock()
	}
	return time.Now()
}

// WithClock overrides the internal clock for deterministic tests.
func (j *ShopSyncJob) WithClock(clock func() time.Time) {
	if j != nil && clock != nil {
		j.clock = clock
	}
}
