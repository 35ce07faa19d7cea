package jobs

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-pos/meridian-pos/internal/closing"
	jobmetrics "github.com/meridian-pos/meridian-pos/internal/jobs"
)

// fixedClock pins the wall clock to 2026-08-31 02:00 JST.
func fixedClock() time.Time {
	return time.Date(2026, 8, 31, 2, 0, 0, 0, businessZone)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMetrics() *jobmetrics.Metrics {
	return jobmetrics.NewMetrics(prometheus.NewRegistry())
}

func TestResolveDateExplicit(t *testing.T) {
	date, err := resolveDate("2026/08/15", -1, fixedClock)
	require.NoError(t, err)
	assert.Equal(t, "2026/08/15", date.Format(DateLayout))
}

func TestResolveDateDefaultsShifted(t *testing.T) {
	date, err := resolveDate("", -1, fixedClock)
	require.NoError(t, err)
	assert.Equal(t, "2026/08/30", date.Format(DateLayout))
	assert.Equal(t, businessZone, date.Location())

	today, err := resolveDate("", 0, fixedClock)
	require.NoError(t, err)
	assert.Equal(t, "2026/08/31", today.Format(DateLayout))
}

func TestResolveDateRejectsGarbage(t *testing.T) {
	_, err := resolveDate("31-08-2026", 0, fixedClock)
	assert.Error(t, err)
}

func TestResolveMonthDefaultsToCurrent(t *testing.T) {
	month, err := resolveMonth("", fixedClock)
	require.NoError(t, err)
	assert.Equal(t, "2026/08", month.Format(MonthLayout))

	explicit, err := resolveMonth("2026/07", fixedClock)
	require.NoError(t, err)
	assert.Equal(t, "2026/07", explicit.Format(MonthLayout))
}

type recordingCosting struct {
	date    time.Time
	updated int
	err     error
}

func (r *recordingCosting) RecomputeForDate(ctx context.Context, date time.Time) (int, error) {
	r.date = date
	return r.updated, r.err
}

func TestCostRecomputeResolvesYesterday(t *testing.T) {
	svc := &recordingCosting{updated: 3}
	job := NewCostRecomputeJob(svc, testLogger(), testMetrics())
	job.WithClock(fixedClock)

	task, err := NewCostRecomputeTask("")
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, "2026/08/30", svc.date.Format(DateLayout))
}

func TestCostRecomputeBadPayloadSkipsRetry(t *testing.T) {
	job := NewCostRecomputeJob(&recordingCosting{}, testLogger(), testMetrics())
	task := asynq.NewTask(TaskCostRecompute, []byte("not json"))
	assert.ErrorIs(t, job.Handle(context.Background(), task), asynq.SkipRetry)
}

type recordingSnapshot struct {
	month time.Time
	rows  int
}

func (r *recordingSnapshot) SnapshotMonth(ctx context.Context, month time.Time) (int, error) {
	r.month = month
	return r.rows, nil
}

func TestStockSnapshotResolvesCurrentMonth(t *testing.T) {
	svc := &recordingSnapshot{rows: 12}
	job := NewStockSnapshotJob(svc, testLogger(), testMetrics())
	job.WithClock(fixedClock)

	task, err := NewStockSnapshotTask("")
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, "2026/08", svc.month.Format(MonthLayout))
}

type recordingClosing struct {
	shop string
	err  error
}

func (r *recordingClosing) Run(ctx context.Context, shopCode string, date time.Time) (closing.Report, error) {
	r.shop = shopCode
	return closing.Report{}, r.err
}

func TestClosingRunRequiresShop(t *testing.T) {
	job := NewClosingRunJob(&recordingClosing{}, testLogger(), testMetrics())
	task, err := NewClosingRunTask("", "")
	require.NoError(t, err)
	assert.ErrorIs(t, job.Handle(context.Background(), task), asynq.SkipRetry)
}

func TestClosingRunNoSessionSkipsRetry(t *testing.T) {
	svc := &recordingClosing{err: closing.ErrNoSession}
	job := NewClosingRunJob(svc, testLogger(), testMetrics())
	job.WithClock(fixedClock)

	task, err := NewClosingRunTask("S001", "2026/08/30")
	require.NoError(t, err)
	assert.ErrorIs(t, job.Handle(context.Background(), task), asynq.SkipRetry)
	assert.Equal(t, "S001", svc.shop)
}
