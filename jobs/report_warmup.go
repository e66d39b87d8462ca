package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/atlas-ops/atlas-erp/internal/finance"
	jobmetrics "github.com/atlas-ops/atlas-erp/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// TaskReportWarmup pre-populates the report caches so first viewers of the
// day hit Redis instead of eight ledger queries.
const TaskReportWarmup = "finance:report_warmup"

// ReportWarmupPayload controls how many trailing months get warmed.
type ReportWarmupPayload struct {
	Months int `json:"months"`
}

// NewReportWarmupTask constructs an Asynq task for report warmup.
func NewReportWarmupTask(months int) (*asynq.Task, error) {
	data, err := json.Marshal(ReportWarmupPayload{Months: months})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportWarmup, data), nil
}

// ReportWarmupJob builds balance sheets and insights for recent periods,
// leaving them behind in the versioned cache.
type ReportWarmupJob struct {
	Finance *finance.Service
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewReportWarmupJob wires dependencies for the warmup handler.
func NewReportWarmupJob(financeSvc *finance.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportWarmupJob {
	return &ReportWarmupJob{
		Finance: financeSvc,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes report warmup tasks.
func (j *ReportWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Finance == nil {
		return errors.New("report warmup: handler not configured")
	}
	var payload ReportWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Months <= 0 {
		payload.Months = 3
	}

	tracker := j.metrics().Track(TaskReportWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.Int("months", payload.Months))
	logger.Info("starting report warmup")

	start := j.now()
	warmed := 0
	for i := 0; i < payload.Months; i++ {
		period := start.AddDate(0, -i, 0)
		if err := j.warmPeriod(ctx, period.Year(), period.Month()); err != nil {
			resultErr = err
			logger.Error("warm period", slog.String("period", period.Format("2006-01")), slog.Any("error", err))
			return resultErr
		}
		warmed++
	}

	logger.Info("completed report warmup", slog.Int("periods", warmed), slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *ReportWarmupJob) warmPeriod(ctx context.Context, year int, month time.Month) error {
	periodCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	if _, err := j.Finance.BalanceSheet(periodCtx, year, month); err != nil {
		return err
	}
	if _, err := j.Finance.MonthInsights(periodCtx, year, month); err != nil {
		return err
	}
	return nil
}

func (j *ReportWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskReportWarmup))
	}
	return slog.Default().With(slog.String("job", TaskReportWarmup))
}

func (j *ReportWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *ReportWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
