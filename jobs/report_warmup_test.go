package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/atlas-ops/atlas-erp/internal/jobs"
)

func TestReportWarmupSkipsBadPayload(t *testing.T) {
	job := NewReportWarmupJob(newLedgerService(&stubLedger{}), nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	err := job.Handle(context.Background(), asynq.NewTask(TaskReportWarmup, []byte("{not json")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestReportWarmupWarmsTrailingMonths(t *testing.T) {
	repo := &stubLedger{}
	job := NewReportWarmupJob(newLedgerService(repo), nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))
	job.clock = fixedClock(time.Date(2026, time.March, 15, 1, 15, 0, 0, time.UTC))

	task, err := NewReportWarmupTask(3)
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	// Each warmed period derives its insights once, walking backwards from
	// the current month.
	assert.Equal(t, []string{"2026-03", "2026-02", "2026-01"}, repo.months())
}

func TestReportWarmupDefaultsMonths(t *testing.T) {
	repo := &stubLedger{}
	job := NewReportWarmupJob(newLedgerService(repo), nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))
	job.clock = fixedClock(time.Date(2026, time.January, 31, 1, 15, 0, 0, time.UTC))

	task, err := NewReportWarmupTask(0)
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	assert.Len(t, repo.months(), 3)
}

func TestReportWarmupRecordsRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	job := NewReportWarmupJob(newLedgerService(&stubLedger{}), nil, jobmetrics.NewMetrics(reg))
	job.clock = fixedClock(time.Date(2026, time.March, 15, 1, 15, 0, 0, time.UTC))

	task, err := NewReportWarmupTask(1)
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	runs := counterValue(t, reg, "atlas_jobs_total", map[string]string{"job": TaskReportWarmup, "status": "success"})
	assert.Equal(t, 1.0, runs)
}
