package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/atlas-ops/atlas-erp/internal/finance"
	jobmetrics "github.com/atlas-ops/atlas-erp/internal/jobs"
	"github.com/atlas-ops/atlas-erp/internal/notify"
)

// TaskBalanceAlert checks the current-period balance sheet and mails the
// finance team when assets drift from liabilities plus equity.
const TaskBalanceAlert = "finance:balance_alert"

// BalanceAlertPayload lists the addresses that receive the alert.
type BalanceAlertPayload struct {
	Recipients []string `json:"recipients"`
}

// NewBalanceAlertTask constructs an Asynq task for the balance check.
func NewBalanceAlertTask(recipients []string) (*asynq.Task, error) {
	data, err := json.Marshal(BalanceAlertPayload{Recipients: recipients})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBalanceAlert, data), nil
}

// BalanceAlertJob inspects the current balance sheet for drift.
type BalanceAlertJob struct {
	Finance *finance.Service
	Mailer  notify.Mailer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewBalanceAlertJob wires dependencies for the alert handler.
func NewBalanceAlertJob(financeSvc *finance.Service, mailer notify.Mailer, logger *slog.Logger, metrics *jobmetrics.Metrics) *BalanceAlertJob {
	return &BalanceAlertJob{
		Finance: financeSvc,
		Mailer:  mailer,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes balance alert tasks.
func (j *BalanceAlertJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Finance == nil {
		return errors.New("balance alert: handler not configured")
	}
	var payload BalanceAlertPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskBalanceAlert)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	now := j.now()
	logger := j.logger().With(slog.String("period", now.Format("2006-01")))

	sheet, err := j.Finance.BalanceSheet(ctx, now.Year(), now.Month())
	if err != nil {
		resultErr = err
		logger.Error("load balance sheet", slog.Any("error", err))
		return resultErr
	}

	if sheet.Balanced {
		logger.Info("balance sheet in balance")
		return resultErr
	}

	period := finance.PeriodMonth(sheet.Year, sheet.Month)
	j.metrics().AddUnbalanced(period, 1)
	logger.Warn("balance sheet out of balance",
		slog.String("delta", sheet.Delta.String()),
		slog.String("total_assets", sheet.TotalAssets.String()),
		slog.String("total_liabilities_and_equity", sheet.TotalLiabilitiesAndEquity.String()),
	)

	if j.Mailer == nil || len(payload.Recipients) == 0 {
		return resultErr
	}

	ref := uuid.NewString()
	subject := fmt.Sprintf("[Atlas] Balance sheet out of balance for %s", period)
	body := j.renderBody(sheet, period, ref)
	for _, to := range payload.Recipients {
		to = strings.TrimSpace(to)
		if to == "" {
			continue
		}
		if err := j.Mailer.Send(ctx, notify.Payload{To: []string{to}, Subject: subject, Body: body}); err != nil {
			resultErr = err
			logger.Error("send alert", slog.String("to", to), slog.String("ref", ref), slog.Any("error", err))
			return resultErr
		}
	}
	logger.Info("alert delivered", slog.Int("recipients", len(payload.Recipients)), slog.String("ref", ref))
	return resultErr
}

func (j *BalanceAlertJob) renderBody(sheet finance.BalanceSheet, period, ref string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The balance sheet for %s does not balance.\n\n", period)
	fmt.Fprintf(&b, "Total assets:                 %s\n", finance.FormatIDR(sheet.TotalAssets))
	fmt.Fprintf(&b, "Total liabilities and equity: %s\n", finance.FormatIDR(sheet.TotalLiabilitiesAndEquity))
	fmt.Fprintf(&b, "Difference:                   %s\n\n", finance.FormatIDR(sheet.Delta))
	b.WriteString("Review recent ledger entries and manual balance items for the period.\n")
	fmt.Fprintf(&b, "Reference: %s\n", ref)
	return b.String()
}

func (j *BalanceAlertJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskBalanceAlert))
	}
	return slog.Default().With(slog.String("job", TaskBalanceAlert))
}

func (j *BalanceAlertJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *BalanceAlertJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
