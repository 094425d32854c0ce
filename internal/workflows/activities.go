package workflows

import (
	"context"
	"fmt"

	"github.com/samirrijal/lankide/internal/core/usecases"
	"github.com/samirrijal/lankide/internal/pkg/metrics"
)

// PayrollActivities holds the activity implementations for the payroll workflow.
type PayrollActivities struct {
	Payroll *usecases.PayrollService
}

// ComputePeriod builds and stores the slips for a run, returning the count.
func (a *PayrollActivities) ComputePeriod(ctx context.Context, runID, period string) (int, error) {
	n, err := a.Payroll.ComputePeriod(ctx, runID, period)
	if err != nil {
		return 0, fmt.Errorf("compute period %s: %w", period, err)
	}
	return n, nil
}

// FinishRun stamps the run's final status.
func (a *PayrollActivities) FinishRun(ctx context.Context, runID, status string) error {
	if err := a.Payroll.FinishRun(ctx, runID, status); err != nil {
		return fmt.Errorf("finish run %s: %w", runID, err)
	}
	metrics.PayrollRunsCompleted.WithLabelValues(status).Inc()
	return nil
}

// NotifyPayslips creates a payslip notification for every employee in the run.
func (a *PayrollActivities) NotifyPayslips(ctx context.Context, runID string) error {
	if err := a.Payroll.NotifyPayslips(ctx, runID); err != nil {
		return fmt.Errorf("notify payslips for run %s: %w", runID, err)
	}
	return nil
}
