package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// PayrollInput is the input for the payroll run workflow.
type PayrollInput struct {
	RunID     string
	Period    string // "YYYY-MM"
	StartedBy string
}

// PayrollWorkflow computes all slips for a period, marks the run completed,
// and notifies employees about their payslips. If slip computation fails the
// run is marked failed instead of being left dangling.
func PayrollWorkflow(ctx workflow.Context, input PayrollInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting payroll workflow", "runID", input.RunID, "period", input.Period)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: compute slips for every active employee
	var slipCount int
	err := workflow.ExecuteActivity(ctx, "ComputePeriod", input.RunID, input.Period).Get(ctx, &slipCount)
	if err != nil {
		logger.Warn("slip computation failed, marking run failed", "error", err)
		_ = workflow.ExecuteActivity(ctx, "FinishRun", input.RunID, "failed").Get(ctx, nil)
		return err
	}

	// Step 2: mark the run completed
	if err := workflow.ExecuteActivity(ctx, "FinishRun", input.RunID, "completed").Get(ctx, nil); err != nil {
		return err
	}

	// Step 3: payslip notifications are best effort; slips exist either way
	if err := workflow.ExecuteActivity(ctx, "NotifyPayslips", input.RunID).Get(ctx, nil); err != nil {
		logger.Warn("payslip notifications failed", "error", err)
	}

	logger.Info("Payroll run completed", "runID", input.RunID, "slips", slipCount)
	return nil
}
