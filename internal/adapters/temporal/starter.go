// Package temporal starts payroll workflows on a Temporal cluster.
package temporal

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/client"

	"github.com/samirrijal/lankide/internal/workflows"
)

// Starter launches payroll workflows. It implements ports.PayrollStarter.
type Starter struct {
	client    client.Client
	taskQueue string
}

// NewStarter dials the Temporal cluster.
func NewStarter(hostPort, namespace, taskQueue string) (*Starter, error) {
	c, err := client.Dial(client.Options{
		HostPort:  hostPort,
		Namespace: namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("temporal dial %s: %w", hostPort, err)
	}
	return &Starter{client: c, taskQueue: taskQueue}, nil
}

// StartPayrollRun launches the payroll workflow for one run. The workflow ID
// is derived from the run ID so duplicate starts are rejected by Temporal.
func (s *Starter) StartPayrollRun(ctx context.Context, runID, period, startedBy string) error {
	opts := client.StartWorkflowOptions{
		ID:        "payroll-" + runID,
		TaskQueue: s.taskQueue,
	}
	_, err := s.client.ExecuteWorkflow(ctx, opts, workflows.PayrollWorkflow, workflows.PayrollInput{
		RunID:     runID,
		Period:    period,
		StartedBy: startedBy,
	})
	if err != nil {
		return fmt.Errorf("start payroll workflow for run %s: %w", runID, err)
	}
	return nil
}

// Close releases the Temporal client.
func (s *Starter) Close() {
	s.client.Close()
}
