// The payroll worker hosts the Temporal workflow and activities that compute
// monthly payroll runs started from the API.
package main

import (
	"context"
	"log"
	"os"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/samirrijal/lankide/internal/adapters/postgres"
	"github.com/samirrijal/lankide/internal/core/usecases"
	"github.com/samirrijal/lankide/internal/pkg/config"
	"github.com/samirrijal/lankide/internal/pkg/logging"
	"github.com/samirrijal/lankide/internal/workflows"
)

func main() {
	cfg, err := config.Load("lankide-payrollworker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("lankide-payrollworker", logLevel, "json")

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	scheduleSvc := usecases.NewScheduleService(postgres.NewScheduleRepo(db), nil, cfg.HR.Timezone, cfg.HR.GraceMinutes)

	// starter is nil: the worker computes runs, it never launches them.
	payrollSvc := usecases.NewPayrollService(
		postgres.NewPayrollRepo(db),
		postgres.NewEmployeeRepo(db),
		postgres.NewAttendanceRepo(db),
		postgres.NewRequestRepo(db),
		scheduleSvc,
		postgres.NewHolidayRepo(db),
		postgres.NewNotificationRepo(db),
		nil,
		usecases.PayrollRates{
			WorkingHoursPerDay:  cfg.Payroll.WorkingHoursPerDay,
			WorkingDaysPerMonth: cfg.Payroll.WorkingDaysPerMonth,
			OvertimeMultiplier:  cfg.Payroll.OvertimeMultiplier,
			LateDeduction:       cfg.Payroll.LateDeduction,
		},
	)

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.PayrollWorkflow)
	w.RegisterActivity(&workflows.PayrollActivities{Payroll: payrollSvc})

	log.Printf("payroll worker started on task queue %q", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
