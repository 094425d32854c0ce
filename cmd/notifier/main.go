// The notifier turns HR events into in-app notifications and closes stale
// punches. It runs as its own process so the API never blocks on fan-out.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	natsadapter "github.com/samirrijal/lankide/internal/adapters/nats"
	"github.com/samirrijal/lankide/internal/adapters/postgres"
	"github.com/samirrijal/lankide/internal/core/domain"
	"github.com/samirrijal/lankide/internal/core/usecases"
	"github.com/samirrijal/lankide/internal/pkg/config"
	"github.com/samirrijal/lankide/internal/pkg/logging"
	"github.com/samirrijal/lankide/internal/pkg/metrics"
)

func main() {
	cfg, err := config.Load("lankide-notifier")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("lankide-notifier", logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats publisher: %v", err)
	}
	defer publisher.Close()

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats subscriber: %v", err)
	}
	defer sub.Close()

	notificationSvc := usecases.NewNotificationService(postgres.NewNotificationRepo(db))

	zoneSvc := usecases.NewZoneService(postgres.NewZoneRepo(db), nil)
	scheduleSvc := usecases.NewScheduleService(postgres.NewScheduleRepo(db), nil, cfg.HR.Timezone, cfg.HR.GraceMinutes)
	attendanceSvc := usecases.NewAttendanceService(
		postgres.NewAttendanceRepo(db), zoneSvc, scheduleSvc,
		postgres.NewHolidayRepo(db), publisher, cfg.HR.RefreshSeconds,
	)

	// Auto-checkout events notify the affected employee; ordinary punches
	// only feed the live dashboards.
	err = sub.SubscribeAttendanceEvents(ctx, func(ctx context.Context, ev *domain.AttendanceEvent) error {
		if ev.Action != "auto_checkout" {
			return nil
		}
		_, err := notificationSvc.Create(ctx, ev.EmployeeID, "auto_checkout",
			"Missed check-out",
			fmt.Sprintf("Your %s attendance was closed automatically. File an adjustment request if the times are wrong.", ev.Date))
		return err
	})
	if err != nil {
		log.Fatalf("subscribe attendance: %v", err)
	}

	err = sub.SubscribeRequestEvents(ctx, func(ctx context.Context, ev *domain.RequestEvent) error {
		switch ev.Status {
		case domain.StatusApproved, domain.StatusRejected:
			_, err := notificationSvc.Create(ctx, ev.EmployeeID, "request_decided",
				fmt.Sprintf("Your %s request was %s", ev.Kind, ev.Status), ev.Note)
			return err
		default:
			return nil
		}
	})
	if err != nil {
		log.Fatalf("subscribe requests: %v", err)
	}

	// Close punches left open longer than the configured window.
	maxOpen := time.Duration(cfg.HR.AutoCheckoutHrs) * time.Hour
	go func() {
		ticker := time.NewTicker(15 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				n, err := attendanceSvc.AutoCheckout(ctx, maxOpen)
				if err != nil {
					slog.Error("auto checkout sweep failed", "error", err)
					continue
				}
				if n > 0 {
					metrics.AutoCheckoutsClosed.Add(float64(n))
					slog.Info("auto checkout sweep", "closed", n)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	slog.Info("notifier started", "auto_checkout_after", maxOpen.String())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("notifier stopping")
	cancel()
}
