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

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/lankide/internal/adapters/http"
	natsadapter "github.com/samirrijal/lankide/internal/adapters/nats"
	"github.com/samirrijal/lankide/internal/adapters/postgres"
	temporaladapter "github.com/samirrijal/lankide/internal/adapters/temporal"
	"github.com/samirrijal/lankide/internal/adapters/valkey"
	"github.com/samirrijal/lankide/internal/core/ports"
	"github.com/samirrijal/lankide/internal/core/usecases"
	"github.com/samirrijal/lankide/internal/pkg/config"
	"github.com/samirrijal/lankide/internal/pkg/logging"
	"github.com/samirrijal/lankide/internal/pkg/metrics"
	"github.com/samirrijal/lankide/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("lankide-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("lankide-api", logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Export pool gauges on a slow tick.
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.UpdateDBPoolMetrics(db.Pool.Stat())
			case <-ctx.Done():
				return
			}
		}
	}()

	// Cache. Services treat a nil cache as a pass-through, so a missing
	// valkey only costs read-through hits.
	var cacheSvc ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
		cache = nil
	} else {
		cacheSvc = cache
		defer cache.Close()
	}

	// NATS
	var publisher ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		publisher = pub
		defer pub.Close()
	}

	// Raw NATS connection for the WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// Temporal (payroll runs). The API degrades to synchronous-less payroll
	// when the cluster is unreachable: StartRun will fail loudly instead.
	var starter ports.PayrollStarter
	ts, err := temporaladapter.NewStarter(cfg.Temporal.HostPort, cfg.Temporal.Namespace, cfg.Temporal.TaskQueue)
	if err != nil {
		slog.Warn("temporal unavailable, payroll runs disabled", "error", err)
	} else {
		starter = ts
		defer ts.Close()
	}

	// Repos
	employeeRepo := postgres.NewEmployeeRepo(db)
	zoneRepo := postgres.NewZoneRepo(db)
	attendanceRepo := postgres.NewAttendanceRepo(db)
	requestRepo := postgres.NewRequestRepo(db)
	holidayRepo := postgres.NewHolidayRepo(db)
	scheduleRepo := postgres.NewScheduleRepo(db)
	payrollRepo := postgres.NewPayrollRepo(db)
	notificationRepo := postgres.NewNotificationRepo(db)

	// Use cases
	employeeSvc := usecases.NewEmployeeService(employeeRepo, cacheSvc)
	zoneSvc := usecases.NewZoneService(zoneRepo, cacheSvc)
	scheduleSvc := usecases.NewScheduleService(scheduleRepo, cacheSvc, cfg.HR.Timezone, cfg.HR.GraceMinutes)
	holidaySvc := usecases.NewHolidayService(holidayRepo, cacheSvc)
	attendanceSvc := usecases.NewAttendanceService(attendanceRepo, zoneSvc, scheduleSvc, holidayRepo, publisher, cfg.HR.RefreshSeconds)
	requestSvc := usecases.NewRequestService(requestRepo, attendanceRepo, publisher, cfg.HR.LeaveQuotaDays)
	notificationSvc := usecases.NewNotificationService(notificationRepo)
	payrollSvc := usecases.NewPayrollService(
		payrollRepo, employeeRepo, attendanceRepo, requestRepo,
		scheduleSvc, holidayRepo, notificationRepo, starter,
		usecases.PayrollRates{
			WorkingHoursPerDay:  cfg.Payroll.WorkingHoursPerDay,
			WorkingDaysPerMonth: cfg.Payroll.WorkingDaysPerMonth,
			OvertimeMultiplier:  cfg.Payroll.OvertimeMultiplier,
			LateDeduction:       cfg.Payroll.LateDeduction,
		},
	)

	deps := &http.Dependencies{
		Employees:     employeeSvc,
		Zones:         zoneSvc,
		Attendance:    attendanceSvc,
		Schedule:      scheduleSvc,
		Holidays:      holidaySvc,
		Requests:      requestSvc,
		Payroll:       payrollSvc,
		Notifications: notificationSvc,
		Auth: http.AuthSettings{
			JWTSecret:    []byte(cfg.Auth.JWTSecret),
			TokenTTLMins: cfg.Auth.TokenTTLMins,
		},
		NATS:  natsConn,
		DB:    db,
		Cache: cache,
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024,
		AppName:      "Lankide API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
