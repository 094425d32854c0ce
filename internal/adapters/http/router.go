package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"
	"github.com/samirrijal/lankide/internal/pkg/metrics"
)

const handlerTimeout = 15 * time.Second

func timed(h fiber.Handler) fiber.Handler {
	return timeout.NewWithContext(h, handlerTimeout)
}

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID
	app.Use(requestid.New())

	// Rate limiting: 120 requests per minute per IP. Generous enough for the
	// portal's 15s status poll plus normal navigation.
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(429).JSON(fiber.Map{
				"error":   "rate limit exceeded",
				"message": "too many requests, please try again later",
			})
		},
		SkipFailedRequests: false,
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	// Login is the only unauthenticated API endpoint.
	app.Post("/v1/login", timed(LoginHandler(deps)))

	// Everything else under /v1 requires a valid token.
	v1 := app.Group("/v1", AuthRequired(deps))

	// Request-scoped logging, after auth so the employee ID is known.
	v1.Use(RequestLogMiddleware())
	v1.Use(AccessLogMiddleware())

	// Portal (any authenticated employee)
	v1.Get("/me", timed(MeHandler(deps)))
	v1.Get("/me/attendance/status", timed(AttendanceStatusHandler(deps)))
	v1.Post("/me/attendance/check-in", timed(CheckInHandler(deps)))
	v1.Post("/me/attendance/check-out", timed(CheckOutHandler(deps)))
	v1.Get("/me/attendance", timed(MyAttendanceHandler(deps)))
	v1.Post("/me/requests", timed(SubmitRequestHandler(deps)))
	v1.Get("/me/requests", timed(MyRequestsHandler(deps)))
	v1.Get("/me/quota", timed(MyQuotaHandler(deps)))
	v1.Get("/me/notifications", timed(MyNotificationsHandler(deps)))
	v1.Get("/me/notifications/unread", timed(UnreadCountHandler(deps)))
	v1.Post("/me/notifications/:id/read", timed(MarkNotificationReadHandler(deps)))

	// Zones and holidays are readable by everyone; the portal map shows them.
	v1.Get("/zones", timed(ListZonesHandler(deps)))
	v1.Get("/holidays", timed(ListHolidaysHandler(deps)))
	v1.Get("/schedule", timed(GetScheduleHandler(deps)))

	// Admin surface
	admin := v1.Group("", AdminOnly())
	admin.Get("/stats", timed(OrgStatsHandler(deps)))

	admin.Post("/employees", timed(CreateEmployeeHandler(deps)))
	admin.Get("/employees", timed(ListEmployeesHandler(deps)))
	admin.Get("/employees/search", timed(SearchEmployeesHandler(deps)))
	admin.Get("/employees/:id", timed(GetEmployeeHandler(deps)))
	admin.Put("/employees/:id", timed(UpdateEmployeeHandler(deps)))
	admin.Delete("/employees/:id", timed(DeactivateEmployeeHandler(deps)))

	admin.Post("/zones", timed(CreateZoneHandler(deps)))
	admin.Get("/zones/:id", timed(GetZoneHandler(deps)))
	admin.Put("/zones/:id", timed(UpdateZoneHandler(deps)))
	admin.Delete("/zones/:id", timed(DeleteZoneHandler(deps)))

	admin.Put("/schedule", timed(PutScheduleHandler(deps)))
	admin.Post("/holidays", timed(CreateHolidayHandler(deps)))
	admin.Delete("/holidays/:id", timed(DeleteHolidayHandler(deps)))

	admin.Get("/requests", timed(ListRequestsHandler(deps)))
	admin.Post("/requests/:id/decision", timed(DecideRequestHandler(deps)))

	admin.Get("/attendance", timed(ListAttendanceHandler(deps)))

	admin.Post("/payroll/runs", timed(StartPayrollRunHandler(deps)))
	admin.Get("/payroll/runs", timed(ListPayrollRunsHandler(deps)))
	admin.Get("/payroll/runs/:id", timed(GetPayrollRunHandler(deps)))
	admin.Get("/payroll/runs/:id/export", timed(ExportPayrollRunHandler(deps)))

	// GraphQL
	app.Post("/graphql", AuthRequired(deps), GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket (token passed as query param; browsers can't set headers here)
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
