package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/lankide/internal/adapters/postgres"
	"github.com/samirrijal/lankide/internal/adapters/valkey"
	"github.com/samirrijal/lankide/internal/core/usecases"
)

// AuthSettings configures token issuing and verification.
type AuthSettings struct {
	JWTSecret    []byte
	TokenTTLMins int
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Employees     *usecases.EmployeeService
	Zones         *usecases.ZoneService
	Attendance    *usecases.AttendanceService
	Schedule      *usecases.ScheduleService
	Holidays      *usecases.HolidayService
	Requests      *usecases.RequestService
	Payroll       *usecases.PayrollService
	Notifications *usecases.NotificationService
	Auth          AuthSettings
	NATS          *nats.Conn
	DB            *postgres.DB
	Cache         *valkey.Cache
}
