package ports

import (
	"context"
	"time"

	"github.com/samirrijal/lankide/internal/core/domain"
)

// EmployeeRepository persists employees.
type EmployeeRepository interface {
	Create(ctx context.Context, e *domain.Employee) error
	Update(ctx context.Context, e *domain.Employee) error
	Deactivate(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Employee, error)
	GetByEmail(ctx context.Context, email string) (*domain.Employee, error)
	List(ctx context.Context, activeOnly bool) ([]domain.Employee, error)
	Search(ctx context.Context, query string, limit int) ([]domain.Employee, error)
}

// ZoneRepository persists check-in zones. List returns zones ordered by
// created_at; that order is the geofence first-match priority.
type ZoneRepository interface {
	Create(ctx context.Context, z *domain.Zone) error
	Update(ctx context.Context, z *domain.Zone) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Zone, error)
	List(ctx context.Context) ([]domain.Zone, error)
}

// AttendanceRepository persists attendance day rows.
type AttendanceRepository interface {
	GetDay(ctx context.Context, employeeID string, date time.Time) (*domain.AttendanceDay, error)
	CheckIn(ctx context.Context, day *domain.AttendanceDay) (*domain.AttendanceDay, error)
	CheckOut(ctx context.Context, employeeID string, date time.Time, at time.Time, pos domain.GeoPoint, distM float64) (*domain.AttendanceDay, error)
	Rewrite(ctx context.Context, employeeID string, date time.Time, in, out *time.Time) error
	ListDays(ctx context.Context, employeeID string, from, to time.Time) ([]domain.AttendanceDay, error)
	ListAll(ctx context.Context, employeeID string, from, to time.Time, limit int) ([]domain.AttendanceDay, error)
	// CloseStale closes open punches older than the cutoff and returns the
	// affected rows (employee and date) so callers can fan out per employee.
	CloseStale(ctx context.Context, olderThan time.Time, closeAt time.Time) ([]domain.AttendanceDay, error)
	// MonthSummary returns per-status day counts and total worked time for
	// the period. Overtime comes from approved requests, not from here.
	MonthSummary(ctx context.Context, employeeID string, from, to time.Time) (late int, onTime int, workedSeconds int64, err error)
}

// RequestRepository persists leave/overtime/adjustment requests.
type RequestRepository interface {
	Create(ctx context.Context, r *domain.Request) error
	GetByID(ctx context.Context, id string) (*domain.Request, error)
	ListByEmployee(ctx context.Context, employeeID string, limit int) ([]domain.Request, error)
	ListByStatus(ctx context.Context, status string, limit int) ([]domain.Request, error)
	Decide(ctx context.Context, id, status, deciderID, note string, at time.Time) (*domain.Request, error)
	SumApprovedLeaveDays(ctx context.Context, employeeID string, from, to time.Time) (int, error)
	SumApprovedOvertimeMinutes(ctx context.Context, employeeID string, from, to time.Time) (int, error)
}

// HolidayRepository persists the holiday calendar.
type HolidayRepository interface {
	Create(ctx context.Context, h *domain.Holiday) error
	Delete(ctx context.Context, id string) error
	ListYear(ctx context.Context, year int) ([]domain.Holiday, error)
	IsHoliday(ctx context.Context, date time.Time) (bool, error)
}

// ScheduleRepository persists the weekly working-hours configuration.
type ScheduleRepository interface {
	Get(ctx context.Context) (*domain.WeekSchedule, error)
	Put(ctx context.Context, s *domain.WeekSchedule) error
}

// PayrollRepository persists payroll runs and slips.
type PayrollRepository interface {
	CreateRun(ctx context.Context, run *domain.PayrollRun) error
	FinishRun(ctx context.Context, runID, status string, at time.Time) error
	GetRun(ctx context.Context, runID string) (*domain.PayrollRun, error)
	ListRuns(ctx context.Context, limit int) ([]domain.PayrollRun, error)
	InsertSlips(ctx context.Context, slips []domain.PayrollSlip) error
	ListSlips(ctx context.Context, runID string) ([]domain.PayrollSlip, error)
}

// NotificationRepository persists in-app notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByEmployee(ctx context.Context, employeeID string, limit int) ([]domain.Notification, error)
	UnreadCount(ctx context.Context, employeeID string) (int, error)
	MarkRead(ctx context.Context, id, employeeID string) error
}
