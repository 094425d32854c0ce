package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samirrijal/lankide/internal/core/domain"
	"github.com/samirrijal/lankide/internal/core/ports"
	"github.com/samirrijal/lankide/internal/pkg/geofence"
)

// Gate failures. Handlers map these to 409/422 responses.
var (
	ErrAlreadyCheckedIn    = errors.New("already checked in today")
	ErrNotCheckedIn        = errors.New("not checked in yet")
	ErrAlreadyCheckedOut   = errors.New("already checked out today")
	ErrOutsideWorkingHours = errors.New("outside working hours")
)

// OutsideZoneError reports a geofence gate failure with the miss distance.
type OutsideZoneError struct {
	Result geofence.Result
}

func (e *OutsideZoneError) Error() string {
	return fmt.Sprintf("outside all active zones (%.1f m from nearest)", e.Result.DistanceM)
}

// ZoneLister supplies active zones in first-match priority order.
type ZoneLister interface {
	ListActive(ctx context.Context) ([]domain.Zone, error)
}

// ScheduleProvider supplies the effective weekly schedule.
type ScheduleProvider interface {
	Get(ctx context.Context) (domain.WeekSchedule, error)
}

// StatusResult is the portal attendance status payload. The client polls this
// on a fixed interval and recomputes nothing itself; the geofence result here
// is authoritative.
type StatusResult struct {
	Geofence       *geofence.Result      `json:"geofence,omitempty"`
	WithinHours    bool                  `json:"within_working_hours"`
	CheckInAllowed bool                  `json:"check_in_allowed"`
	Today          *domain.AttendanceDay `json:"today"`
	NextAction     string                `json:"next_action"` // "check_in" | "check_out" | ""
	RefreshSeconds int                   `json:"refresh_seconds"`
}

// AttendanceService gates and records check-ins and check-outs. The gate is
// evaluated server-side on every call: working hours for the day of week AND
// at least one active zone containing the device location.
type AttendanceService struct {
	attendance ports.AttendanceRepository
	zones      ZoneLister
	schedule   ScheduleProvider
	holidays   ports.HolidayRepository
	publisher  ports.EventPublisher

	refreshSeconds int
	now            func() time.Time
}

// NewAttendanceService creates a new AttendanceService. refreshSeconds is the
// polling cadence hint sent to portal clients.
func NewAttendanceService(
	attendance ports.AttendanceRepository,
	zones ZoneLister,
	schedule ScheduleProvider,
	holidays ports.HolidayRepository,
	publisher ports.EventPublisher,
	refreshSeconds int,
) *AttendanceService {
	if refreshSeconds <= 0 {
		refreshSeconds = 30
	}
	return &AttendanceService{
		attendance:     attendance,
		zones:          zones,
		schedule:       schedule,
		holidays:       holidays,
		publisher:      publisher,
		refreshSeconds: refreshSeconds,
		now:            time.Now,
	}
}

// workingNow reports whether t falls in the schedule's working window,
// with holidays forcing the whole day non-working.
func (s *AttendanceService) workingNow(ctx context.Context, t time.Time, sched domain.WeekSchedule) (bool, error) {
	withinHours, err := sched.WithinWorkingHours(t)
	if err != nil || !withinHours {
		return false, err
	}
	if s.holidays != nil {
		holiday, err := s.holidays.IsHoliday(ctx, sched.DateAnchor(t))
		if err != nil {
			return false, fmt.Errorf("holiday lookup: %w", err)
		}
		if holiday {
			return false, nil
		}
	}
	return true, nil
}

// gate evaluates both check-in conditions at time t for the given position.
func (s *AttendanceService) gate(ctx context.Context, t time.Time, pos domain.GeoPoint) (geofence.Result, bool, domain.WeekSchedule, error) {
	sched, err := s.schedule.Get(ctx)
	if err != nil {
		return geofence.Result{}, false, domain.WeekSchedule{}, fmt.Errorf("load schedule: %w", err)
	}

	withinHours, err := s.workingNow(ctx, t, sched)
	if err != nil {
		return geofence.Result{}, false, sched, err
	}

	zones, err := s.zones.ListActive(ctx)
	if err != nil {
		return geofence.Result{}, false, sched, fmt.Errorf("load zones: %w", err)
	}
	return geofence.Evaluate(pos, zones), withinHours, sched, nil
}

// Status recomputes the gate and returns today's attendance state. pos may be
// nil when the client has no location fix yet.
func (s *AttendanceService) Status(ctx context.Context, employeeID string, pos *domain.GeoPoint) (*StatusResult, error) {
	now := s.now()

	res := &StatusResult{RefreshSeconds: s.refreshSeconds}

	var sched domain.WeekSchedule
	if pos != nil {
		gf, withinHours, sc, err := s.gate(ctx, now, *pos)
		if err != nil {
			return nil, err
		}
		res.Geofence = &gf
		res.WithinHours = withinHours
		sched = sc
	} else {
		sc, err := s.schedule.Get(ctx)
		if err != nil {
			return nil, fmt.Errorf("load schedule: %w", err)
		}
		sched = sc
		res.WithinHours, err = s.workingNow(ctx, now, sched)
		if err != nil {
			return nil, err
		}
	}

	day, err := s.attendance.GetDay(ctx, employeeID, sched.DateAnchor(now))
	if err != nil {
		return nil, fmt.Errorf("load day: %w", err)
	}
	res.Today = day

	switch {
	case day == nil || day.CheckInAt == nil:
		res.NextAction = "check_in"
	case day.CheckOutAt == nil:
		res.NextAction = "check_out"
	default:
		res.NextAction = ""
	}

	res.CheckInAllowed = res.NextAction == "check_in" &&
		res.WithinHours && res.Geofence != nil && res.Geofence.Inside
	return res, nil
}

// CheckIn records a check-in if both gate conditions hold.
func (s *AttendanceService) CheckIn(ctx context.Context, employeeID string, pos domain.GeoPoint) (*domain.AttendanceDay, geofence.Result, error) {
	now := s.now()

	gf, withinHours, sched, err := s.gate(ctx, now, pos)
	if err != nil {
		return nil, gf, err
	}
	if !withinHours {
		return nil, gf, ErrOutsideWorkingHours
	}
	if !gf.Inside {
		return nil, gf, &OutsideZoneError{Result: gf}
	}

	existing, err := s.attendance.GetDay(ctx, employeeID, sched.DateAnchor(now))
	if err != nil {
		return nil, gf, fmt.Errorf("load day: %w", err)
	}
	if existing != nil && existing.CheckInAt != nil {
		return nil, gf, ErrAlreadyCheckedIn
	}

	status := "on_time"
	if sched.LateBy(now) > 0 {
		status = "late"
	}

	dist := gf.DistanceM
	day := &domain.AttendanceDay{
		EmployeeID:    employeeID,
		Date:          sched.DateAnchor(now),
		CheckInAt:     &now,
		CheckInPos:    &pos,
		CheckInDistM:  &dist,
		CheckInZoneID: gf.ZoneID,
		Status:        status,
	}
	saved, err := s.attendance.CheckIn(ctx, day)
	if err != nil {
		return nil, gf, err
	}

	s.publish(ctx, &domain.AttendanceEvent{
		Time:       now,
		EmployeeID: employeeID,
		Action:     "check_in",
		Date:       saved.Date.Format("2006-01-02"),
		ZoneID:     gf.ZoneID,
		DistanceM:  gf.DistanceM,
		Status:     status,
	})
	return saved, gf, nil
}

// CheckOut records a check-out. The zone gate applies; the working-hours gate
// does not, so an employee who stays past the window can still punch out.
func (s *AttendanceService) CheckOut(ctx context.Context, employeeID string, pos domain.GeoPoint) (*domain.AttendanceDay, geofence.Result, error) {
	now := s.now()

	gf, _, sched, err := s.gate(ctx, now, pos)
	if err != nil {
		return nil, gf, err
	}
	if !gf.Inside {
		return nil, gf, &OutsideZoneError{Result: gf}
	}

	day, err := s.attendance.GetDay(ctx, employeeID, sched.DateAnchor(now))
	if err != nil {
		return nil, gf, fmt.Errorf("load day: %w", err)
	}
	if day == nil || day.CheckInAt == nil {
		return nil, gf, ErrNotCheckedIn
	}
	if day.CheckOutAt != nil {
		return nil, gf, ErrAlreadyCheckedOut
	}

	saved, err := s.attendance.CheckOut(ctx, employeeID, sched.DateAnchor(now), now, pos, gf.DistanceM)
	if err != nil {
		return nil, gf, err
	}

	s.publish(ctx, &domain.AttendanceEvent{
		Time:       now,
		EmployeeID: employeeID,
		Action:     "check_out",
		Date:       saved.Date.Format("2006-01-02"),
		ZoneID:     gf.ZoneID,
		DistanceM:  gf.DistanceM,
	})
	return saved, gf, nil
}

// Days returns attendance rows for the portal calendar.
func (s *AttendanceService) Days(ctx context.Context, employeeID string, from, to time.Time) ([]domain.AttendanceDay, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("invalid range: to before from")
	}
	return s.attendance.ListDays(ctx, employeeID, from, to)
}

// ListAll is the admin listing, optionally filtered by employee.
func (s *AttendanceService) ListAll(ctx context.Context, employeeID string, from, to time.Time, limit int) ([]domain.AttendanceDay, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.attendance.ListAll(ctx, employeeID, from, to, limit)
}

// AutoCheckout closes day rows whose check-in is older than maxOpen and that
// never checked out. One event per closed row, so consumers can notify the
// affected employee. Returns the number of rows closed.
func (s *AttendanceService) AutoCheckout(ctx context.Context, maxOpen time.Duration) (int64, error) {
	now := s.now()
	closed, err := s.attendance.CloseStale(ctx, now.Add(-maxOpen), now)
	if err != nil {
		return 0, err
	}
	for _, day := range closed {
		s.publish(ctx, &domain.AttendanceEvent{
			Time:       now,
			EmployeeID: day.EmployeeID,
			Action:     "auto_checkout",
			Date:       day.Date.Format("2006-01-02"),
		})
	}
	return int64(len(closed)), nil
}

func (s *AttendanceService) publish(ctx context.Context, ev *domain.AttendanceEvent) {
	if s.publisher != nil {
		_ = s.publisher.PublishAttendanceEvent(ctx, ev)
	}
}
