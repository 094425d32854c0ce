package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samirrijal/lankide/internal/core/domain"
)

// --- Mocks ---

type mockAttendanceRepo struct {
	getDayFn     func(ctx context.Context, employeeID string, date time.Time) (*domain.AttendanceDay, error)
	checkInFn    func(ctx context.Context, day *domain.AttendanceDay) (*domain.AttendanceDay, error)
	checkOutFn   func(ctx context.Context, employeeID string, date, at time.Time, pos domain.GeoPoint, distM float64) (*domain.AttendanceDay, error)
	rewriteFn    func(ctx context.Context, employeeID string, date time.Time, in, out *time.Time) error
	closeStaleFn func(ctx context.Context, olderThan, closeAt time.Time) ([]domain.AttendanceDay, error)
}

func (m *mockAttendanceRepo) GetDay(ctx context.Context, employeeID string, date time.Time) (*domain.AttendanceDay, error) {
	if m.getDayFn != nil {
		return m.getDayFn(ctx, employeeID, date)
	}
	return nil, nil
}

func (m *mockAttendanceRepo) CheckIn(ctx context.Context, day *domain.AttendanceDay) (*domain.AttendanceDay, error) {
	if m.checkInFn != nil {
		return m.checkInFn(ctx, day)
	}
	return day, nil
}

func (m *mockAttendanceRepo) CheckOut(ctx context.Context, employeeID string, date, at time.Time, pos domain.GeoPoint, distM float64) (*domain.AttendanceDay, error) {
	if m.checkOutFn != nil {
		return m.checkOutFn(ctx, employeeID, date, at, pos, distM)
	}
	return &domain.AttendanceDay{EmployeeID: employeeID, Date: date, CheckOutAt: &at}, nil
}

func (m *mockAttendanceRepo) Rewrite(ctx context.Context, employeeID string, date time.Time, in, out *time.Time) error {
	if m.rewriteFn != nil {
		return m.rewriteFn(ctx, employeeID, date, in, out)
	}
	return nil
}

func (m *mockAttendanceRepo) ListDays(ctx context.Context, employeeID string, from, to time.Time) ([]domain.AttendanceDay, error) {
	return nil, nil
}

func (m *mockAttendanceRepo) ListAll(ctx context.Context, employeeID string, from, to time.Time, limit int) ([]domain.AttendanceDay, error) {
	return nil, nil
}

func (m *mockAttendanceRepo) CloseStale(ctx context.Context, olderThan, closeAt time.Time) ([]domain.AttendanceDay, error) {
	if m.closeStaleFn != nil {
		return m.closeStaleFn(ctx, olderThan, closeAt)
	}
	return nil, nil
}

func (m *mockAttendanceRepo) MonthSummary(ctx context.Context, employeeID string, from, to time.Time) (int, int, int64, error) {
	return 0, 0, 0, nil
}

type mockZoneLister struct {
	zones []domain.Zone
	err   error
}

func (m *mockZoneLister) ListActive(ctx context.Context) ([]domain.Zone, error) {
	return m.zones, m.err
}

type mockScheduleProvider struct {
	sched domain.WeekSchedule
}

func (m *mockScheduleProvider) Get(ctx context.Context) (domain.WeekSchedule, error) {
	return m.sched, nil
}

type mockHolidayRepo struct {
	isHolidayFn func(ctx context.Context, date time.Time) (bool, error)
	listYearFn  func(ctx context.Context, year int) ([]domain.Holiday, error)
}

func (m *mockHolidayRepo) Create(ctx context.Context, h *domain.Holiday) error { return nil }
func (m *mockHolidayRepo) Delete(ctx context.Context, id string) error         { return nil }

func (m *mockHolidayRepo) ListYear(ctx context.Context, year int) ([]domain.Holiday, error) {
	if m.listYearFn != nil {
		return m.listYearFn(ctx, year)
	}
	return nil, nil
}

func (m *mockHolidayRepo) IsHoliday(ctx context.Context, date time.Time) (bool, error) {
	if m.isHolidayFn != nil {
		return m.isHolidayFn(ctx, date)
	}
	return false, nil
}

type mockPublisher struct {
	attendance []*domain.AttendanceEvent
	requests   []*domain.RequestEvent
}

func (m *mockPublisher) PublishAttendanceEvent(ctx context.Context, ev *domain.AttendanceEvent) error {
	m.attendance = append(m.attendance, ev)
	return nil
}

func (m *mockPublisher) PublishRequestEvent(ctx context.Context, ev *domain.RequestEvent) error {
	m.requests = append(m.requests, ev)
	return nil
}

func (m *mockPublisher) PublishBroadcast(ctx context.Context, data []byte) error { return nil }

// --- Fixtures ---

// officeZone sits on Plaza Moyua; radius comfortably covers nearPos.
var officeZone = domain.Zone{
	ID:      "zone-1",
	Name:    "HQ",
	Center:  domain.GeoPoint{Lat: 43.2630, Lon: -2.9350},
	RadiusM: 150,
	Active:  true,
}

var (
	nearPos = domain.GeoPoint{Lat: 43.2631, Lon: -2.9351} // ~14 m from center
	farPos  = domain.GeoPoint{Lat: 43.2700, Lon: -2.9350} // ~780 m north
)

// monday returns 2026-03-02 (a Monday) at the given office-local clock time.
func monday(hour, min int) time.Time {
	return time.Date(2026, time.March, 2, hour, min, 0, 0, time.UTC)
}

func newAttendanceFixture(repo *mockAttendanceRepo, at time.Time) (*AttendanceService, *mockPublisher) {
	pub := &mockPublisher{}
	svc := NewAttendanceService(
		repo,
		&mockZoneLister{zones: []domain.Zone{officeZone}},
		&mockScheduleProvider{sched: domain.DefaultWeekSchedule("UTC", 5)},
		&mockHolidayRepo{},
		pub,
		15,
	)
	svc.now = func() time.Time { return at }
	return svc, pub
}

// --- Tests ---

func TestAttendanceService_CheckIn_OnTime(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc, pub := newAttendanceFixture(repo, monday(9, 2))

	day, gf, err := svc.CheckIn(context.Background(), "emp-1", nearPos)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !gf.Inside || gf.ZoneID != "zone-1" {
		t.Errorf("expected inside zone-1, got %+v", gf)
	}
	if day.Status != "on_time" {
		t.Errorf("expected on_time, got %s", day.Status)
	}
	if day.Date != monday(0, 0) {
		t.Errorf("expected anchored date, got %v", day.Date)
	}
	if len(pub.attendance) != 1 || pub.attendance[0].Action != "check_in" {
		t.Errorf("expected one check_in event, got %+v", pub.attendance)
	}
}

func TestAttendanceService_CheckIn_Late(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc, _ := newAttendanceFixture(repo, monday(9, 20)) // past the 5 min grace

	day, _, err := svc.CheckIn(context.Background(), "emp-1", nearPos)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if day.Status != "late" {
		t.Errorf("expected late, got %s", day.Status)
	}
}

func TestAttendanceService_CheckIn_Twice(t *testing.T) {
	in := monday(9, 0)
	repo := &mockAttendanceRepo{
		getDayFn: func(ctx context.Context, employeeID string, date time.Time) (*domain.AttendanceDay, error) {
			return &domain.AttendanceDay{EmployeeID: employeeID, Date: date, CheckInAt: &in}, nil
		},
	}
	svc, _ := newAttendanceFixture(repo, monday(9, 30))

	_, _, err := svc.CheckIn(context.Background(), "emp-1", nearPos)
	if !errors.Is(err, ErrAlreadyCheckedIn) {
		t.Fatalf("expected ErrAlreadyCheckedIn, got %v", err)
	}
}

func TestAttendanceService_CheckIn_OutsideWorkingHours(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc, pub := newAttendanceFixture(repo, monday(7, 30))

	_, _, err := svc.CheckIn(context.Background(), "emp-1", nearPos)
	if !errors.Is(err, ErrOutsideWorkingHours) {
		t.Fatalf("expected ErrOutsideWorkingHours, got %v", err)
	}
	if len(pub.attendance) != 0 {
		t.Errorf("no event expected on rejection")
	}
}

func TestAttendanceService_CheckIn_Sunday(t *testing.T) {
	repo := &mockAttendanceRepo{}
	sunday := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	svc, _ := newAttendanceFixture(repo, sunday)

	_, _, err := svc.CheckIn(context.Background(), "emp-1", nearPos)
	if !errors.Is(err, ErrOutsideWorkingHours) {
		t.Fatalf("expected ErrOutsideWorkingHours, got %v", err)
	}
}

func TestAttendanceService_CheckIn_OutsideZone(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc, _ := newAttendanceFixture(repo, monday(9, 2))

	_, gf, err := svc.CheckIn(context.Background(), "emp-1", farPos)
	var outside *OutsideZoneError
	if !errors.As(err, &outside) {
		t.Fatalf("expected OutsideZoneError, got %v", err)
	}
	if gf.Inside {
		t.Error("geofence result should report outside")
	}
	if gf.DistanceM <= officeZone.RadiusM {
		t.Errorf("miss distance %.1f should exceed radius", gf.DistanceM)
	}
}

func TestAttendanceService_CheckIn_Holiday(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc, _ := newAttendanceFixture(repo, monday(9, 2))
	svc.holidays = &mockHolidayRepo{
		isHolidayFn: func(ctx context.Context, date time.Time) (bool, error) { return true, nil },
	}

	_, _, err := svc.CheckIn(context.Background(), "emp-1", nearPos)
	if !errors.Is(err, ErrOutsideWorkingHours) {
		t.Fatalf("expected ErrOutsideWorkingHours on a holiday, got %v", err)
	}
}

func TestAttendanceService_CheckOut_NotCheckedIn(t *testing.T) {
	repo := &mockAttendanceRepo{} // GetDay returns nil
	svc, _ := newAttendanceFixture(repo, monday(18, 5))

	_, _, err := svc.CheckOut(context.Background(), "emp-1", nearPos)
	if !errors.Is(err, ErrNotCheckedIn) {
		t.Fatalf("expected ErrNotCheckedIn, got %v", err)
	}
}

func TestAttendanceService_CheckOut_AfterHoursAllowed(t *testing.T) {
	in := monday(9, 0)
	repo := &mockAttendanceRepo{
		getDayFn: func(ctx context.Context, employeeID string, date time.Time) (*domain.AttendanceDay, error) {
			return &domain.AttendanceDay{EmployeeID: employeeID, Date: date, CheckInAt: &in}, nil
		},
	}
	svc, pub := newAttendanceFixture(repo, monday(20, 30)) // past 18:00

	_, _, err := svc.CheckOut(context.Background(), "emp-1", nearPos)
	if err != nil {
		t.Fatalf("check-out past working hours should succeed: %v", err)
	}
	if len(pub.attendance) != 1 || pub.attendance[0].Action != "check_out" {
		t.Errorf("expected one check_out event, got %+v", pub.attendance)
	}
}

func TestAttendanceService_CheckOut_AlreadyCheckedOut(t *testing.T) {
	in, out := monday(9, 0), monday(17, 0)
	repo := &mockAttendanceRepo{
		getDayFn: func(ctx context.Context, employeeID string, date time.Time) (*domain.AttendanceDay, error) {
			return &domain.AttendanceDay{EmployeeID: employeeID, Date: date, CheckInAt: &in, CheckOutAt: &out}, nil
		},
	}
	svc, _ := newAttendanceFixture(repo, monday(17, 30))

	_, _, err := svc.CheckOut(context.Background(), "emp-1", nearPos)
	if !errors.Is(err, ErrAlreadyCheckedOut) {
		t.Fatalf("expected ErrAlreadyCheckedOut, got %v", err)
	}
}

func TestAttendanceService_Status_NextAction(t *testing.T) {
	in := monday(9, 0)
	cases := []struct {
		name string
		day  *domain.AttendanceDay
		want string
	}{
		{"no row yet", nil, "check_in"},
		{"checked in", &domain.AttendanceDay{CheckInAt: &in}, "check_out"},
		{"done", &domain.AttendanceDay{CheckInAt: &in, CheckOutAt: &in}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &mockAttendanceRepo{
				getDayFn: func(ctx context.Context, employeeID string, date time.Time) (*domain.AttendanceDay, error) {
					return tc.day, nil
				},
			}
			svc, _ := newAttendanceFixture(repo, monday(10, 0))

			st, err := svc.Status(context.Background(), "emp-1", &nearPos)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if st.NextAction != tc.want {
				t.Errorf("expected next_action %q, got %q", tc.want, st.NextAction)
			}
		})
	}
}

func TestAttendanceService_Status_RefreshAndGate(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc, _ := newAttendanceFixture(repo, monday(10, 0))

	st, err := svc.Status(context.Background(), "emp-1", &nearPos)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.RefreshSeconds != 15 {
		t.Errorf("expected refresh_seconds 15, got %d", st.RefreshSeconds)
	}
	if !st.CheckInAllowed {
		t.Error("in zone during working hours: check-in should be allowed")
	}

	// Without a location fix the gate cannot pass.
	st, err = svc.Status(context.Background(), "emp-1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Geofence != nil || st.CheckInAllowed {
		t.Errorf("no position: expected no geofence result and no check-in, got %+v", st)
	}
}

func TestAttendanceService_AutoCheckout(t *testing.T) {
	now := monday(23, 0)
	repo := &mockAttendanceRepo{
		closeStaleFn: func(ctx context.Context, olderThan, closeAt time.Time) ([]domain.AttendanceDay, error) {
			if want := now.Add(-14 * time.Hour); !olderThan.Equal(want) {
				t.Errorf("expected cutoff %v, got %v", want, olderThan)
			}
			return []domain.AttendanceDay{
				{EmployeeID: "emp-1", Date: monday(0, 0)},
				{EmployeeID: "emp-2", Date: monday(0, 0)},
			}, nil
		},
	}
	svc, pub := newAttendanceFixture(repo, now)

	n, err := svc.AutoCheckout(context.Background(), 14*time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 rows closed, got %d", n)
	}
	// One event per closed row, each naming the employee and the day, so the
	// notifier can reach the right person.
	if len(pub.attendance) != 2 {
		t.Fatalf("expected 2 auto_checkout events, got %d", len(pub.attendance))
	}
	for i, want := range []string{"emp-1", "emp-2"} {
		ev := pub.attendance[i]
		if ev.Action != "auto_checkout" {
			t.Errorf("event %d: expected auto_checkout, got %s", i, ev.Action)
		}
		if ev.EmployeeID != want {
			t.Errorf("event %d: expected employee %s, got %q", i, want, ev.EmployeeID)
		}
		if ev.Date != "2026-03-02" {
			t.Errorf("event %d: expected date 2026-03-02, got %q", i, ev.Date)
		}
	}
}

func TestAttendanceService_HolidayLookupUsesOfficeDate(t *testing.T) {
	// 21:30 UTC on Monday March 2nd is already 10:30 on Tuesday March 3rd in
	// Auckland: mid-morning of a working day whose office-local calendar date
	// differs from the UTC one. The holiday lookup must get the office date.
	at := time.Date(2026, time.March, 2, 21, 30, 0, 0, time.UTC)
	repo := &mockAttendanceRepo{}
	svc, _ := newAttendanceFixture(repo, at)
	svc.schedule = &mockScheduleProvider{sched: domain.DefaultWeekSchedule("Pacific/Auckland", 5)}

	var got string
	svc.holidays = &mockHolidayRepo{
		isHolidayFn: func(ctx context.Context, date time.Time) (bool, error) {
			got = date.Format("2006-01-02")
			return true, nil
		},
	}

	_, _, err := svc.CheckIn(context.Background(), "emp-1", nearPos)
	if !errors.Is(err, ErrOutsideWorkingHours) {
		t.Fatalf("expected ErrOutsideWorkingHours on a holiday, got %v", err)
	}
	if got != "2026-03-03" {
		t.Errorf("holiday lookup got %q, want office-local 2026-03-03", got)
	}
}

func TestAttendanceService_Status_ScheduleErrorPropagates(t *testing.T) {
	bad := domain.DefaultWeekSchedule("UTC", 5)
	bad.Days[time.Monday] = domain.DayWindow{Working: true, Start: "nine", End: "18:00"}

	repo := &mockAttendanceRepo{}
	svc, _ := newAttendanceFixture(repo, monday(10, 0))
	svc.schedule = &mockScheduleProvider{sched: bad}

	// Without a position fix the schedule is still consulted; a malformed
	// stored window must surface, not read as "outside hours".
	if _, err := svc.Status(context.Background(), "emp-1", nil); err == nil {
		t.Fatal("expected a schedule parse error")
	}
}
