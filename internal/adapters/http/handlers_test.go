package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	handler "github.com/samirrijal/lankide/internal/adapters/http"
	"github.com/samirrijal/lankide/internal/core/domain"
	"github.com/samirrijal/lankide/internal/core/usecases"
)

// ---- Mock repositories ----

type mockEmployeeRepo struct {
	createFn     func(ctx context.Context, e *domain.Employee) error
	getByIDFn    func(ctx context.Context, id string) (*domain.Employee, error)
	getByEmailFn func(ctx context.Context, email string) (*domain.Employee, error)
	listFn       func(ctx context.Context, activeOnly bool) ([]domain.Employee, error)
	searchFn     func(ctx context.Context, query string, limit int) ([]domain.Employee, error)
}

func (m *mockEmployeeRepo) Create(ctx context.Context, e *domain.Employee) error {
	if m.createFn != nil {
		return m.createFn(ctx, e)
	}
	return nil
}
func (m *mockEmployeeRepo) Update(ctx context.Context, e *domain.Employee) error { return nil }
func (m *mockEmployeeRepo) Deactivate(ctx context.Context, id string) error     { return nil }
func (m *mockEmployeeRepo) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockEmployeeRepo) GetByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, nil
}
func (m *mockEmployeeRepo) List(ctx context.Context, activeOnly bool) ([]domain.Employee, error) {
	if m.listFn != nil {
		return m.listFn(ctx, activeOnly)
	}
	return nil, nil
}
func (m *mockEmployeeRepo) Search(ctx context.Context, query string, limit int) ([]domain.Employee, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query, limit)
	}
	return nil, nil
}

type mockZoneRepo struct {
	listFn func(ctx context.Context) ([]domain.Zone, error)
}

func (m *mockZoneRepo) Create(ctx context.Context, z *domain.Zone) error { return nil }
func (m *mockZoneRepo) Update(ctx context.Context, z *domain.Zone) error { return nil }
func (m *mockZoneRepo) Delete(ctx context.Context, id string) error      { return nil }
func (m *mockZoneRepo) GetByID(ctx context.Context, id string) (*domain.Zone, error) {
	return nil, nil
}
func (m *mockZoneRepo) List(ctx context.Context) ([]domain.Zone, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

type mockAttendanceRepo struct {
	getDayFn  func(ctx context.Context, employeeID string, date time.Time) (*domain.AttendanceDay, error)
	checkInFn func(ctx context.Context, day *domain.AttendanceDay) (*domain.AttendanceDay, error)
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
func (m *mockAttendanceRepo) CheckOut(ctx context.Context, employeeID string, date time.Time, at time.Time, pos domain.GeoPoint, distM float64) (*domain.AttendanceDay, error) {
	return nil, nil
}
func (m *mockAttendanceRepo) Rewrite(ctx context.Context, employeeID string, date time.Time, in, out *time.Time) error {
	return nil
}
func (m *mockAttendanceRepo) ListDays(ctx context.Context, employeeID string, from, to time.Time) ([]domain.AttendanceDay, error) {
	return nil, nil
}
func (m *mockAttendanceRepo) ListAll(ctx context.Context, employeeID string, from, to time.Time, limit int) ([]domain.AttendanceDay, error) {
	return nil, nil
}
func (m *mockAttendanceRepo) CloseStale(ctx context.Context, olderThan time.Time, closeAt time.Time) ([]domain.AttendanceDay, error) {
	return nil, nil
}
func (m *mockAttendanceRepo) MonthSummary(ctx context.Context, employeeID string, from, to time.Time) (int, int, int64, error) {
	return 0, 0, 0, nil
}

type mockRequestRepo struct {
	getByIDFn    func(ctx context.Context, id string) (*domain.Request, error)
	sumLeaveFn   func(ctx context.Context, employeeID string, from, to time.Time) (int, error)
	listStatusFn func(ctx context.Context, status string, limit int) ([]domain.Request, error)
}

func (m *mockRequestRepo) Create(ctx context.Context, r *domain.Request) error { return nil }
func (m *mockRequestRepo) GetByID(ctx context.Context, id string) (*domain.Request, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockRequestRepo) ListByEmployee(ctx context.Context, employeeID string, limit int) ([]domain.Request, error) {
	return nil, nil
}
func (m *mockRequestRepo) ListByStatus(ctx context.Context, status string, limit int) ([]domain.Request, error) {
	if m.listStatusFn != nil {
		return m.listStatusFn(ctx, status, limit)
	}
	return nil, nil
}
func (m *mockRequestRepo) Decide(ctx context.Context, id, status, deciderID, note string, at time.Time) (*domain.Request, error) {
	return &domain.Request{ID: id, Status: status, Kind: domain.RequestLeave}, nil
}
func (m *mockRequestRepo) SumApprovedLeaveDays(ctx context.Context, employeeID string, from, to time.Time) (int, error) {
	if m.sumLeaveFn != nil {
		return m.sumLeaveFn(ctx, employeeID, from, to)
	}
	return 0, nil
}
func (m *mockRequestRepo) SumApprovedOvertimeMinutes(ctx context.Context, employeeID string, from, to time.Time) (int, error) {
	return 0, nil
}

type mockHolidayRepo struct {
	isHolidayFn func(ctx context.Context, date time.Time) (bool, error)
}

func (m *mockHolidayRepo) Create(ctx context.Context, h *domain.Holiday) error { return nil }
func (m *mockHolidayRepo) Delete(ctx context.Context, id string) error         { return nil }
func (m *mockHolidayRepo) ListYear(ctx context.Context, year int) ([]domain.Holiday, error) {
	return nil, nil
}
func (m *mockHolidayRepo) IsHoliday(ctx context.Context, date time.Time) (bool, error) {
	if m.isHolidayFn != nil {
		return m.isHolidayFn(ctx, date)
	}
	return false, nil
}

type mockScheduleRepo struct {
	sched *domain.WeekSchedule
}

func (m *mockScheduleRepo) Get(ctx context.Context) (*domain.WeekSchedule, error) {
	return m.sched, nil
}
func (m *mockScheduleRepo) Put(ctx context.Context, s *domain.WeekSchedule) error { return nil }

type mockPayrollRepo struct {
	getRunFn func(ctx context.Context, runID string) (*domain.PayrollRun, error)
}

func (m *mockPayrollRepo) CreateRun(ctx context.Context, run *domain.PayrollRun) error { return nil }
func (m *mockPayrollRepo) FinishRun(ctx context.Context, runID, status string, at time.Time) error {
	return nil
}
func (m *mockPayrollRepo) GetRun(ctx context.Context, runID string) (*domain.PayrollRun, error) {
	if m.getRunFn != nil {
		return m.getRunFn(ctx, runID)
	}
	return nil, fmt.Errorf("payroll run %s not found", runID)
}
func (m *mockPayrollRepo) ListRuns(ctx context.Context, limit int) ([]domain.PayrollRun, error) {
	return nil, nil
}
func (m *mockPayrollRepo) InsertSlips(ctx context.Context, slips []domain.PayrollSlip) error {
	return nil
}
func (m *mockPayrollRepo) ListSlips(ctx context.Context, runID string) ([]domain.PayrollSlip, error) {
	return nil, nil
}

type mockNotificationRepo struct{}

func (m *mockNotificationRepo) Create(ctx context.Context, n *domain.Notification) error { return nil }
func (m *mockNotificationRepo) ListByEmployee(ctx context.Context, employeeID string, limit int) ([]domain.Notification, error) {
	return nil, nil
}
func (m *mockNotificationRepo) UnreadCount(ctx context.Context, employeeID string) (int, error) {
	return 3, nil
}
func (m *mockNotificationRepo) MarkRead(ctx context.Context, id, employeeID string) error {
	return nil
}

// ---- Test helpers ----

var testSecret = []byte("test-secret")

// allWeekSchedule makes every weekday a working day with a window wide enough
// for tests running at any wall-clock time.
func allWeekSchedule() *domain.WeekSchedule {
	var s domain.WeekSchedule
	for i := range s.Days {
		s.Days[i] = domain.DayWindow{Working: true, Start: "00:00", End: "23:59"}
	}
	s.Timezone = "UTC"
	return &s
}

// officeZones has one zone around (43.2630, -2.9350), radius 150m.
func officeZones(ctx context.Context) ([]domain.Zone, error) {
	return []domain.Zone{
		{ID: "z1", Name: "HQ", Center: domain.GeoPoint{Lat: 43.2630, Lon: -2.9350}, RadiusM: 150, Active: true},
	}, nil
}

func makeDeps(opts ...func(*handler.Dependencies)) *handler.Dependencies {
	zoneRepo := &mockZoneRepo{listFn: officeZones}
	zones := usecases.NewZoneService(zoneRepo, nil)
	schedule := usecases.NewScheduleService(&mockScheduleRepo{sched: allWeekSchedule()}, nil, "UTC", 5)
	attendanceRepo := &mockAttendanceRepo{}
	requestRepo := &mockRequestRepo{}
	payrollRepo := &mockPayrollRepo{}

	d := &handler.Dependencies{
		Employees:     usecases.NewEmployeeService(&mockEmployeeRepo{}, nil),
		Zones:         zones,
		Attendance:    usecases.NewAttendanceService(attendanceRepo, zones, schedule, &mockHolidayRepo{}, nil, 15),
		Schedule:      schedule,
		Holidays:      usecases.NewHolidayService(&mockHolidayRepo{}, nil),
		Requests:      usecases.NewRequestService(requestRepo, attendanceRepo, nil, 12),
		Payroll:       usecases.NewPayrollService(payrollRepo, &mockEmployeeRepo{}, attendanceRepo, requestRepo, schedule, &mockHolidayRepo{}, &mockNotificationRepo{}, nil, usecases.DefaultPayrollRates()),
		Notifications: usecases.NewNotificationService(&mockNotificationRepo{}),
		Auth:          handler.AuthSettings{JWTSecret: testSecret, TokenTTLMins: 60},
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func bearer(t *testing.T, employeeID, role string) string {
	t.Helper()
	claims := handler.Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   employeeID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign test token: %v", err)
	}
	return "Bearer " + token
}

// ---- Auth ----

func TestLogin_Success(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("hunter2hunter2"), bcrypt.MinCost)
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Employees = usecases.NewEmployeeService(&mockEmployeeRepo{
			getByEmailFn: func(ctx context.Context, email string) (*domain.Employee, error) {
				return &domain.Employee{
					ID: "e1", Email: email, Name: "Amaia", Role: "employee",
					Active: true, PasswordHash: string(hash),
				}, nil
			},
		}, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("POST", "/v1/login",
		strings.NewReader(`{"email":"amaia@example.com","password":"hunter2hunter2"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Token    string           `json:"token"`
		Employee *domain.Employee `json:"employee"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Token == "" {
		t.Error("expected a token")
	}
	if result.Employee == nil || result.Employee.ID != "e1" {
		t.Errorf("expected employee e1, got %+v", result.Employee)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-horse-battery"), bcrypt.MinCost)
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Employees = usecases.NewEmployeeService(&mockEmployeeRepo{
			getByEmailFn: func(ctx context.Context, email string) (*domain.Employee, error) {
				return &domain.Employee{ID: "e1", Active: true, PasswordHash: string(hash)}, nil
			},
		}, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("POST", "/v1/login",
		strings.NewReader(`{"email":"amaia@example.com","password":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 401 {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAuth_MissingToken(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/me", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 401 {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAdminOnly_Forbidden(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/employees", nil)
	req.Header.Set("Authorization", bearer(t, "e1", "employee"))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 403 {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

// ---- Employees (admin) ----

func TestListEmployees_Pagination(t *testing.T) {
	employees := make([]domain.Employee, 5)
	for i := range employees {
		employees[i] = domain.Employee{ID: fmt.Sprintf("e%d", i), Name: fmt.Sprintf("Employee %d", i)}
	}

	deps := makeDeps(func(d *handler.Dependencies) {
		d.Employees = usecases.NewEmployeeService(&mockEmployeeRepo{
			listFn: func(ctx context.Context, activeOnly bool) ([]domain.Employee, error) {
				return employees, nil
			},
		}, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/employees?offset=2&limit=2", nil)
	req.Header.Set("Authorization", bearer(t, "admin1", "admin"))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []domain.Employee `json:"data"`
		Pagination struct {
			Offset int `json:"offset"`
			Limit  int `json:"limit"`
			Total  int `json:"total"`
		} `json:"pagination"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Pagination.Total != 5 {
		t.Errorf("expected total 5, got %d", result.Pagination.Total)
	}
	if len(result.Data) != 2 {
		t.Errorf("expected 2 employees in page, got %d", len(result.Data))
	}
	if result.Pagination.Offset != 2 {
		t.Errorf("expected offset 2, got %d", result.Pagination.Offset)
	}
	if resp.Header.Get("Link") == "" {
		t.Error("expected Link headers on paginated response")
	}
}

func TestSearchEmployees_MissingQuery(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/employees/search", nil)
	req.Header.Set("Authorization", bearer(t, "admin1", "admin"))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var apiErr struct {
		Code string `json:"code"`
	}
	json.NewDecoder(resp.Body).Decode(&apiErr)
	if apiErr.Code != "bad_request" {
		t.Errorf("expected bad_request error, got %s", apiErr.Code)
	}
}

// ---- Attendance portal ----

func TestAttendanceStatus_NoPosition(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/me/attendance/status", nil)
	req.Header.Set("Authorization", bearer(t, "e1", "employee"))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var status struct {
		CheckInAllowed bool   `json:"check_in_allowed"`
		NextAction     string `json:"next_action"`
		RefreshSeconds int    `json:"refresh_seconds"`
	}
	json.NewDecoder(resp.Body).Decode(&status)
	if status.CheckInAllowed {
		t.Error("check-in must not be allowed without a position")
	}
	if status.NextAction != "check_in" {
		t.Errorf("expected next_action check_in, got %q", status.NextAction)
	}
	if status.RefreshSeconds != 15 {
		t.Errorf("expected refresh_seconds 15, got %d", status.RefreshSeconds)
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "no-store" {
		t.Errorf("expected no-store, got %q", cc)
	}
}

func TestCheckIn_InsideZone(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("POST", "/v1/me/attendance/check-in",
		strings.NewReader(`{"lat":43.2630,"lon":-2.9350}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, "e1", "employee"))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var result struct {
		Geofence struct {
			Inside bool   `json:"inside"`
			ZoneID string `json:"zone_id"`
		} `json:"geofence"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if !result.Geofence.Inside {
		t.Error("expected inside geofence")
	}
	if result.Geofence.ZoneID != "z1" {
		t.Errorf("expected zone z1, got %q", result.Geofence.ZoneID)
	}
}

func TestCheckIn_OutsideZone(t *testing.T) {
	app := setupApp(makeDeps())

	// ~5 km away from HQ
	req := httptest.NewRequest("POST", "/v1/me/attendance/check-in",
		strings.NewReader(`{"lat":43.3080,"lon":-2.9350}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, "e1", "employee"))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 422 {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}

	var result struct {
		Code     string `json:"code"`
		Geofence struct {
			Inside    bool    `json:"inside"`
			DistanceM float64 `json:"distance_m"`
			RadiusM   float64 `json:"radius_m"`
		} `json:"geofence"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Code != "outside_zone" {
		t.Errorf("expected outside_zone, got %q", result.Code)
	}
	if result.Geofence.Inside {
		t.Error("geofence payload must report outside")
	}
	if result.Geofence.DistanceM <= result.Geofence.RadiusM {
		t.Errorf("distance %.1f should exceed radius %.1f", result.Geofence.DistanceM, result.Geofence.RadiusM)
	}
}

func TestCheckIn_AlreadyCheckedIn(t *testing.T) {
	in := time.Now().Add(-2 * time.Hour)
	deps := makeDeps(func(d *handler.Dependencies) {
		zones := d.Zones
		schedule := d.Schedule
		d.Attendance = usecases.NewAttendanceService(&mockAttendanceRepo{
			getDayFn: func(ctx context.Context, employeeID string, date time.Time) (*domain.AttendanceDay, error) {
				return &domain.AttendanceDay{ID: "d1", EmployeeID: employeeID, Date: date, CheckInAt: &in}, nil
			},
		}, zones, schedule, &mockHolidayRepo{}, nil, 15)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("POST", "/v1/me/attendance/check-in",
		strings.NewReader(`{"lat":43.2630,"lon":-2.9350}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, "e1", "employee"))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 409 {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}

	var apiErr struct {
		Code string `json:"code"`
	}
	json.NewDecoder(resp.Body).Decode(&apiErr)
	if apiErr.Code != "already_checked_in" {
		t.Errorf("expected already_checked_in, got %q", apiErr.Code)
	}
}

func TestCheckOut_OutsideZone(t *testing.T) {
	in := time.Now().Add(-4 * time.Hour)
	deps := makeDeps(func(d *handler.Dependencies) {
		zones := d.Zones
		schedule := d.Schedule
		d.Attendance = usecases.NewAttendanceService(&mockAttendanceRepo{
			getDayFn: func(ctx context.Context, employeeID string, date time.Time) (*domain.AttendanceDay, error) {
				return &domain.AttendanceDay{ID: "d1", EmployeeID: employeeID, Date: date, CheckInAt: &in}, nil
			},
		}, zones, schedule, &mockHolidayRepo{}, nil, 15)
	})
	app := setupApp(deps)

	// Punch-out from ~5 km away: the zone gate applies to leaving too.
	req := httptest.NewRequest("POST", "/v1/me/attendance/check-out",
		strings.NewReader(`{"lat":43.3080,"lon":-2.9350}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, "e1", "employee"))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 422 {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}

	var result struct {
		Code     string `json:"code"`
		Geofence struct {
			Inside    bool    `json:"inside"`
			DistanceM float64 `json:"distance_m"`
		} `json:"geofence"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Code != "outside_zone" {
		t.Errorf("expected outside_zone, got %q", result.Code)
	}
	if result.Geofence.Inside {
		t.Error("geofence payload must report outside")
	}
}

func TestCheckOut_NotCheckedIn(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("POST", "/v1/me/attendance/check-out",
		strings.NewReader(`{"lat":43.2630,"lon":-2.9350}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, "e1", "employee"))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 409 {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

// ---- Requests ----

func TestSubmitRequest_QuotaExceeded(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Requests = usecases.NewRequestService(&mockRequestRepo{
			sumLeaveFn: func(ctx context.Context, employeeID string, from, to time.Time) (int, error) {
				return 11, nil
			},
		}, &mockAttendanceRepo{}, nil, 12)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("POST", "/v1/me/requests",
		strings.NewReader(`{"kind":"leave","reason":"holiday","start_date":"2026-09-07","end_date":"2026-09-11"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, "e1", "employee"))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 422 {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}

	var apiErr struct {
		Code string `json:"code"`
	}
	json.NewDecoder(resp.Body).Decode(&apiErr)
	if apiErr.Code != "quota_exceeded" {
		t.Errorf("expected quota_exceeded, got %q", apiErr.Code)
	}
}

func TestDecideRequest_AlreadyDecided(t *testing.T) {
	decidedAt := time.Now().Add(-time.Hour)
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Requests = usecases.NewRequestService(&mockRequestRepo{
			getByIDFn: func(ctx context.Context, id string) (*domain.Request, error) {
				return &domain.Request{ID: id, Status: domain.StatusApproved, DecidedAt: &decidedAt}, nil
			},
		}, &mockAttendanceRepo{}, nil, 12)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("POST", "/v1/requests/r1/decision",
		strings.NewReader(`{"status":"rejected","note":"late"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, "admin1", "admin"))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 409 {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestDecideRequest_UnknownID(t *testing.T) {
	app := setupApp(makeDeps()) // repo GetByID returns (nil, nil)

	req := httptest.NewRequest("POST", "/v1/requests/no-such-id/decision",
		strings.NewReader(`{"status":"approved"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, "admin1", "admin"))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

// ---- Shared read endpoints ----

func TestZones_VisibleToEmployees(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/zones", nil)
	req.Header.Set("Authorization", bearer(t, "e1", "employee"))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var zones []domain.Zone
	json.NewDecoder(resp.Body).Decode(&zones)
	if len(zones) != 1 || zones[0].ID != "z1" {
		t.Errorf("expected 1 zone z1, got %+v", zones)
	}
}

func TestGetPayrollRun_NotFound(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/payroll/runs/missing", nil)
	req.Header.Set("Authorization", bearer(t, "admin1", "admin"))
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestHealth_Public(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/health", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
