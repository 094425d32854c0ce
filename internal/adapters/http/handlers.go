package http

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/lankide/internal/core/domain"
	"github.com/samirrijal/lankide/internal/core/usecases"
	"github.com/samirrijal/lankide/internal/pkg/metrics"
)

// OrgStats holds row counts for the admin dashboard.
type OrgStats struct {
	Employees       int `json:"employees"`
	ActiveEmployees int `json:"active_employees"`
	Zones           int `json:"zones"`
	AttendanceDays  int `json:"attendance_days"`
	PendingRequests int `json:"pending_requests"`
}

// OrgStatsHandler returns row counts from the HR tables.
func OrgStatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.DB == nil {
			return errInternal(c, "database not available")
		}

		var stats OrgStats
		row := deps.DB.Pool.QueryRow(c.Context(), `
			SELECT
				(SELECT count(*) FROM employees),
				(SELECT count(*) FROM employees WHERE active),
				(SELECT count(*) FROM zones),
				(SELECT count(*) FROM attendance_days),
				(SELECT count(*) FROM requests WHERE status = 'pending')
		`)
		if err := row.Scan(&stats.Employees, &stats.ActiveEmployees, &stats.Zones,
			&stats.AttendanceDays, &stats.PendingRequests); err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "private, max-age=60")
		return c.JSON(stats)
	}
}

// ---- Employees ----

// CreateEmployeeHandler registers a new employee.
func CreateEmployeeHandler(deps *Dependencies) fiber.Handler {
	type createRequest struct {
		Number     string  `json:"number"`
		Name       string  `json:"name"`
		Email      string  `json:"email"`
		Position   string  `json:"position"`
		Department string  `json:"department"`
		Role       string  `json:"role"`
		BaseSalary float64 `json:"base_salary"`
		HiredAt    string  `json:"hired_at"` // "YYYY-MM-DD"
		Password   string  `json:"password"`
	}

	return func(c *fiber.Ctx) error {
		var req createRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		hiredAt := time.Now()
		if req.HiredAt != "" {
			t, err := time.Parse("2006-01-02", req.HiredAt)
			if err != nil {
				return errBadRequest(c, "hired_at must be YYYY-MM-DD")
			}
			hiredAt = t
		}

		e, err := deps.Employees.Create(c.Context(), usecases.CreateEmployeeInput{
			Number:     req.Number,
			Name:       req.Name,
			Email:      req.Email,
			Position:   req.Position,
			Department: req.Department,
			Role:       req.Role,
			BaseSalary: req.BaseSalary,
			HiredAt:    hiredAt,
			Password:   req.Password,
		})
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		return c.Status(201).JSON(e)
	}
}

// ListEmployeesHandler returns employees, offset/limit paginated.
func ListEmployeesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		activeOnly := c.QueryBool("active", false)
		employees, err := deps.Employees.List(c.Context(), activeOnly)
		if err != nil {
			return errInternal(c, err.Error())
		}

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 100)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 100
		}

		total := len(employees)
		if offset >= total {
			employees = nil
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			employees = employees[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: employees, Pagination: pg})
	}
}

// SearchEmployeesHandler performs fuzzy search on employee names.
func SearchEmployeesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := c.Query("q")
		if query == "" {
			return errBadRequest(c, "q query parameter is required")
		}
		if len(query) > 200 {
			return errBadRequest(c, "query too long (max 200 characters)")
		}
		limit := c.QueryInt("limit", 20)

		employees, err := deps.Employees.Search(c.Context(), query, limit)
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(employees)
	}
}

// GetEmployeeHandler returns one employee.
func GetEmployeeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		e, err := deps.Employees.GetByID(c.Context(), c.Params("id"))
		if err != nil {
			return errInternal(c, err.Error())
		}
		if e == nil {
			return errNotFound(c, "employee not found")
		}
		return c.JSON(e)
	}
}

// UpdateEmployeeHandler replaces an employee's mutable fields.
func UpdateEmployeeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		existing, err := deps.Employees.GetByID(c.Context(), c.Params("id"))
		if err != nil {
			return errInternal(c, err.Error())
		}
		if existing == nil {
			return errNotFound(c, "employee not found")
		}

		var e domain.Employee
		if err := c.BodyParser(&e); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		e.ID = existing.ID

		if err := deps.Employees.Update(c.Context(), &e); err != nil {
			return errBadRequest(c, err.Error())
		}
		return c.JSON(e)
	}
}

// DeactivateEmployeeHandler soft-deletes an employee.
func DeactivateEmployeeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Employees.Deactivate(c.Context(), c.Params("id")); err != nil {
			return errInternal(c, err.Error())
		}
		return c.SendStatus(204)
	}
}

// ---- Zones ----

// CreateZoneHandler adds a check-in zone. Creation order is the geofence
// first-match priority.
func CreateZoneHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var z domain.Zone
		if err := c.BodyParser(&z); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := deps.Zones.Create(c.Context(), &z); err != nil {
			return errBadRequest(c, err.Error())
		}
		return c.Status(201).JSON(z)
	}
}

// ListZonesHandler returns all zones in priority order.
func ListZonesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		zones, err := deps.Zones.List(c.Context())
		if err != nil {
			return errInternal(c, err.Error())
		}
		c.Set("Cache-Control", "private, max-age=300")
		return c.JSON(zones)
	}
}

// GetZoneHandler returns one zone.
func GetZoneHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		z, err := deps.Zones.GetByID(c.Context(), c.Params("id"))
		if err != nil {
			return errInternal(c, err.Error())
		}
		if z == nil {
			return errNotFound(c, "zone not found")
		}
		return c.JSON(z)
	}
}

// UpdateZoneHandler updates a zone in place.
func UpdateZoneHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var z domain.Zone
		if err := c.BodyParser(&z); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		z.ID = c.Params("id")
		if err := deps.Zones.Update(c.Context(), &z); err != nil {
			return errBadRequest(c, err.Error())
		}
		return c.JSON(z)
	}
}

// DeleteZoneHandler removes a zone.
func DeleteZoneHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Zones.Delete(c.Context(), c.Params("id")); err != nil {
			return errInternal(c, err.Error())
		}
		return c.SendStatus(204)
	}
}

// ---- Schedule & holidays ----

// GetScheduleHandler returns the effective weekly schedule.
func GetScheduleHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sched, err := deps.Schedule.Get(c.Context())
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(sched)
	}
}

// PutScheduleHandler replaces the weekly schedule.
func PutScheduleHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var sched domain.WeekSchedule
		if err := c.BodyParser(&sched); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := deps.Schedule.Put(c.Context(), sched); err != nil {
			return errBadRequest(c, err.Error())
		}
		return c.JSON(sched)
	}
}

// CreateHolidayHandler adds a calendar day.
func CreateHolidayHandler(deps *Dependencies) fiber.Handler {
	type holidayRequest struct {
		Date string `json:"date"` // "YYYY-MM-DD"
		Name string `json:"name"`
	}
	return func(c *fiber.Ctx) error {
		var req holidayRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return errBadRequest(c, "date must be YYYY-MM-DD")
		}
		h, err := deps.Holidays.Create(c.Context(), date, req.Name)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		return c.Status(201).JSON(h)
	}
}

// ListHolidaysHandler returns the calendar for one year.
func ListHolidaysHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		year := c.QueryInt("year", time.Now().Year())
		hs, err := deps.Holidays.ListYear(c.Context(), year)
		if err != nil {
			return errInternal(c, err.Error())
		}
		c.Set("Cache-Control", "private, max-age=600")
		return c.JSON(hs)
	}
}

// DeleteHolidayHandler removes a calendar day.
func DeleteHolidayHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Holidays.Delete(c.Context(), c.Params("id")); err != nil {
			return errInternal(c, err.Error())
		}
		return c.SendStatus(204)
	}
}

// ---- Requests (admin inbox) ----

// ListRequestsHandler is the admin inbox, filtered by status (default pending).
func ListRequestsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := c.Query("status")
		limit := c.QueryInt("limit", 50)
		reqs, err := deps.Requests.ListByStatus(c.Context(), status, limit)
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(reqs)
	}
}

// DecideRequestHandler approves or rejects a pending request.
func DecideRequestHandler(deps *Dependencies) fiber.Handler {
	type decisionRequest struct {
		Status string `json:"status"` // "approved" | "rejected"
		Note   string `json:"note"`
	}
	return func(c *fiber.Ctx) error {
		var req decisionRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		decided, err := deps.Requests.Decide(c.Context(), c.Params("id"), req.Status, employeeID(c), req.Note)
		switch {
		case errors.Is(err, usecases.ErrRequestNotFound):
			return errNotFound(c, "request not found")
		case errors.Is(err, usecases.ErrAlreadyDecided):
			return errConflict(c, "already_decided", "request was already decided")
		case err != nil:
			return errBadRequest(c, err.Error())
		}

		metrics.RequestsDecided.WithLabelValues(decided.Kind, decided.Status).Inc()
		return c.JSON(decided)
	}
}

// ---- Attendance (admin) ----

// ListAttendanceHandler lists attendance day rows, optionally per employee.
func ListAttendanceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, to, err := parseDateRange(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		limit := c.QueryInt("limit", 100)

		days, err := deps.Attendance.ListAll(c.Context(), c.Query("employee_id"), from, to, limit)
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(days)
	}
}

// parseDateRange reads from/to query params, defaulting to the last 31 days.
func parseDateRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	to := time.Now()
	from := to.AddDate(0, 0, -31)

	if v := c.Query("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return from, to, fmt.Errorf("from must be YYYY-MM-DD")
		}
		from = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return from, to, fmt.Errorf("to must be YYYY-MM-DD")
		}
		to = t
	}
	if to.Before(from) {
		return from, to, fmt.Errorf("to must not be before from")
	}
	return from, to, nil
}

// ---- Payroll ----

// StartPayrollRunHandler launches a payroll run for a period.
func StartPayrollRunHandler(deps *Dependencies) fiber.Handler {
	type startRequest struct {
		Period string `json:"period"` // "YYYY-MM"
	}
	return func(c *fiber.Ctx) error {
		var req startRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		run, err := deps.Payroll.StartRun(c.Context(), req.Period, employeeID(c))
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		return c.Status(202).JSON(run)
	}
}

// ListPayrollRunsHandler lists recent runs.
func ListPayrollRunsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		runs, err := deps.Payroll.ListRuns(c.Context(), c.QueryInt("limit", 24))
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(runs)
	}
}

// GetPayrollRunHandler returns a run with slips.
func GetPayrollRunHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		run, err := deps.Payroll.GetRun(c.Context(), c.Params("id"))
		if err != nil {
			return errNotFound(c, err.Error())
		}
		return c.JSON(run)
	}
}

// ExportPayrollRunHandler streams a run as an XLSX workbook.
func ExportPayrollRunHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		data, err := deps.Payroll.ExportXLSX(c.Context(), c.Params("id"))
		if err != nil {
			return errNotFound(c, err.Error())
		}
		c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set("Content-Disposition", `attachment; filename="payroll.xlsx"`)
		return c.Send(data)
	}
}
