package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/lankide/internal/core/domain"
	"github.com/samirrijal/lankide/internal/core/usecases"
	"github.com/samirrijal/lankide/internal/pkg/metrics"
)

type positionBody struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (p positionBody) point() domain.GeoPoint {
	return domain.GeoPoint{Lat: p.Lat, Lon: p.Lon}
}

// MeHandler returns the authenticated employee's own record.
func MeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		e, err := deps.Employees.GetByID(c.Context(), employeeID(c))
		if err != nil {
			return errInternal(c, err.Error())
		}
		if e == nil {
			return errNotFound(c, "employee not found")
		}
		return c.JSON(e)
	}
}

// AttendanceStatusHandler returns the polled check-in gate state. The client
// reports its position via lat/lon query params; without them the geofence
// part of the gate is unknown and check-in is not allowed.
func AttendanceStatusHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var pos *domain.GeoPoint
		if c.Query("lat") != "" && c.Query("lon") != "" {
			pos = &domain.GeoPoint{
				Lat: c.QueryFloat("lat"),
				Lon: c.QueryFloat("lon"),
			}
		}

		status, err := deps.Attendance.Status(c.Context(), employeeID(c), pos)
		if err != nil {
			return errInternal(c, err.Error())
		}
		if pos != nil {
			metrics.GeofenceEvaluations.Inc()
		}
		c.Set("Cache-Control", "no-store")
		return c.JSON(status)
	}
}

// CheckInHandler records a punch-in after re-validating the gate.
func CheckInHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body positionBody
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		day, gf, err := deps.Attendance.CheckIn(c.Context(), employeeID(c), body.point())
		metrics.GeofenceEvaluations.Inc()

		var outside *usecases.OutsideZoneError
		switch {
		case errors.Is(err, usecases.ErrOutsideWorkingHours):
			metrics.CheckInsRejected.WithLabelValues("outside_working_hours").Inc()
			return errUnprocessable(c, "outside_working_hours", "check-in is only allowed during working hours")
		case errors.As(err, &outside):
			metrics.CheckInsRejected.WithLabelValues("outside_zone").Inc()
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":    "outside all active zones",
				"code":     "outside_zone",
				"geofence": outside.Result,
			})
		case errors.Is(err, usecases.ErrAlreadyCheckedIn):
			metrics.CheckInsRejected.WithLabelValues("already_checked_in").Inc()
			return errConflict(c, "already_checked_in", "already checked in today")
		case err != nil:
			return errInternal(c, err.Error())
		}

		metrics.CheckInsAccepted.WithLabelValues(day.Status).Inc()
		return c.Status(201).JSON(fiber.Map{"day": day, "geofence": gf})
	}
}

// CheckOutHandler records a punch-out. The zone gate still applies; only the
// working-hours gate is waived, so staying past the window is fine.
func CheckOutHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body positionBody
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		day, gf, err := deps.Attendance.CheckOut(c.Context(), employeeID(c), body.point())
		metrics.GeofenceEvaluations.Inc()

		var outside *usecases.OutsideZoneError
		switch {
		case errors.As(err, &outside):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":    "outside all active zones",
				"code":     "outside_zone",
				"geofence": outside.Result,
			})
		case errors.Is(err, usecases.ErrNotCheckedIn):
			return errConflict(c, "not_checked_in", "no open check-in today")
		case errors.Is(err, usecases.ErrAlreadyCheckedOut):
			return errConflict(c, "already_checked_out", "already checked out today")
		case err != nil:
			return errInternal(c, err.Error())
		}

		return c.JSON(fiber.Map{"day": day, "geofence": gf})
	}
}

// MyAttendanceHandler lists the caller's own attendance days.
func MyAttendanceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, to, err := parseDateRange(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		days, err := deps.Attendance.Days(c.Context(), employeeID(c), from, to)
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(days)
	}
}

// SubmitRequestHandler files a leave, overtime, or adjustment request.
func SubmitRequestHandler(deps *Dependencies) fiber.Handler {
	type submitRequest struct {
		Kind        string     `json:"kind"`
		Reason      string     `json:"reason"`
		StartDate   string     `json:"start_date"` // "YYYY-MM-DD"
		EndDate     string     `json:"end_date"`
		StartTime   string     `json:"start_time"` // overtime, "HH:MM"
		EndTime     string     `json:"end_time"`
		ProposedIn  *time.Time `json:"proposed_in"` // adjustment
		ProposedOut *time.Time `json:"proposed_out"`
	}

	return func(c *fiber.Ctx) error {
		var req submitRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		start, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return errBadRequest(c, "start_date must be YYYY-MM-DD")
		}
		end := start
		if req.EndDate != "" {
			end, err = time.Parse("2006-01-02", req.EndDate)
			if err != nil {
				return errBadRequest(c, "end_date must be YYYY-MM-DD")
			}
		}

		r := &domain.Request{
			EmployeeID:  employeeID(c),
			Kind:        req.Kind,
			Reason:      req.Reason,
			StartDate:   start,
			EndDate:     end,
			StartTime:   req.StartTime,
			EndTime:     req.EndTime,
			ProposedIn:  req.ProposedIn,
			ProposedOut: req.ProposedOut,
		}

		created, err := deps.Requests.Submit(c.Context(), r)
		if err != nil {
			if errors.Is(err, usecases.ErrQuotaExceeded) {
				return errUnprocessable(c, "quota_exceeded", err.Error())
			}
			return errBadRequest(c, err.Error())
		}
		return c.Status(201).JSON(created)
	}
}

// MyRequestsHandler lists the caller's own requests, newest first.
func MyRequestsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqs, err := deps.Requests.ListByEmployee(c.Context(), employeeID(c), c.QueryInt("limit", 50))
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(reqs)
	}
}

// MyQuotaHandler reports annual leave usage for a year.
func MyQuotaHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		year := c.QueryInt("year", time.Now().Year())
		quota, err := deps.Requests.Quota(c.Context(), employeeID(c), year)
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(quota)
	}
}

// MyNotificationsHandler lists the caller's notifications.
func MyNotificationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ns, err := deps.Notifications.List(c.Context(), employeeID(c), c.QueryInt("limit", 20))
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(ns)
	}
}

// UnreadCountHandler returns the badge count for the portal header.
func UnreadCountHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		n, err := deps.Notifications.UnreadCount(c.Context(), employeeID(c))
		if err != nil {
			return errInternal(c, err.Error())
		}
		c.Set("Cache-Control", "no-store")
		return c.JSON(fiber.Map{"unread": n})
	}
}

// MarkNotificationReadHandler marks one of the caller's notifications read.
func MarkNotificationReadHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Notifications.MarkRead(c.Context(), c.Params("id"), employeeID(c)); err != nil {
			return errInternal(c, err.Error())
		}
		return c.SendStatus(204)
	}
}
