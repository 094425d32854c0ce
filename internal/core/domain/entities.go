package domain

import (
	"time"
)

// Employee is a person on the payroll.
type Employee struct {
	ID           string    `json:"id"`
	Number       string    `json:"number"` // e.g. EMP-0042
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Position     string    `json:"position"`
	Department   string    `json:"department"`
	Role         string    `json:"role"` // "admin" | "employee"
	BaseSalary   float64   `json:"base_salary"`
	HiredAt      time.Time `json:"hired_at"`
	Active       bool      `json:"active"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Zone is a circular check-in zone employees must be inside to punch.
type Zone struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Center    GeoPoint  `json:"center"`
	RadiusM   float64   `json:"radius_m"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// AttendanceDay is one employee's attendance record for one office-local date.
type AttendanceDay struct {
	ID            string     `json:"id"`
	EmployeeID    string     `json:"employee_id"`
	Date          time.Time  `json:"date"` // 00:00 in the office timezone
	CheckInAt     *time.Time `json:"check_in_at,omitempty"`
	CheckInPos    *GeoPoint  `json:"check_in_pos,omitempty"`
	CheckInDistM  *float64   `json:"check_in_dist_m,omitempty"`
	CheckInZoneID string     `json:"check_in_zone_id,omitempty"`
	CheckOutAt    *time.Time `json:"check_out_at,omitempty"`
	CheckOutPos   *GeoPoint  `json:"check_out_pos,omitempty"`
	CheckOutDistM *float64   `json:"check_out_dist_m,omitempty"`
	Status        string     `json:"status,omitempty"` // "on_time" | "late"
	WorkedSeconds int64      `json:"worked_seconds"`
	AutoClosed    bool       `json:"auto_closed"`
}

// Request kinds.
const (
	RequestLeave      = "leave"
	RequestOvertime   = "overtime"
	RequestAdjustment = "adjustment"
)

// Request statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Request is a leave, overtime, or punch-adjustment request.
type Request struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employee_id"`
	Kind       string    `json:"kind"`
	Status     string    `json:"status"`
	Reason     string    `json:"reason"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Days       int       `json:"days,omitempty"` // leave only, inclusive

	// Overtime: requested window on StartDate.
	StartTime string `json:"start_time,omitempty"` // "HH:MM"
	EndTime   string `json:"end_time,omitempty"`
	Minutes   int    `json:"minutes,omitempty"`

	// Adjustment: proposed punches for StartDate.
	ProposedIn  *time.Time `json:"proposed_in,omitempty"`
	ProposedOut *time.Time `json:"proposed_out,omitempty"`

	DecidedBy    string     `json:"decided_by,omitempty"`
	DecidedAt    *time.Time `json:"decided_at,omitempty"`
	DecisionNote string     `json:"decision_note,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// LeaveQuota summarises annual leave usage.
type LeaveQuota struct {
	Year          int `json:"year"`
	QuotaDays     int `json:"quota_days"`
	UsedDays      int `json:"used_days"`
	RemainingDays int `json:"remaining_days"`
}

// Holiday is a non-working calendar day.
type Holiday struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// PayrollRun is one monthly payroll execution.
type PayrollRun struct {
	ID          string        `json:"id"`
	Period      string        `json:"period"` // "YYYY-MM"
	Status      string        `json:"status"` // "running" | "completed" | "failed"
	StartedBy   string        `json:"started_by"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	Slips       []PayrollSlip `json:"slips,omitempty"`
}

// PayrollSlip is one employee's pay for one run.
type PayrollSlip struct {
	ID              string    `json:"id"`
	RunID           string    `json:"run_id"`
	EmployeeID      string    `json:"employee_id"`
	EmployeeName    string    `json:"employee_name"`
	BaseSalary      float64   `json:"base_salary"`
	OvertimeMinutes int       `json:"overtime_minutes"`
	OvertimePay     float64   `json:"overtime_pay"`
	LateDays        int       `json:"late_days"`
	LateDeduction   float64   `json:"late_deduction"`
	AbsentDays      int       `json:"absent_days"`
	AbsentDeduction float64   `json:"absent_deduction"`
	NetPay          float64   `json:"net_pay"`
	CreatedAt       time.Time `json:"created_at"`
}

// Notification is an in-app notification for one employee.
type Notification struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employee_id"`
	Kind       string    `json:"kind"` // "request_submitted" | "request_decided" | "payslip"
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"created_at"`
}
