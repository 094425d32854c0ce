package domain

import "time"

// AttendanceEvent is published on every accepted check-in/check-out.
type AttendanceEvent struct {
	Time       time.Time `json:"time"`
	EmployeeID string    `json:"employee_id"`
	Action     string    `json:"action"` // "check_in" | "check_out" | "auto_checkout"
	Date       string    `json:"date"`   // "YYYY-MM-DD" office-local
	ZoneID     string    `json:"zone_id,omitempty"`
	DistanceM  float64   `json:"distance_m,omitempty"`
	Status     string    `json:"status,omitempty"` // "on_time" | "late"
}

// RequestEvent is published when a request is submitted or decided.
type RequestEvent struct {
	Time       time.Time `json:"time"`
	RequestID  string    `json:"request_id"`
	EmployeeID string    `json:"employee_id"`
	Kind       string    `json:"kind"`
	Status     string    `json:"status"`
	DecidedBy  string    `json:"decided_by,omitempty"`
	Note       string    `json:"note,omitempty"`
}
