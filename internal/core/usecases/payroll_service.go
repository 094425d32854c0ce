package usecases

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/samirrijal/lankide/internal/core/domain"
	"github.com/samirrijal/lankide/internal/core/ports"
)

// PayrollRates parameterises the monthly computation.
type PayrollRates struct {
	WorkingHoursPerDay  float64 // for the hourly rate
	WorkingDaysPerMonth float64
	OvertimeMultiplier  float64 // e.g. 1.5
	LateDeduction       float64 // flat amount per late day
}

// DefaultPayrollRates mirror the legacy configuration.
func DefaultPayrollRates() PayrollRates {
	return PayrollRates{
		WorkingHoursPerDay:  8,
		WorkingDaysPerMonth: 22,
		OvertimeMultiplier:  1.5,
		LateDeduction:       10,
	}
}

// PayrollService starts payroll runs, computes slips, and exports them.
// The heavy lifting runs inside a Temporal workflow; this service is called
// both from HTTP handlers (start/read/export) and from workflow activities
// (ComputePeriod).
type PayrollService struct {
	payroll    ports.PayrollRepository
	employees  ports.EmployeeRepository
	attendance ports.AttendanceRepository
	requests   ports.RequestRepository
	schedule   ScheduleProvider
	holidays   ports.HolidayRepository
	notifs     ports.NotificationRepository
	starter    ports.PayrollStarter

	rates PayrollRates
}

// NewPayrollService creates a new PayrollService. starter may be nil in a
// worker process (which never starts runs itself).
func NewPayrollService(
	payroll ports.PayrollRepository,
	employees ports.EmployeeRepository,
	attendance ports.AttendanceRepository,
	requests ports.RequestRepository,
	schedule ScheduleProvider,
	holidays ports.HolidayRepository,
	notifs ports.NotificationRepository,
	starter ports.PayrollStarter,
	rates PayrollRates,
) *PayrollService {
	if rates.WorkingHoursPerDay <= 0 {
		rates = DefaultPayrollRates()
	}
	return &PayrollService{
		payroll:    payroll,
		employees:  employees,
		attendance: attendance,
		requests:   requests,
		schedule:   schedule,
		holidays:   holidays,
		notifs:     notifs,
		starter:    starter,
		rates:      rates,
	}
}

// StartRun creates the run row and hands it to the workflow engine.
func (s *PayrollService) StartRun(ctx context.Context, period, startedBy string) (*domain.PayrollRun, error) {
	if _, err := time.Parse("2006-01", period); err != nil {
		return nil, fmt.Errorf("period must be YYYY-MM: %w", err)
	}
	// No starter, no run row: otherwise it would sit in "running" forever.
	if s.starter == nil {
		return nil, fmt.Errorf("payroll worker not configured")
	}

	run := &domain.PayrollRun{
		ID:        uuid.NewString(),
		Period:    period,
		Status:    "running",
		StartedBy: startedBy,
		StartedAt: time.Now(),
	}
	if err := s.payroll.CreateRun(ctx, run); err != nil {
		return nil, err
	}
	if err := s.starter.StartPayrollRun(ctx, run.ID, period, startedBy); err != nil {
		_ = s.payroll.FinishRun(ctx, run.ID, "failed", time.Now())
		return nil, fmt.Errorf("start workflow: %w", err)
	}
	return run, nil
}

// GetRun returns a run with its slips.
func (s *PayrollService) GetRun(ctx context.Context, runID string) (*domain.PayrollRun, error) {
	run, err := s.payroll.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	slips, err := s.payroll.ListSlips(ctx, runID)
	if err != nil {
		return nil, err
	}
	run.Slips = slips
	return run, nil
}

// ListRuns returns recent runs without slips.
func (s *PayrollService) ListRuns(ctx context.Context, limit int) ([]domain.PayrollRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 24
	}
	return s.payroll.ListRuns(ctx, limit)
}

// PeriodBounds returns the half-open [first, next-month) range of a period in
// the schedule timezone.
func (s *PayrollService) PeriodBounds(ctx context.Context, period string) (time.Time, time.Time, error) {
	sched, err := s.schedule.Get(ctx)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	t, err := time.ParseInLocation("2006-01", period, sched.Location())
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("period must be YYYY-MM: %w", err)
	}
	return t, t.AddDate(0, 1, 0), nil
}

// expectedWorkdays counts scheduled working days in [from, to), net of
// holidays.
func (s *PayrollService) expectedWorkdays(ctx context.Context, sched domain.WeekSchedule, from, to time.Time) (int, error) {
	var holidaySet map[string]bool
	if s.holidays != nil {
		hs, err := s.holidays.ListYear(ctx, from.Year())
		if err != nil {
			return 0, err
		}
		holidaySet = make(map[string]bool, len(hs))
		for _, h := range hs {
			holidaySet[h.Date.Format("2006-01-02")] = true
		}
	}

	n := 0
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		if !sched.Days[d.Weekday()].Working {
			continue
		}
		if holidaySet[d.Format("2006-01-02")] {
			continue
		}
		n++
	}
	return n, nil
}

// ComputeSlip turns one employee's month into a payslip. Pure arithmetic,
// exported for the workflow activity and for tests.
func ComputeSlip(e domain.Employee, rates PayrollRates, lateDays, presentDays, expectedDays, leaveDays, overtimeMinutes int) domain.PayrollSlip {
	hourlyRate := 0.0
	if rates.WorkingDaysPerMonth > 0 && rates.WorkingHoursPerDay > 0 {
		hourlyRate = e.BaseSalary / (rates.WorkingDaysPerMonth * rates.WorkingHoursPerDay)
	}
	dailyRate := hourlyRate * rates.WorkingHoursPerDay

	absent := expectedDays - presentDays - leaveDays
	if absent < 0 {
		absent = 0
	}

	overtimePay := float64(overtimeMinutes) / 60 * hourlyRate * rates.OvertimeMultiplier
	lateDeduction := float64(lateDays) * rates.LateDeduction
	absentDeduction := float64(absent) * dailyRate

	return domain.PayrollSlip{
		EmployeeID:      e.ID,
		EmployeeName:    e.Name,
		BaseSalary:      e.BaseSalary,
		OvertimeMinutes: overtimeMinutes,
		OvertimePay:     overtimePay,
		LateDays:        lateDays,
		LateDeduction:   lateDeduction,
		AbsentDays:      absent,
		AbsentDeduction: absentDeduction,
		NetPay:          e.BaseSalary + overtimePay - lateDeduction - absentDeduction,
	}
}

// ComputePeriod computes and persists slips for every active employee, then
// notifies each of them. Called from the payroll workflow activity.
func (s *PayrollService) ComputePeriod(ctx context.Context, runID, period string) (int, error) {
	from, to, err := s.PeriodBounds(ctx, period)
	if err != nil {
		return 0, err
	}
	sched, err := s.schedule.Get(ctx)
	if err != nil {
		return 0, err
	}
	expected, err := s.expectedWorkdays(ctx, sched, from, to)
	if err != nil {
		return 0, err
	}

	employees, err := s.employees.List(ctx, true)
	if err != nil {
		return 0, err
	}

	slips := make([]domain.PayrollSlip, 0, len(employees))
	for _, e := range employees {
		late, onTime, _, err := s.attendance.MonthSummary(ctx, e.ID, from, to)
		if err != nil {
			return 0, fmt.Errorf("summary for %s: %w", e.ID, err)
		}
		leaveDays, err := s.requests.SumApprovedLeaveDays(ctx, e.ID, from, to)
		if err != nil {
			return 0, err
		}
		overtime, err := s.requests.SumApprovedOvertimeMinutes(ctx, e.ID, from, to)
		if err != nil {
			return 0, err
		}

		slip := ComputeSlip(e, s.rates, late, late+onTime, expected, leaveDays, overtime)
		slip.ID = uuid.NewString()
		slip.RunID = runID
		slips = append(slips, slip)
	}

	if err := s.payroll.InsertSlips(ctx, slips); err != nil {
		return 0, err
	}
	return len(slips), nil
}

// FinishRun marks the run completed or failed.
func (s *PayrollService) FinishRun(ctx context.Context, runID, status string) error {
	return s.payroll.FinishRun(ctx, runID, status, time.Now())
}

// NotifyPayslips creates one in-app notification per slip in the run.
func (s *PayrollService) NotifyPayslips(ctx context.Context, runID string) error {
	run, err := s.payroll.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	slips, err := s.payroll.ListSlips(ctx, runID)
	if err != nil {
		return err
	}
	for _, slip := range slips {
		n := &domain.Notification{
			ID:         uuid.NewString(),
			EmployeeID: slip.EmployeeID,
			Kind:       "payslip",
			Title:      "Payslip ready",
			Body:       fmt.Sprintf("Your payslip for %s is available.", run.Period),
		}
		if err := s.notifs.Create(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

// ExportXLSX renders a run as a spreadsheet.
func (s *PayrollService) ExportXLSX(ctx context.Context, runID string) ([]byte, error) {
	run, err := s.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := "Payroll " + run.Period
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Employee", "Base salary", "Overtime (min)", "Overtime pay",
		"Late days", "Late deduction", "Absent days", "Absent deduction", "Net pay"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for row, slip := range run.Slips {
		values := []any{
			slip.EmployeeName, slip.BaseSalary, slip.OvertimeMinutes, slip.OvertimePay,
			slip.LateDays, slip.LateDeduction, slip.AbsentDays, slip.AbsentDeduction, slip.NetPay,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
