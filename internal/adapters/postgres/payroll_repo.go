package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/lankide/internal/core/domain"
)

// PayrollRepo implements ports.PayrollRepository with pgx.
type PayrollRepo struct {
	db *DB
}

// NewPayrollRepo creates a new PayrollRepo.
func NewPayrollRepo(db *DB) *PayrollRepo {
	return &PayrollRepo{db: db}
}

func (r *PayrollRepo) CreateRun(ctx context.Context, run *domain.PayrollRun) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO payroll_runs (id, period, status, started_by, started_at)
		VALUES ($1, $2, $3, $4, $5)
	`, run.ID, run.Period, run.Status, run.StartedBy, run.StartedAt)
	return err
}

func (r *PayrollRepo) FinishRun(ctx context.Context, runID, status string, at time.Time) error {
	_, err := r.db.Pool.Exec(ctx, `
		UPDATE payroll_runs SET status = $2, completed_at = $3 WHERE id = $1
	`, runID, status, at)
	return err
}

func (r *PayrollRepo) GetRun(ctx context.Context, runID string) (*domain.PayrollRun, error) {
	var run domain.PayrollRun
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, period, status, started_by, started_at, completed_at
		FROM payroll_runs WHERE id = $1
	`, runID).Scan(&run.ID, &run.Period, &run.Status, &run.StartedBy, &run.StartedAt, &run.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("payroll run %s not found", runID)
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *PayrollRepo) ListRuns(ctx context.Context, limit int) ([]domain.PayrollRun, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, period, status, started_by, started_at, completed_at
		FROM payroll_runs
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PayrollRun
	for rows.Next() {
		var run domain.PayrollRun
		if err := rows.Scan(&run.ID, &run.Period, &run.Status,
			&run.StartedBy, &run.StartedAt, &run.CompletedAt); err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// InsertSlips writes all slips of a run using pgx.Batch.
func (r *PayrollRepo) InsertSlips(ctx context.Context, slips []domain.PayrollSlip) error {
	batch := &pgx.Batch{}
	for _, s := range slips {
		batch.Queue(`
			INSERT INTO payroll_slips (id, run_id, employee_id, employee_name, base_salary,
			                           overtime_minutes, overtime_pay, late_days, late_deduction,
			                           absent_days, absent_deduction, net_pay)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`, s.ID, s.RunID, s.EmployeeID, s.EmployeeName, s.BaseSalary,
			s.OvertimeMinutes, s.OvertimePay, s.LateDays, s.LateDeduction,
			s.AbsentDays, s.AbsentDeduction, s.NetPay)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range slips {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

func (r *PayrollRepo) ListSlips(ctx context.Context, runID string) ([]domain.PayrollSlip, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, run_id, employee_id, employee_name, base_salary,
		       overtime_minutes, overtime_pay, late_days, late_deduction,
		       absent_days, absent_deduction, net_pay, created_at
		FROM payroll_slips
		WHERE run_id = $1
		ORDER BY employee_name
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PayrollSlip
	for rows.Next() {
		var s domain.PayrollSlip
		if err := rows.Scan(&s.ID, &s.RunID, &s.EmployeeID, &s.EmployeeName, &s.BaseSalary,
			&s.OvertimeMinutes, &s.OvertimePay, &s.LateDays, &s.LateDeduction,
			&s.AbsentDays, &s.AbsentDeduction, &s.NetPay, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
