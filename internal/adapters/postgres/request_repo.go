package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/lankide/internal/core/domain"
)

// RequestRepo implements ports.RequestRepository with pgx.
type RequestRepo struct {
	db *DB
}

// NewRequestRepo creates a new RequestRepo.
func NewRequestRepo(db *DB) *RequestRepo {
	return &RequestRepo{db: db}
}

const requestColumns = `
	id, employee_id, kind, status, reason, start_date, end_date, days,
	COALESCE(start_time, ''), COALESCE(end_time, ''), minutes,
	proposed_in, proposed_out,
	COALESCE(decided_by, ''), decided_at, COALESCE(decision_note, ''), created_at`

func scanRequest(row pgx.Row) (*domain.Request, error) {
	var rq domain.Request
	err := row.Scan(
		&rq.ID, &rq.EmployeeID, &rq.Kind, &rq.Status, &rq.Reason,
		&rq.StartDate, &rq.EndDate, &rq.Days,
		&rq.StartTime, &rq.EndTime, &rq.Minutes,
		&rq.ProposedIn, &rq.ProposedOut,
		&rq.DecidedBy, &rq.DecidedAt, &rq.DecisionNote, &rq.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rq, nil
}

func (r *RequestRepo) Create(ctx context.Context, rq *domain.Request) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO requests (id, employee_id, kind, status, reason, start_date, end_date,
		                      days, start_time, end_time, minutes, proposed_in, proposed_out)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, rq.ID, rq.EmployeeID, rq.Kind, rq.Status, rq.Reason, rq.StartDate, rq.EndDate,
		rq.Days, nullIfEmpty(rq.StartTime), nullIfEmpty(rq.EndTime), rq.Minutes,
		rq.ProposedIn, rq.ProposedOut)
	return err
}

func (r *RequestRepo) GetByID(ctx context.Context, id string) (*domain.Request, error) {
	return scanRequest(r.db.Pool.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE id = $1`, id))
}

func (r *RequestRepo) ListByEmployee(ctx context.Context, employeeID string, limit int) ([]domain.Request, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+requestColumns+`
		FROM requests
		WHERE employee_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, employeeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (r *RequestRepo) ListByStatus(ctx context.Context, status string, limit int) ([]domain.Request, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+requestColumns+`
		FROM requests
		WHERE status = $1
		ORDER BY created_at
		LIMIT $2
	`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

// Decide updates a pending request; the status guard keeps decisions
// idempotent under concurrent admins.
func (r *RequestRepo) Decide(ctx context.Context, id, status, deciderID, note string, at time.Time) (*domain.Request, error) {
	rq, err := scanRequest(r.db.Pool.QueryRow(ctx, `
		UPDATE requests
		SET status = $2, decided_by = $3, decision_note = $4, decided_at = $5
		WHERE id = $1 AND status = 'pending'
		RETURNING `+requestColumns,
		id, status, deciderID, nullIfEmpty(note), at))
	if err != nil {
		return nil, err
	}
	if rq == nil {
		return nil, errors.New("request is not pending")
	}
	return rq, nil
}

func (r *RequestRepo) SumApprovedLeaveDays(ctx context.Context, employeeID string, from, to time.Time) (int, error) {
	var days int
	err := r.db.Pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(days), 0)
		FROM requests
		WHERE employee_id = $1 AND kind = 'leave' AND status = 'approved'
		  AND start_date >= $2 AND start_date < $3
	`, employeeID, from, to).Scan(&days)
	return days, err
}

func (r *RequestRepo) SumApprovedOvertimeMinutes(ctx context.Context, employeeID string, from, to time.Time) (int, error) {
	var minutes int
	err := r.db.Pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(minutes), 0)
		FROM requests
		WHERE employee_id = $1 AND kind = 'overtime' AND status = 'approved'
		  AND start_date >= $2 AND start_date < $3
	`, employeeID, from, to).Scan(&minutes)
	return minutes, err
}

func collectRequests(rows pgx.Rows) ([]domain.Request, error) {
	var out []domain.Request
	for rows.Next() {
		var rq domain.Request
		if err := rows.Scan(
			&rq.ID, &rq.EmployeeID, &rq.Kind, &rq.Status, &rq.Reason,
			&rq.StartDate, &rq.EndDate, &rq.Days,
			&rq.StartTime, &rq.EndTime, &rq.Minutes,
			&rq.ProposedIn, &rq.ProposedOut,
			&rq.DecidedBy, &rq.DecidedAt, &rq.DecisionNote, &rq.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, rq)
	}
	return out, rows.Err()
}
