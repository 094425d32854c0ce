package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/lankide/internal/core/domain"
)

// EmployeeRepo implements ports.EmployeeRepository with pgx.
type EmployeeRepo struct {
	db *DB
}

// NewEmployeeRepo creates a new EmployeeRepo.
func NewEmployeeRepo(db *DB) *EmployeeRepo {
	return &EmployeeRepo{db: db}
}

const employeeColumns = `
	id, number, name, email, COALESCE(position, ''), COALESCE(department, ''),
	role, base_salary, hired_at, active, password_hash, created_at`

func scanEmployee(row pgx.Row) (*domain.Employee, error) {
	var e domain.Employee
	err := row.Scan(
		&e.ID, &e.Number, &e.Name, &e.Email, &e.Position, &e.Department,
		&e.Role, &e.BaseSalary, &e.HiredAt, &e.Active, &e.PasswordHash, &e.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EmployeeRepo) Create(ctx context.Context, e *domain.Employee) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO employees (id, number, name, email, position, department, role,
		                       base_salary, hired_at, active, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, e.ID, e.Number, e.Name, e.Email, e.Position, e.Department, e.Role,
		e.BaseSalary, e.HiredAt, e.Active, e.PasswordHash)
	return err
}

func (r *EmployeeRepo) Update(ctx context.Context, e *domain.Employee) error {
	_, err := r.db.Pool.Exec(ctx, `
		UPDATE employees
		SET number = $2, name = $3, email = $4, position = $5, department = $6,
		    role = $7, base_salary = $8, hired_at = $9, active = $10
		WHERE id = $1
	`, e.ID, e.Number, e.Name, e.Email, e.Position, e.Department,
		e.Role, e.BaseSalary, e.HiredAt, e.Active)
	return err
}

func (r *EmployeeRepo) Deactivate(ctx context.Context, id string) error {
	_, err := r.db.Pool.Exec(ctx, `UPDATE employees SET active = false WHERE id = $1`, id)
	return err
}

func (r *EmployeeRepo) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	return scanEmployee(r.db.Pool.QueryRow(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id))
}

func (r *EmployeeRepo) GetByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	return scanEmployee(r.db.Pool.QueryRow(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE email = $1`, email))
}

func (r *EmployeeRepo) List(ctx context.Context, activeOnly bool) ([]domain.Employee, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+employeeColumns+`
		FROM employees
		WHERE ($1 = false OR active)
		ORDER BY name
	`, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEmployees(rows)
}

// Search matches name, number, or email with trigram similarity on the name.
func (r *EmployeeRepo) Search(ctx context.Context, query string, limit int) ([]domain.Employee, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+employeeColumns+`
		FROM employees
		WHERE name ILIKE '%' || $1 || '%'
		   OR number ILIKE $1 || '%'
		   OR email ILIKE $1 || '%'
		   OR name %> $1
		ORDER BY similarity(name, $1) DESC, name
		LIMIT $2
	`, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEmployees(rows)
}

func collectEmployees(rows pgx.Rows) ([]domain.Employee, error) {
	var out []domain.Employee
	for rows.Next() {
		var e domain.Employee
		if err := rows.Scan(
			&e.ID, &e.Number, &e.Name, &e.Email, &e.Position, &e.Department,
			&e.Role, &e.BaseSalary, &e.HiredAt, &e.Active, &e.PasswordHash, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
