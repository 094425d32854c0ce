package postgres

import (
	"context"
	"time"

	"github.com/samirrijal/lankide/internal/core/domain"
)

// HolidayRepo implements ports.HolidayRepository with pgx.
type HolidayRepo struct {
	db *DB
}

// NewHolidayRepo creates a new HolidayRepo.
func NewHolidayRepo(db *DB) *HolidayRepo {
	return &HolidayRepo{db: db}
}

func (r *HolidayRepo) Create(ctx context.Context, h *domain.Holiday) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO holidays (id, date, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (date) DO UPDATE SET name = EXCLUDED.name
	`, h.ID, h.Date, h.Name)
	return err
}

func (r *HolidayRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM holidays WHERE id = $1`, id)
	return err
}

func (r *HolidayRepo) ListYear(ctx context.Context, year int) ([]domain.Holiday, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, date, name, created_at
		FROM holidays
		WHERE EXTRACT(YEAR FROM date) = $1
		ORDER BY date
	`, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Holiday
	for rows.Next() {
		var h domain.Holiday
		if err := rows.Scan(&h.ID, &h.Date, &h.Name, &h.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *HolidayRepo) IsHoliday(ctx context.Context, date time.Time) (bool, error) {
	var exists bool
	// Format in the caller's (office) timezone; a timestamptz parameter would
	// be re-cast under the session timezone and could land on the wrong day.
	err := r.db.Pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM holidays WHERE date = $1::date)
	`, date.Format("2006-01-02")).Scan(&exists)
	return exists, err
}
