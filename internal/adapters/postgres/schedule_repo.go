package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/lankide/internal/core/domain"
)

// ScheduleRepo stores the single company-wide weekly schedule as one JSONB
// row. Get returns nil when nothing has been configured yet.
type ScheduleRepo struct {
	db *DB
}

// NewScheduleRepo creates a new ScheduleRepo.
func NewScheduleRepo(db *DB) *ScheduleRepo {
	return &ScheduleRepo{db: db}
}

func (r *ScheduleRepo) Get(ctx context.Context) (*domain.WeekSchedule, error) {
	var raw []byte
	err := r.db.Pool.QueryRow(ctx,
		`SELECT config FROM schedule WHERE id = 1`).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var s domain.WeekSchedule
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ScheduleRepo) Put(ctx context.Context, s *domain.WeekSchedule) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	_, err = r.db.Pool.Exec(ctx, `
		INSERT INTO schedule (id, config, updated_at)
		VALUES (1, $1, now())
		ON CONFLICT (id) DO UPDATE SET config = EXCLUDED.config, updated_at = now()
	`, raw)
	return err
}
