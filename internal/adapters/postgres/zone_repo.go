package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/lankide/internal/core/domain"
)

// ZoneRepo implements ports.ZoneRepository with pgx. Zones are listed in
// creation order; geofence evaluation takes the first containing zone.
type ZoneRepo struct {
	db *DB
}

// NewZoneRepo creates a new ZoneRepo.
func NewZoneRepo(db *DB) *ZoneRepo {
	return &ZoneRepo{db: db}
}

func (r *ZoneRepo) Create(ctx context.Context, z *domain.Zone) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO zones (id, name, lat, lon, radius_m, active)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, z.ID, z.Name, z.Center.Lat, z.Center.Lon, z.RadiusM, z.Active)
	return err
}

func (r *ZoneRepo) Update(ctx context.Context, z *domain.Zone) error {
	_, err := r.db.Pool.Exec(ctx, `
		UPDATE zones
		SET name = $2, lat = $3, lon = $4, radius_m = $5, active = $6
		WHERE id = $1
	`, z.ID, z.Name, z.Center.Lat, z.Center.Lon, z.RadiusM, z.Active)
	return err
}

func (r *ZoneRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM zones WHERE id = $1`, id)
	return err
}

func (r *ZoneRepo) GetByID(ctx context.Context, id string) (*domain.Zone, error) {
	var z domain.Zone
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, name, lat, lon, radius_m, active, created_at
		FROM zones WHERE id = $1
	`, id).Scan(&z.ID, &z.Name, &z.Center.Lat, &z.Center.Lon, &z.RadiusM, &z.Active, &z.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &z, nil
}

func (r *ZoneRepo) List(ctx context.Context) ([]domain.Zone, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, lat, lon, radius_m, active, created_at
		FROM zones
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var zones []domain.Zone
	for rows.Next() {
		var z domain.Zone
		if err := rows.Scan(&z.ID, &z.Name, &z.Center.Lat, &z.Center.Lon,
			&z.RadiusM, &z.Active, &z.CreatedAt); err != nil {
			return nil, err
		}
		zones = append(zones, z)
	}
	return zones, rows.Err()
}
