package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/lankide/internal/core/domain"
)

// AttendanceRepo implements ports.AttendanceRepository with pgx. One row per
// employee per office-local date, enforced by a unique constraint.
type AttendanceRepo struct {
	db *DB
}

// NewAttendanceRepo creates a new AttendanceRepo.
func NewAttendanceRepo(db *DB) *AttendanceRepo {
	return &AttendanceRepo{db: db}
}

const attendanceColumns = `
	id, employee_id, date, check_in_at, check_in_lat, check_in_lon, check_in_dist_m,
	COALESCE(check_in_zone_id, ''), check_out_at, check_out_lat, check_out_lon,
	check_out_dist_m, COALESCE(status, ''), worked_seconds, auto_closed`

func scanAttendanceDay(row pgx.Row) (*domain.AttendanceDay, error) {
	var (
		d              domain.AttendanceDay
		inLat, inLon   *float64
		outLat, outLon *float64
	)
	err := row.Scan(
		&d.ID, &d.EmployeeID, &d.Date, &d.CheckInAt, &inLat, &inLon, &d.CheckInDistM,
		&d.CheckInZoneID, &d.CheckOutAt, &outLat, &outLon,
		&d.CheckOutDistM, &d.Status, &d.WorkedSeconds, &d.AutoClosed,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if inLat != nil && inLon != nil {
		d.CheckInPos = &domain.GeoPoint{Lat: *inLat, Lon: *inLon}
	}
	if outLat != nil && outLon != nil {
		d.CheckOutPos = &domain.GeoPoint{Lat: *outLat, Lon: *outLon}
	}
	return &d, nil
}

func (r *AttendanceRepo) GetDay(ctx context.Context, employeeID string, date time.Time) (*domain.AttendanceDay, error) {
	return scanAttendanceDay(r.db.Pool.QueryRow(ctx, `
		SELECT `+attendanceColumns+`
		FROM attendance_days
		WHERE employee_id = $1 AND date = $2
	`, employeeID, date))
}

// CheckIn inserts the day row, or fills the punch into a pre-created row
// (e.g. one written by an approved adjustment). The WHERE guard makes a
// second check-in on the same date a no-row conflict.
func (r *AttendanceRepo) CheckIn(ctx context.Context, day *domain.AttendanceDay) (*domain.AttendanceDay, error) {
	var inLat, inLon *float64
	if day.CheckInPos != nil {
		inLat, inLon = &day.CheckInPos.Lat, &day.CheckInPos.Lon
	}

	saved, err := scanAttendanceDay(r.db.Pool.QueryRow(ctx, `
		INSERT INTO attendance_days (id, employee_id, date, check_in_at,
		                             check_in_lat, check_in_lon, check_in_dist_m,
		                             check_in_zone_id, status)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (employee_id, date) DO UPDATE
		SET check_in_at = EXCLUDED.check_in_at,
		    check_in_lat = EXCLUDED.check_in_lat,
		    check_in_lon = EXCLUDED.check_in_lon,
		    check_in_dist_m = EXCLUDED.check_in_dist_m,
		    check_in_zone_id = EXCLUDED.check_in_zone_id,
		    status = EXCLUDED.status
		WHERE attendance_days.check_in_at IS NULL
		RETURNING `+attendanceColumns,
		day.EmployeeID, day.Date, day.CheckInAt, inLat, inLon,
		day.CheckInDistM, nullIfEmpty(day.CheckInZoneID), day.Status))
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, fmt.Errorf("attendance day already has a check-in")
	}
	return saved, nil
}

func (r *AttendanceRepo) CheckOut(ctx context.Context, employeeID string, date, at time.Time, pos domain.GeoPoint, distM float64) (*domain.AttendanceDay, error) {
	saved, err := scanAttendanceDay(r.db.Pool.QueryRow(ctx, `
		UPDATE attendance_days
		SET check_out_at = $3, check_out_lat = $4, check_out_lon = $5,
		    check_out_dist_m = $6,
		    worked_seconds = EXTRACT(EPOCH FROM ($3 - check_in_at))::bigint
		WHERE employee_id = $1 AND date = $2
		  AND check_in_at IS NOT NULL AND check_out_at IS NULL
		RETURNING `+attendanceColumns,
		employeeID, date, at, pos.Lat, pos.Lon, distM))
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, fmt.Errorf("no open attendance day to check out")
	}
	return saved, nil
}

// Rewrite replaces the punches for one date, creating the row if an approved
// adjustment targets a day with no record.
func (r *AttendanceRepo) Rewrite(ctx context.Context, employeeID string, date time.Time, in, out *time.Time) error {
	var worked *int64
	if in != nil && out != nil {
		secs := int64(out.Sub(*in).Seconds())
		worked = &secs
	}
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO attendance_days (id, employee_id, date, check_in_at, check_out_at,
		                             status, worked_seconds)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, 'adjusted', COALESCE($5, 0))
		ON CONFLICT (employee_id, date) DO UPDATE
		SET check_in_at = EXCLUDED.check_in_at,
		    check_out_at = EXCLUDED.check_out_at,
		    status = 'adjusted',
		    worked_seconds = EXCLUDED.worked_seconds,
		    auto_closed = false
	`, employeeID, date, in, out, worked)
	return err
}

func (r *AttendanceRepo) ListDays(ctx context.Context, employeeID string, from, to time.Time) ([]domain.AttendanceDay, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+attendanceColumns+`
		FROM attendance_days
		WHERE employee_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date DESC
	`, employeeID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDays(rows)
}

func (r *AttendanceRepo) ListAll(ctx context.Context, employeeID string, from, to time.Time, limit int) ([]domain.AttendanceDay, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+attendanceColumns+`
		FROM attendance_days
		WHERE ($1 = '' OR employee_id = $1)
		  AND date >= $2 AND date <= $3
		ORDER BY date DESC, employee_id
		LIMIT $4
	`, employeeID, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDays(rows)
}

// CloseStale closes rows whose check-in is older than the cutoff and that
// never checked out. Used by the nightly auto-checkout job; the returned rows
// identify the employees to notify.
func (r *AttendanceRepo) CloseStale(ctx context.Context, olderThan, closeAt time.Time) ([]domain.AttendanceDay, error) {
	rows, err := r.db.Pool.Query(ctx, `
		UPDATE attendance_days
		SET check_out_at = $2, auto_closed = true,
		    worked_seconds = EXTRACT(EPOCH FROM ($2 - check_in_at))::bigint
		WHERE check_in_at IS NOT NULL AND check_out_at IS NULL AND check_in_at < $1
		RETURNING employee_id, date
	`, olderThan, closeAt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var closed []domain.AttendanceDay
	for rows.Next() {
		var day domain.AttendanceDay
		if err := rows.Scan(&day.EmployeeID, &day.Date); err != nil {
			return nil, err
		}
		closed = append(closed, day)
	}
	return closed, rows.Err()
}

func (r *AttendanceRepo) MonthSummary(ctx context.Context, employeeID string, from, to time.Time) (int, int, int64, error) {
	var late, onTime int
	var worked int64
	err := r.db.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE status = 'late'),
		       COUNT(*) FILTER (WHERE status = 'on_time'),
		       COALESCE(SUM(worked_seconds), 0)
		FROM attendance_days
		WHERE employee_id = $1 AND date >= $2 AND date < $3
		  AND check_in_at IS NOT NULL
	`, employeeID, from, to).Scan(&late, &onTime, &worked)
	if err != nil {
		return 0, 0, 0, err
	}
	return late, onTime, worked, nil
}

func collectDays(rows pgx.Rows) ([]domain.AttendanceDay, error) {
	var out []domain.AttendanceDay
	for rows.Next() {
		var (
			d              domain.AttendanceDay
			inLat, inLon   *float64
			outLat, outLon *float64
		)
		if err := rows.Scan(
			&d.ID, &d.EmployeeID, &d.Date, &d.CheckInAt, &inLat, &inLon, &d.CheckInDistM,
			&d.CheckInZoneID, &d.CheckOutAt, &outLat, &outLon,
			&d.CheckOutDistM, &d.Status, &d.WorkedSeconds, &d.AutoClosed,
		); err != nil {
			return nil, err
		}
		if inLat != nil && inLon != nil {
			d.CheckInPos = &domain.GeoPoint{Lat: *inLat, Lon: *inLon}
		}
		if outLat != nil && outLon != nil {
			d.CheckOutPos = &domain.GeoPoint{Lat: *outLat, Lon: *outLon}
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
