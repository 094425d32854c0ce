package postgres

import (
	"context"

	"github.com/samirrijal/lankide/internal/core/domain"
)

// NotificationRepo implements ports.NotificationRepository with pgx.
type NotificationRepo struct {
	db *DB
}

// NewNotificationRepo creates a new NotificationRepo.
func NewNotificationRepo(db *DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

func (r *NotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO notifications (id, employee_id, kind, title, body)
		VALUES ($1, $2, $3, $4, $5)
	`, n.ID, n.EmployeeID, n.Kind, n.Title, n.Body)
	return err
}

func (r *NotificationRepo) ListByEmployee(ctx context.Context, employeeID string, limit int) ([]domain.Notification, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, employee_id, kind, title, COALESCE(body, ''), read, created_at
		FROM notifications
		WHERE employee_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, employeeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.EmployeeID, &n.Kind, &n.Title,
			&n.Body, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *NotificationRepo) UnreadCount(ctx context.Context, employeeID string) (int, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM notifications WHERE employee_id = $1 AND NOT read
	`, employeeID).Scan(&n)
	return n, err
}

func (r *NotificationRepo) MarkRead(ctx context.Context, id, employeeID string) error {
	_, err := r.db.Pool.Exec(ctx, `
		UPDATE notifications SET read = true WHERE id = $1 AND employee_id = $2
	`, id, employeeID)
	return err
}
