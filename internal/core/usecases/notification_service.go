package usecases

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/samirrijal/lankide/internal/core/domain"
	"github.com/samirrijal/lankide/internal/core/ports"
)

// NotificationService stores in-app notifications and serves the portal's
// inbox. Rows are usually created by the notifier process from bus events;
// the HTTP API only reads and marks them.
type NotificationService struct {
	notifs ports.NotificationRepository
}

func NewNotificationService(notifs ports.NotificationRepository) *NotificationService {
	return &NotificationService{notifs: notifs}
}

func (s *NotificationService) Create(ctx context.Context, employeeID, kind, title, body string) (*domain.Notification, error) {
	if employeeID == "" || title == "" {
		return nil, errors.New("employee_id and title are required")
	}
	n := &domain.Notification{
		ID:         uuid.NewString(),
		EmployeeID: employeeID,
		Kind:       kind,
		Title:      title,
		Body:       body,
	}
	if err := s.notifs.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *NotificationService) List(ctx context.Context, employeeID string, limit int) ([]domain.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.notifs.ListByEmployee(ctx, employeeID, limit)
}

func (s *NotificationService) UnreadCount(ctx context.Context, employeeID string) (int, error) {
	return s.notifs.UnreadCount(ctx, employeeID)
}

// MarkRead marks one notification read. The employee ID guards against
// marking someone else's row.
func (s *NotificationService) MarkRead(ctx context.Context, id, employeeID string) error {
	return s.notifs.MarkRead(ctx, id, employeeID)
}
