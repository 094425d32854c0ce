package ports

import (
	"context"

	"github.com/samirrijal/lankide/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishAttendanceEvent(ctx context.Context, ev *domain.AttendanceEvent) error
	PublishRequestEvent(ctx context.Context, ev *domain.RequestEvent) error
	PublishBroadcast(ctx context.Context, data []byte) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeAttendanceEvents(ctx context.Context, handler func(ctx context.Context, ev *domain.AttendanceEvent) error) error
	SubscribeRequestEvents(ctx context.Context, handler func(ctx context.Context, ev *domain.RequestEvent) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// PayrollStarter launches a payroll run asynchronously (Temporal in prod).
type PayrollStarter interface {
	StartPayrollRun(ctx context.Context, runID, period, startedBy string) error
}
