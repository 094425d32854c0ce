package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/lankide/internal/core/domain"
	"github.com/samirrijal/lankide/internal/core/ports"
)

var (
	ErrQuotaExceeded   = errors.New("annual leave quota exceeded")
	ErrAlreadyDecided  = errors.New("request already decided")
	ErrRequestNotFound = errors.New("request not found")
)

// RequestService handles the leave/overtime/adjustment workflow:
// pending -> approved | rejected. Approving an adjustment rewrites the
// attendance day it targets.
type RequestService struct {
	requests   ports.RequestRepository
	attendance ports.AttendanceRepository
	publisher  ports.EventPublisher

	leaveQuotaDays int
	now            func() time.Time
}

// NewRequestService creates a new RequestService. leaveQuotaDays is the
// annual leave allowance (12 by default).
func NewRequestService(
	requests ports.RequestRepository,
	attendance ports.AttendanceRepository,
	publisher ports.EventPublisher,
	leaveQuotaDays int,
) *RequestService {
	if leaveQuotaDays <= 0 {
		leaveQuotaDays = 12
	}
	return &RequestService{
		requests:       requests,
		attendance:     attendance,
		publisher:      publisher,
		leaveQuotaDays: leaveQuotaDays,
		now:            time.Now,
	}
}

// Submit validates and stores a new request.
func (s *RequestService) Submit(ctx context.Context, r *domain.Request) (*domain.Request, error) {
	if r.EmployeeID == "" {
		return nil, fmt.Errorf("employee id is required")
	}
	if r.Reason == "" {
		return nil, fmt.Errorf("reason is required")
	}

	switch r.Kind {
	case domain.RequestLeave:
		if r.EndDate.Before(r.StartDate) {
			return nil, fmt.Errorf("invalid date range")
		}
		r.Days = int(r.EndDate.Sub(r.StartDate).Hours()/24) + 1

		quota, err := s.Quota(ctx, r.EmployeeID, r.StartDate.Year())
		if err != nil {
			return nil, err
		}
		if r.Days > quota.RemainingDays {
			return nil, ErrQuotaExceeded
		}

	case domain.RequestOvertime:
		start, err := domain.ClockMinutes(r.StartTime)
		if err != nil {
			return nil, fmt.Errorf("start_time: %w", err)
		}
		end, err := domain.ClockMinutes(r.EndTime)
		if err != nil {
			return nil, fmt.Errorf("end_time: %w", err)
		}
		if end <= start {
			return nil, fmt.Errorf("overtime end must be after start")
		}
		r.Minutes = end - start
		r.EndDate = r.StartDate

	case domain.RequestAdjustment:
		if r.ProposedIn == nil && r.ProposedOut == nil {
			return nil, fmt.Errorf("adjustment needs a proposed check-in or check-out")
		}
		if r.ProposedIn != nil && r.ProposedOut != nil && !r.ProposedOut.After(*r.ProposedIn) {
			return nil, fmt.Errorf("proposed check-out must be after check-in")
		}
		r.EndDate = r.StartDate

	default:
		return nil, fmt.Errorf("unknown request kind %q", r.Kind)
	}

	r.ID = uuid.NewString()
	r.Status = domain.StatusPending
	if err := s.requests.Create(ctx, r); err != nil {
		return nil, err
	}

	s.publish(ctx, &domain.RequestEvent{
		Time:       s.now(),
		RequestID:  r.ID,
		EmployeeID: r.EmployeeID,
		Kind:       r.Kind,
		Status:     r.Status,
	})
	return r, nil
}

// Decide approves or rejects a pending request.
func (s *RequestService) Decide(ctx context.Context, id, status, deciderID, note string) (*domain.Request, error) {
	if status != domain.StatusApproved && status != domain.StatusRejected {
		return nil, fmt.Errorf("invalid decision %q", status)
	}

	existing, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrRequestNotFound
	}
	if existing.Status != domain.StatusPending {
		return nil, ErrAlreadyDecided
	}

	decided, err := s.requests.Decide(ctx, id, status, deciderID, note, s.now())
	if err != nil {
		return nil, err
	}

	// An approved adjustment rewrites the punches it targets.
	if status == domain.StatusApproved && decided.Kind == domain.RequestAdjustment {
		if err := s.attendance.Rewrite(ctx, decided.EmployeeID, decided.StartDate, decided.ProposedIn, decided.ProposedOut); err != nil {
			return nil, fmt.Errorf("apply adjustment: %w", err)
		}
	}

	s.publish(ctx, &domain.RequestEvent{
		Time:       s.now(),
		RequestID:  decided.ID,
		EmployeeID: decided.EmployeeID,
		Kind:       decided.Kind,
		Status:     decided.Status,
		DecidedBy:  deciderID,
		Note:       note,
	})
	return decided, nil
}

// Quota returns the annual leave summary for one employee.
func (s *RequestService) Quota(ctx context.Context, employeeID string, year int) (*domain.LeaveQuota, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	used, err := s.requests.SumApprovedLeaveDays(ctx, employeeID, from, from.AddDate(1, 0, 0))
	if err != nil {
		return nil, err
	}
	if used < 0 {
		used = 0
	}
	return &domain.LeaveQuota{
		Year:          year,
		QuotaDays:     s.leaveQuotaDays,
		UsedDays:      used,
		RemainingDays: s.leaveQuotaDays - used,
	}, nil
}

// ListByEmployee returns one employee's requests, newest first.
func (s *RequestService) ListByEmployee(ctx context.Context, employeeID string, limit int) ([]domain.Request, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.requests.ListByEmployee(ctx, employeeID, limit)
}

// ListByStatus is the admin inbox view.
func (s *RequestService) ListByStatus(ctx context.Context, status string, limit int) ([]domain.Request, error) {
	if status == "" {
		status = domain.StatusPending
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.requests.ListByStatus(ctx, status, limit)
}

// GetByID returns one request.
func (s *RequestService) GetByID(ctx context.Context, id string) (*domain.Request, error) {
	return s.requests.GetByID(ctx, id)
}

func (s *RequestService) publish(ctx context.Context, ev *domain.RequestEvent) {
	if s.publisher != nil {
		_ = s.publisher.PublishRequestEvent(ctx, ev)
	}
}
