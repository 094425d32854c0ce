package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/lankide/internal/core/domain"
	"github.com/samirrijal/lankide/internal/core/ports"
)

const holidayCacheKeyPrefix = "holidays:year:"

// HolidayService manages the company holiday calendar. Dates on the calendar
// suppress the working-hours gate for the whole day.
type HolidayService struct {
	holidays ports.HolidayRepository
	cache    ports.CacheService
}

func NewHolidayService(holidays ports.HolidayRepository, cache ports.CacheService) *HolidayService {
	return &HolidayService{holidays: holidays, cache: cache}
}

// Create adds a holiday. The date is truncated to midnight UTC so lookups by
// calendar day are stable regardless of the caller's clock.
func (s *HolidayService) Create(ctx context.Context, date time.Time, name string) (*domain.Holiday, error) {
	if name == "" {
		return nil, errors.New("name is required")
	}
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	h := &domain.Holiday{
		ID:   uuid.NewString(),
		Date: day,
		Name: name,
	}
	if err := s.holidays.Create(ctx, h); err != nil {
		return nil, fmt.Errorf("create holiday: %w", err)
	}
	s.invalidate(ctx, day.Year())
	return h, nil
}

func (s *HolidayService) Delete(ctx context.Context, id string) error {
	if err := s.holidays.Delete(ctx, id); err != nil {
		return err
	}
	if s.cache != nil {
		// The row is gone so the year is unknown; flush nearby years.
		y := time.Now().Year()
		for _, yr := range []int{y - 1, y, y + 1} {
			s.invalidate(ctx, yr)
		}
	}
	return nil
}

// ListYear returns the calendar for one year, cached.
func (s *HolidayService) ListYear(ctx context.Context, year int) ([]domain.Holiday, error) {
	key := fmt.Sprintf("%s%d", holidayCacheKeyPrefix, year)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key); err == nil {
			var hs []domain.Holiday
			if err := json.Unmarshal(data, &hs); err == nil {
				return hs, nil
			}
		}
	}

	hs, err := s.holidays.ListYear(ctx, year)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(hs); err == nil {
			_ = s.cache.Set(ctx, key, data, 3600)
		}
	}
	return hs, nil
}

// IsHoliday reports whether the given day is on the calendar.
func (s *HolidayService) IsHoliday(ctx context.Context, date time.Time) (bool, error) {
	hs, err := s.ListYear(ctx, date.Year())
	if err != nil {
		return false, err
	}
	want := date.Format("2006-01-02")
	for _, h := range hs {
		if h.Date.Format("2006-01-02") == want {
			return true, nil
		}
	}
	return false, nil
}

func (s *HolidayService) invalidate(ctx context.Context, year int) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, fmt.Sprintf("%s%d", holidayCacheKeyPrefix, year))
	}
}
