package usecases

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/samirrijal/lankide/internal/core/domain"
	"github.com/samirrijal/lankide/internal/core/ports"
)

const scheduleCacheKey = "schedule:week"

var errEndBeforeStart = errors.New("day end must be after start")

// ScheduleService serves the weekly working-hours configuration. A default
// Monday-Friday schedule applies until an admin stores one.
type ScheduleService struct {
	repo         ports.ScheduleRepository
	cache        ports.CacheService
	defaultTZ    string
	defaultGrace int
}

// NewScheduleService creates a new ScheduleService. defaultTZ and defaultGrace
// only shape the fallback schedule; a stored one carries its own values.
func NewScheduleService(repo ports.ScheduleRepository, cache ports.CacheService, defaultTZ string, defaultGrace int) *ScheduleService {
	if defaultTZ == "" {
		defaultTZ = "UTC"
	}
	return &ScheduleService{repo: repo, cache: cache, defaultTZ: defaultTZ, defaultGrace: defaultGrace}
}

// Get returns the effective schedule.
func (s *ScheduleService) Get(ctx context.Context) (domain.WeekSchedule, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, scheduleCacheKey); err == nil {
			var sched domain.WeekSchedule
			if err := json.Unmarshal(data, &sched); err == nil {
				return sched, nil
			}
		}
	}

	sched, err := s.repo.Get(ctx)
	if err != nil {
		return domain.WeekSchedule{}, err
	}
	if sched == nil {
		def := domain.DefaultWeekSchedule(s.defaultTZ, s.defaultGrace)
		return def, nil
	}

	if s.cache != nil {
		if data, err := json.Marshal(sched); err == nil {
			_ = s.cache.Set(ctx, scheduleCacheKey, data, 300)
		}
	}
	return *sched, nil
}

// Put validates and stores a new schedule.
func (s *ScheduleService) Put(ctx context.Context, sched domain.WeekSchedule) error {
	for _, day := range sched.Days {
		if !day.Working {
			continue
		}
		start, err := domain.ClockMinutes(day.Start)
		if err != nil {
			return err
		}
		end, err := domain.ClockMinutes(day.End)
		if err != nil {
			return err
		}
		if end <= start {
			return errEndBeforeStart
		}
	}
	if sched.Timezone == "" {
		sched.Timezone = s.defaultTZ
	}
	if err := s.repo.Put(ctx, &sched); err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, scheduleCacheKey)
	}
	return nil
}
