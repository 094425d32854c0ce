package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/samirrijal/lankide/internal/core/domain"
	"github.com/samirrijal/lankide/internal/core/ports"
)

const zoneListCacheKey = "zones:list"

// ZoneService manages check-in zones. The zone list feeds every geofence
// evaluation, so it is cached aggressively and invalidated on writes.
type ZoneService struct {
	zones ports.ZoneRepository
	cache ports.CacheService
}

// NewZoneService creates a new ZoneService.
func NewZoneService(zones ports.ZoneRepository, cache ports.CacheService) *ZoneService {
	return &ZoneService{zones: zones, cache: cache}
}

func validateZone(z *domain.Zone) error {
	if z.Name == "" {
		return fmt.Errorf("zone name is required")
	}
	if z.Center.Lat < -90 || z.Center.Lat > 90 {
		return fmt.Errorf("latitude %.6f out of range [-90, 90]", z.Center.Lat)
	}
	if z.Center.Lon < -180 || z.Center.Lon > 180 {
		return fmt.Errorf("longitude %.6f out of range [-180, 180]", z.Center.Lon)
	}
	if z.RadiusM <= 0 || z.RadiusM > 100000 {
		return fmt.Errorf("radius must be between 1 and 100000 meters")
	}
	return nil
}

// Create stores a new zone.
func (s *ZoneService) Create(ctx context.Context, z *domain.Zone) error {
	if err := validateZone(z); err != nil {
		return err
	}
	if z.ID == "" {
		z.ID = uuid.NewString()
	}
	if err := s.zones.Create(ctx, z); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Update stores zone changes.
func (s *ZoneService) Update(ctx context.Context, z *domain.Zone) error {
	if z.ID == "" {
		return fmt.Errorf("zone id is required")
	}
	if err := validateZone(z); err != nil {
		return err
	}
	if err := s.zones.Update(ctx, z); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Delete removes a zone.
func (s *ZoneService) Delete(ctx context.Context, id string) error {
	if err := s.zones.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// GetByID returns one zone.
func (s *ZoneService) GetByID(ctx context.Context, id string) (*domain.Zone, error) {
	return s.zones.GetByID(ctx, id)
}

// List returns all zones in creation order (the first-match priority order),
// read-through cached.
func (s *ZoneService) List(ctx context.Context) ([]domain.Zone, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, zoneListCacheKey); err == nil {
			var zones []domain.Zone
			if err := json.Unmarshal(data, &zones); err == nil {
				return zones, nil
			}
		}
	}

	zones, err := s.zones.List(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(zones); err == nil {
			_ = s.cache.Set(ctx, zoneListCacheKey, data, 300)
		}
	}
	return zones, nil
}

// ListActive returns only active zones, in creation order.
func (s *ZoneService) ListActive(ctx context.Context) ([]domain.Zone, error) {
	zones, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := zones[:0:0]
	for _, z := range zones {
		if z.Active {
			out = append(out, z)
		}
	}
	return out, nil
}

func (s *ZoneService) invalidate(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, zoneListCacheKey)
	}
}
