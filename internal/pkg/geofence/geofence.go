// Package geofence decides whether a reported device location lies inside a
// set of circular check-in zones. It is the single implementation used by
// every caller; the check-in gate, the portal status endpoint, and the admin
// zone preview all go through Evaluate.
package geofence

import (
	"math"

	"github.com/samirrijal/lankide/internal/core/domain"
)

const earthRadiusM = 6371000.0

// Result is the outcome of evaluating a point against a zone set.
type Result struct {
	Inside   bool    `json:"inside"`
	ZoneID   string  `json:"zone_id,omitempty"`
	ZoneName string  `json:"zone_name,omitempty"`
	// DistanceM is the distance to the matched zone's center, or to the
	// nearest active zone's center when outside all of them.
	DistanceM float64 `json:"distance_m"`
	// RadiusM is the radius of the matched or nearest active zone.
	RadiusM float64 `json:"radius_m"`
}

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusM * c
}

// Equirectangular is a flat-earth approximation of the distance in meters.
// Accurate to about 1% for points within a few kilometers; used to sanity
// check Haversine at check-in scale.
func Equirectangular(lat1, lon1, lat2, lon2 float64) float64 {
	x := toRad(lon2-lon1) * math.Cos(toRad((lat1+lat2)/2))
	y := toRad(lat2 - lat1)
	return earthRadiusM * math.Sqrt(x*x+y*y)
}

// Evaluate checks point against zones in the order given. Inactive zones are
// skipped. A point is inside a zone iff its distance to the center is less
// than or equal to the radius (boundary inclusive); the first matching zone
// wins. When no zone matches, DistanceM/RadiusM describe the nearest active
// zone so callers can report how far outside the point is.
func Evaluate(point domain.GeoPoint, zones []domain.Zone) Result {
	res := Result{DistanceM: math.Inf(1)}
	for _, z := range zones {
		if !z.Active {
			continue
		}
		d := Haversine(point.Lat, point.Lon, z.Center.Lat, z.Center.Lon)
		if d <= z.RadiusM {
			return Result{
				Inside:    true,
				ZoneID:    z.ID,
				ZoneName:  z.Name,
				DistanceM: d,
				RadiusM:   z.RadiusM,
			}
		}
		if d < res.DistanceM {
			res.DistanceM = d
			res.RadiusM = z.RadiusM
			res.ZoneID = z.ID
			res.ZoneName = z.Name
		}
	}
	if math.IsInf(res.DistanceM, 1) {
		// No active zones at all.
		return Result{}
	}
	// Nearest zone did not match; report the miss but not its identity.
	res.ZoneID, res.ZoneName = "", ""
	return res
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
