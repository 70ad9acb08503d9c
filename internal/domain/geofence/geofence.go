// Package geofence evaluates GPS positions against circular company fences.
package geofence

import (
	"math"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

const earthRadiusMeters = 6371000

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate checks coordinate ranges. DistanceMeters assumes it passed.
func (p Point) Validate() error {
	var errs validator.ValidationErrors
	if p.Latitude < -90 || p.Latitude > 90 {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Fence is a circle around a center point.
type Fence struct {
	CenterLatitude  float64 `json:"center_latitude" yaml:"center_latitude"`
	CenterLongitude float64 `json:"center_longitude" yaml:"center_longitude"`
	RadiusMeters    float64 `json:"radius_meters" yaml:"radius_meters"`
}

func (f Fence) Center() Point {
	return Point{Latitude: f.CenterLatitude, Longitude: f.CenterLongitude}
}

// IsConfigured is false for a zero radius or an unset (0,0) center.
func (f Fence) IsConfigured() bool {
	if f.RadiusMeters <= 0 {
		return false
	}
	return f.CenterLatitude != 0 || f.CenterLongitude != 0
}

// Contains reports whether p lies on or inside the fence.
func (f Fence) Contains(p Point) bool {
	return DistanceMeters(p.Latitude, p.Longitude, f.CenterLatitude, f.CenterLongitude) <= f.RadiusMeters
}

// Validate checks a fence submitted by an admin.
func (f Fence) Validate() error {
	var errs validator.ValidationErrors
	if f.CenterLatitude < -90 || f.CenterLatitude > 90 {
		errs = append(errs, validator.ValidationError{
			Field:   "center_latitude",
			Message: "center_latitude must be between -90 and 90",
		})
	}
	if f.CenterLongitude < -180 || f.CenterLongitude > 180 {
		errs = append(errs, validator.ValidationError{
			Field:   "center_longitude",
			Message: "center_longitude must be between -180 and 180",
		})
	}
	if f.RadiusMeters <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "radius_meters",
			Message: "radius_meters must be greater than 0",
		})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// DistanceMeters returns the haversine great-circle distance between two coordinates.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	lat1Rad := toRadians(lat1)
	lat2Rad := toRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

func toRadians(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}
