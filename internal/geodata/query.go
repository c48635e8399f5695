package geodata

import (
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

var worldBound = orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}

// Point is a validated coordinate that keeps the caller's spelling.
// Lat and Lng are what cache keys and upstream requests are built from.
type Point struct {
	Lat string
	Lng string
	orb orb.Point
}

// ParsePoint validates a latitude/longitude pair given as strings.
func ParsePoint(lat, lng string) (Point, error) {
	lat = strings.TrimSpace(lat)
	lng = strings.TrimSpace(lng)
	if lat == "" || lng == "" {
		return Point{}, ErrMissingCoordinates
	}

	y, err := parseFinite(lat)
	if err != nil {
		return Point{}, ErrInvalidCoordinates
	}
	x, err := parseFinite(lng)
	if err != nil {
		return Point{}, ErrInvalidCoordinates
	}

	p := orb.Point{x, y}
	if !worldBound.Contains(p) {
		return Point{}, ErrInvalidCoordinates
	}
	return Point{Lat: lat, Lng: lng, orb: p}, nil
}

// Orb returns the point as lon/lat.
func (p Point) Orb() orb.Point { return p.orb }

// SoilQuery identifies one soil cache slot.
type SoilQuery struct {
	Point Point
}

// Key is "<lat>,<lng>" using the caller's strings.
func (q SoilQuery) Key() string {
	return q.Point.Lat + "," + q.Point.Lng
}

// FacilitiesQuery identifies one facilities cache slot.
type FacilitiesQuery struct {
	Point    Point
	RadiusKm string
	radius   float64
}

// Key is "<lat>,<lng>,<radiusKm>" using the caller's strings.
func (q FacilitiesQuery) Key() string {
	return q.Point.Lat + "," + q.Point.Lng + "," + q.RadiusKm
}

// RadiusMeters returns the search radius in meters.
func (q FacilitiesQuery) RadiusMeters() float64 {
	return q.radius * 1000
}

// ParseSoilQuery validates raw soil lookup input.
func ParseSoilQuery(lat, lng string) (SoilQuery, error) {
	p, err := ParsePoint(lat, lng)
	if err != nil {
		return SoilQuery{}, err
	}
	return SoilQuery{Point: p}, nil
}

// ParseFacilitiesQuery validates raw facilities lookup input. An empty
// radius takes defRadius; maxRadiusKm <= 0 disables the upper bound.
func ParseFacilitiesQuery(lat, lng, radiusKm, defRadius string, maxRadiusKm float64) (FacilitiesQuery, error) {
	p, err := ParsePoint(lat, lng)
	if err != nil {
		return FacilitiesQuery{}, err
	}

	radiusKm = strings.TrimSpace(radiusKm)
	if radiusKm == "" {
		radiusKm = defRadius
	}
	r, err := parseFinite(radiusKm)
	if err != nil || r <= 0 {
		return FacilitiesQuery{}, ErrInvalidRadius
	}
	if maxRadiusKm > 0 && r > maxRadiusKm {
		return FacilitiesQuery{}, ErrInvalidRadius
	}
	return FacilitiesQuery{Point: p, RadiusKm: radiusKm, radius: r}, nil
}

func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}
