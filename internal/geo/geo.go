// Package geo wraps S2 cell math and GeoJSON encoding for report locations.
package geo

import (
	"sort"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// EarthRadiusMeters is the mean Earth radius.
const EarthRadiusMeters = 6371008.8

const (
	MinHotspotLevel     = 6
	MaxHotspotLevel     = 16
	DefaultHotspotLevel = 13
)

// Box is a latitude/longitude rectangle in degrees. When it crosses the
// 180th meridian MinLng is greater than MaxLng.
type Box struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// WrapsLongitude reports whether the box crosses the 180th meridian.
func (b Box) WrapsLongitude() bool {
	return b.MinLng > b.MaxLng
}

// Contains reports whether (lat, lng) lies inside the box.
func (b Box) Contains(lat, lng float64) bool {
	if lat < b.MinLat || lat > b.MaxLat {
		return false
	}
	if b.WrapsLongitude() {
		return lng >= b.MinLng || lng <= b.MaxLng
	}
	return lng >= b.MinLng && lng <= b.MaxLng
}

// Point is a located item identified by ID.
type Point struct {
	ID  string
	Lat float64
	Lng float64
}

// Hotspot is an S2 cell holding at least the requested number of points.
type Hotspot struct {
	Cell      string   `json:"cell"`
	Level     int      `json:"level"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Count     int      `json:"count"`
	ReportIDs []string `json:"reportIds"`
}

func angleFromMeters(m float64) s1.Angle {
	return s1.Angle(m / EarthRadiusMeters)
}

// DistanceMeters is the great-circle distance between two coordinates.
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	a := s2.LatLngFromDegrees(lat1, lng1)
	b := s2.LatLngFromDegrees(lat2, lng2)
	return a.Distance(b).Radians() * EarthRadiusMeters
}

// BoundsAround returns a rectangle that contains the circle of radius meters
// around (lat, lng). It is used to prefilter candidates in the database.
func BoundsAround(lat, lng, radiusMeters float64) Box {
	center := s2.PointFromLatLng(s2.LatLngFromDegrees(lat, lng))
	rect := s2.CapFromCenterAngle(center, angleFromMeters(radiusMeters)).RectBound()
	return Box{
		MinLat: rect.Lo().Lat.Degrees(),
		MaxLat: rect.Hi().Lat.Degrees(),
		MinLng: rect.Lo().Lng.Degrees(),
		MaxLng: rect.Hi().Lng.Degrees(),
	}
}

// Within keeps the points inside radius meters of (lat, lng), nearest first.
func Within(lat, lng, radiusMeters float64, points []Point) []Point {
	type scored struct {
		p Point
		d float64
	}
	matches := make([]scored, 0, len(points))
	for _, p := range points {
		if d := DistanceMeters(lat, lng, p.Lat, p.Lng); d <= radiusMeters {
			matches = append(matches, scored{p, d})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].d < matches[j].d })

	out := make([]Point, len(matches))
	for i, m := range matches {
		out[i] = m.p
	}
	return out
}

// ClampLevel keeps an S2 level inside the supported hotspot range.
func ClampLevel(level int) int {
	switch {
	case level == 0:
		return DefaultHotspotLevel
	case level < MinHotspotLevel:
		return MinHotspotLevel
	case level > MaxHotspotLevel:
		return MaxHotspotLevel
	}
	return level
}

// Hotspots buckets points into S2 cells at level and returns the cells with at
// least minCount points, densest first.
func Hotspots(points []Point, level, minCount int) []Hotspot {
	level = ClampLevel(level)
	if minCount < 1 {
		minCount = 1
	}

	buckets := make(map[s2.CellID][]string)
	for _, p := range points {
		cell := s2.CellIDFromLatLng(s2.LatLngFromDegrees(p.Lat, p.Lng)).Parent(level)
		buckets[cell] = append(buckets[cell], p.ID)
	}

	hotspots := make([]Hotspot, 0)
	for cell, ids := range buckets {
		if len(ids) < minCount {
			continue
		}
		center := cell.LatLng()
		hotspots = append(hotspots, Hotspot{
			Cell:      cell.ToToken(),
			Level:     level,
			Latitude:  center.Lat.Degrees(),
			Longitude: center.Lng.Degrees(),
			Count:     len(ids),
			ReportIDs: ids,
		})
	}
	sort.Slice(hotspots, func(i, j int) bool {
		if hotspots[i].Count != hotspots[j].Count {
			return hotspots[i].Count > hotspots[j].Count
		}
		return hotspots[i].Cell < hotspots[j].Cell
	})
	return hotspots
}
