package geo

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swachhsetu/internal/model"
)

func TestDistanceMeters(t *testing.T) {
	// India Gate to Connaught Place is roughly 2.4 km.
	d := DistanceMeters(28.6129, 77.2295, 28.6315, 77.2167)
	assert.InDelta(t, 2400, d, 200)
	assert.Zero(t, DistanceMeters(28.6, 77.2, 28.6, 77.2))
}

func TestBoundsAroundContainsCircle(t *testing.T) {
	box := BoundsAround(28.61, 77.21, 1000)
	assert.Less(t, box.MinLat, 28.61)
	assert.Greater(t, box.MaxLat, 28.61)
	assert.Less(t, box.MinLng, 77.21)
	assert.Greater(t, box.MaxLng, 77.21)
	// 1 km is about 0.009 degrees of latitude.
	assert.InDelta(t, 0.009, box.MaxLat-28.61, 0.001)
}

func TestBoundsAroundAntimeridian(t *testing.T) {
	box := BoundsAround(-17, 179.999, 5000)

	require.True(t, box.WrapsLongitude())
	assert.Greater(t, box.MinLng, 179.9)
	assert.Less(t, box.MaxLng, -179.9)

	assert.True(t, box.Contains(-17, 179.999), "center")
	assert.True(t, box.Contains(-17, -179.9999), "just across the meridian")
	assert.False(t, box.Contains(-17, 0))
	assert.False(t, box.Contains(-17, 179.5))

	near := Within(-17, 179.999, 5000, []Point{{ID: "across", Lat: -17, Lng: -179.9999}})
	require.Len(t, near, 1)
	assert.InDelta(t, 117, DistanceMeters(-17, 179.999, -17, -179.9999), 5)
}

func TestBoxContains(t *testing.T) {
	box := BoundsAround(28.61, 77.21, 1000)

	assert.False(t, box.WrapsLongitude())
	assert.True(t, box.Contains(28.61, 77.21))
	assert.False(t, box.Contains(28.70, 77.21))
}

func TestWithinExcludesPointsOutsideRadius(t *testing.T) {
	points := []Point{
		{ID: "far", Lat: 28.70, Lng: 77.30},
		{ID: "near", Lat: 28.6105, Lng: 77.2105},
		{ID: "center", Lat: 28.61, Lng: 77.21},
	}

	got := Within(28.61, 77.21, 500, points)

	require.Len(t, got, 2)
	assert.Equal(t, "center", got[0].ID)
	assert.Equal(t, "near", got[1].ID)
}

func TestHotspotsGroupsDensestFirst(t *testing.T) {
	points := []Point{
		{ID: "a1", Lat: 28.6100, Lng: 77.2100},
		{ID: "a2", Lat: 28.6101, Lng: 77.2101},
		{ID: "a3", Lat: 28.6102, Lng: 77.2099},
		{ID: "b1", Lat: 19.0760, Lng: 72.8777},
		{ID: "b2", Lat: 19.0761, Lng: 72.8778},
		{ID: "c1", Lat: 13.0827, Lng: 80.2707},
	}

	hotspots := Hotspots(points, 8, 2)

	require.Len(t, hotspots, 2)
	assert.Equal(t, 3, hotspots[0].Count)
	assert.ElementsMatch(t, []string{"a1", "a2", "a3"}, hotspots[0].ReportIDs)
	assert.Equal(t, 2, hotspots[1].Count)
	assert.InDelta(t, 28.61, hotspots[0].Latitude, 0.01)
}

func TestClampLevel(t *testing.T) {
	assert.Equal(t, DefaultHotspotLevel, ClampLevel(0))
	assert.Equal(t, MinHotspotLevel, ClampLevel(2))
	assert.Equal(t, MaxHotspotLevel, ClampLevel(30))
	assert.Equal(t, 10, ClampLevel(10))
}

func TestReportsFeatureCollection(t *testing.T) {
	report := model.Report{
		ID:       uuid.New(),
		Title:    "Overflowing bin",
		Category: model.CategoryWaste,
		Status:   model.ReportStatusPending,
		Severity: model.SeverityMedium,
		Location: model.Location{Longitude: 77.21, Latitude: 28.61},
	}

	data, err := json.Marshal(ReportsFeatureCollection([]model.Report{report}))
	require.NoError(t, err)

	var decoded struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]interface{} `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "FeatureCollection", decoded.Type)
	require.Len(t, decoded.Features, 1)
	assert.Equal(t, []float64{77.21, 28.61}, decoded.Features[0].Geometry.Coordinates)
	assert.Equal(t, "waste", decoded.Features[0].Properties["category"])
}
