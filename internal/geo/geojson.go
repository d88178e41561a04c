package geo

import (
	geojson "github.com/paulmach/go.geojson"

	"swachhsetu/internal/model"
)

// ReportsFeatureCollection renders reports as point features for map markers.
func ReportsFeatureCollection(reports []model.Report) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, r := range reports {
		f := geojson.NewPointFeature([]float64{r.Location.Longitude, r.Location.Latitude})
		f.ID = r.ID.String()
		f.SetProperty("title", r.Title)
		f.SetProperty("category", string(r.Category))
		f.SetProperty("severity", string(r.Severity))
		f.SetProperty("status", string(r.Status))
		f.SetProperty("address", r.Location.Address)
		f.SetProperty("createdAt", r.CreatedAt)
		fc.AddFeature(f)
	}
	return fc
}

// HotspotsFeatureCollection renders hotspots as points weighted by count.
func HotspotsFeatureCollection(hotspots []Hotspot) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, h := range hotspots {
		f := geojson.NewPointFeature([]float64{h.Longitude, h.Latitude})
		f.ID = h.Cell
		f.SetProperty("count", h.Count)
		f.SetProperty("level", h.Level)
		fc.AddFeature(f)
	}
	return fc
}
