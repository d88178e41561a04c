package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"swachhsetu/internal/geocoding"
)

const maxQueryLength = 256

// GeocodingHandler proxies location lookups to Nominatim.
type GeocodingHandler struct {
	geocoder geocoding.Geocoder
}

// NewGeocodingHandler creates a geocoding handler.
func NewGeocodingHandler(geocoder geocoding.Geocoder) *GeocodingHandler {
	return &GeocodingHandler{geocoder: geocoder}
}

// SearchResponse wraps Nominatim search results.
type SearchResponse struct {
	Success bool            `json:"success"`
	Results json.RawMessage `json:"results,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// ReverseResponse wraps a Nominatim reverse lookup.
type ReverseResponse struct {
	Success bool            `json:"success"`
	Address json.RawMessage `json:"address,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Search godoc
// @Summary Search for a location
// @Tags geocoding
// @Produce json
// @Param q query string true "Free-form query"
// @Success 200 {object} SearchResponse
// @Failure 400 {object} SearchResponse
// @Failure 500 {object} SearchResponse
// @Router /geocoding/search [get]
func (h *GeocodingHandler) Search(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return c.JSON(http.StatusBadRequest, SearchResponse{Error: "query parameter q is required"})
	}
	if len(q) > maxQueryLength {
		return c.JSON(http.StatusBadRequest, SearchResponse{Error: "query is too long"})
	}

	results, err := h.geocoder.Search(c.Request().Context(), q)
	if err != nil {
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Str("query", q).Msg("geocoding search failed")
		return c.JSON(http.StatusInternalServerError, SearchResponse{Error: "location search failed"})
	}
	return c.JSON(http.StatusOK, SearchResponse{Success: true, Results: results})
}

// Reverse godoc
// @Summary Reverse geocode a coordinate
// @Tags geocoding
// @Produce json
// @Param lat query number true "Latitude"
// @Param lon query number true "Longitude"
// @Success 200 {object} ReverseResponse
// @Failure 400 {object} ReverseResponse
// @Failure 500 {object} ReverseResponse
// @Router /geocoding/reverse [get]
func (h *GeocodingHandler) Reverse(c echo.Context) error {
	lat, okLat, errLat := floatQuery(c, "lat")
	lon, okLon, errLon := floatQuery(c, "lon")
	if errLat != nil || errLon != nil || !okLat || !okLon {
		return c.JSON(http.StatusBadRequest, ReverseResponse{Error: "lat and lon are required numbers"})
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return c.JSON(http.StatusBadRequest, ReverseResponse{Error: "lat or lon out of range"})
	}

	address, err := h.geocoder.Reverse(c.Request().Context(), lat, lon)
	if err != nil {
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Float64("lat", lat).Float64("lon", lon).Msg("reverse geocoding failed")
		return c.JSON(http.StatusInternalServerError, ReverseResponse{Error: "reverse geocoding failed"})
	}
	return c.JSON(http.StatusOK, ReverseResponse{Success: true, Address: address})
}
