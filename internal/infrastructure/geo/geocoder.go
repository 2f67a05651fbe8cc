package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/nagashima/sso-idp/internal/config"
	"github.com/nagashima/sso-idp/internal/domain/interfaces"
)

// HTTPGeocoder resolves addresses against an external geocoding API.
// Callers treat any error as a missing result.
type HTTPGeocoder struct {
	baseURL    string
	httpClient *http.Client
}

var _ interfaces.Geocoder = (*HTTPGeocoder)(nil)

func NewHTTPGeocoder(cfg config.GeocoderConfig) *HTTPGeocoder {
	return &HTTPGeocoder{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type geocodeResponse struct {
	Results []struct {
		Geometry struct {
			Latitude  float64 `json:"lat"`
			Longitude float64 `json:"lng"`
		} `json:"geometry"`
	} `json:"results"`
}

func (g *HTTPGeocoder) Geocode(ctx context.Context, address string) (*interfaces.Coordinates, error) {
	u := g.baseURL + "/geocode?" + url.Values{"q": {address}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocode request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode request returned status %d", resp.StatusCode)
	}

	var out geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode geocode response: %w", err)
	}
	if len(out.Results) == 0 {
		return nil, fmt.Errorf("no geocode results for address")
	}

	return &interfaces.Coordinates{
		Latitude:  out.Results[0].Geometry.Latitude,
		Longitude: out.Results[0].Geometry.Longitude,
	}, nil
}
