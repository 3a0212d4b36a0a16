package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"mission-dispatch/internal/common"
)

type mapboxDirectionsResponse struct {
	Routes []struct {
		Distance float64 `json:"distance"` // meters
		Duration float64 `json:"duration"` // seconds
	} `json:"routes"`
	Code string `json:"code"`
}

type mapboxMatrixResponse struct {
	Code      string      `json:"code"`
	Distances [][]float64 `json:"distances"` // meters
	Durations [][]float64 `json:"durations"` // seconds
}

type MapboxClient struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

func NewMapboxClient(baseURL, accessToken string, timeout time.Duration) *MapboxClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &MapboxClient{
		baseURL:     baseURL,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

func (m *MapboxClient) Distance(ctx context.Context, origin, destination common.Location) (float64, error) {
	resp, err := m.directions(ctx, origin, destination)
	if err != nil {
		return 0, err
	}
	return resp.Routes[0].Distance, nil
}

func (m *MapboxClient) Duration(ctx context.Context, origin, destination common.Location) (float64, error) {
	resp, err := m.directions(ctx, origin, destination)
	if err != nil {
		return 0, err
	}
	return resp.Routes[0].Duration, nil
}

func (m *MapboxClient) directions(ctx context.Context, from, to common.Location) (*mapboxDirectionsResponse, error) {
	url := fmt.Sprintf(
		"%s/directions/v5/mapbox/driving/%f,%f;%f,%f?access_token=%s&overview=false",
		m.baseURL, from.Lng, from.Lat, to.Lng, to.Lat, m.accessToken,
	)

	var result mapboxDirectionsResponse
	if err := m.getJSON(ctx, url, &result); err != nil {
		return nil, err
	}
	if result.Code != "Ok" || len(result.Routes) == 0 {
		return nil, fmt.Errorf("%w: mapbox code %s", ErrUnavailable, result.Code)
	}
	return &result, nil
}

// DistanceMatrix asks the Matrix API for distances from the origin
// (coordinate 0) to every destination, one row.
func (m *MapboxClient) DistanceMatrix(ctx context.Context, origin common.Location, destinations []common.Location) ([]float64, error) {
	if len(destinations) == 0 {
		return nil, nil
	}

	coords := make([]string, 0, len(destinations)+1)
	coords = append(coords, fmt.Sprintf("%f,%f", origin.Lng, origin.Lat))
	for _, d := range destinations {
		coords = append(coords, fmt.Sprintf("%f,%f", d.Lng, d.Lat))
	}

	url := fmt.Sprintf(
		"%s/directions-matrix/v1/mapbox/driving/%s?sources=0&annotations=distance&access_token=%s",
		m.baseURL, strings.Join(coords, ";"), m.accessToken,
	)

	var result mapboxMatrixResponse
	if err := m.getJSON(ctx, url, &result); err != nil {
		return nil, err
	}
	if result.Code != "Ok" || len(result.Distances) == 0 {
		return nil, fmt.Errorf("%w: mapbox code %s", ErrUnavailable, result.Code)
	}

	// row 0 holds origin->origin followed by origin->destination distances
	row := result.Distances[0]
	if len(row) != len(destinations)+1 {
		return nil, fmt.Errorf("%w: got %d elements for %d destinations",
			ErrMatrixSizeMismatch, len(row), len(destinations))
	}
	return row[1:], nil
}

func (m *MapboxClient) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
