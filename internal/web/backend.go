package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Vodeneev/matchpredict/internal/pkg/models"
	"github.com/Vodeneev/matchpredict/internal/pkg/performance"
)

// Backend is the prediction API the page talks to.
type Backend interface {
	Matches(ctx context.Context) ([]models.Match, error)
	Predict(ctx context.Context, m models.Match) (models.Prediction, error)
}

// HTTPBackend fetches matches and predictions from the API's
// /api/matches and /api/predict endpoints.
type HTTPBackend struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPBackend creates a client for the API at baseURL.
func NewHTTPBackend(baseURL string, timeout time.Duration) *HTTPBackend {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &HTTPBackend{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// predictResponse is the part of /api/predict the page uses
type predictResponse struct {
	Prediction models.Prediction `json:"prediction"`
}

// Matches fetches the scheduled matches.
func (b *HTTPBackend) Matches(ctx context.Context) (matches []models.Match, err error) {
	done := performance.GetTracker().Track("web.backend.matches", b.baseURL)
	defer func() { done(err) }()

	if err := b.getJSON(ctx, "/api/matches", nil, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

// Predict fetches the prediction for m, scoped by team names and match id.
func (b *HTTPBackend) Predict(ctx context.Context, m models.Match) (pred models.Prediction, err error) {
	done := performance.GetTracker().Track("web.backend.predict", m.Name())
	defer func() { done(err) }()

	q := url.Values{}
	q.Set("home_team", m.HomeTeam.Name)
	q.Set("away_team", m.AwayTeam.Name)
	q.Set("match_id", strconv.FormatInt(m.ID, 10))

	var resp predictResponse
	if err := b.getJSON(ctx, "/api/predict", q, &resp); err != nil {
		return models.Prediction{}, err
	}
	return resp.Prediction, nil
}

func (b *HTTPBackend) getJSON(ctx context.Context, path string, query url.Values, dst interface{}) error {
	u, err := url.Parse(b.baseURL + path)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("unexpected status code %d from %s: %s", resp.StatusCode, path, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
