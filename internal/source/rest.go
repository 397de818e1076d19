package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/contentonrails/newsmon/internal/models"
)

// RESTSource reads pre-aggregated monitoring data from the newsletter
// API instead of touching the database. The aggregator re-applies its
// thresholds on top of the returned figures, so a lagging API-side
// computation still trips the same alarms.
type RESTSource struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewRESTSource(baseURL, apiKey string) *RESTSource {
	return &RESTSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type workerStatusResponse struct {
	Status      string   `json:"status"`
	RecentRuns  int      `json:"recent_runs"`
	SuccessRate float64  `json:"success_rate"`
	LastRun     string   `json:"last_run"`
	Issues      []string `json:"issues"`
}

type publisherStatusResponse struct {
	Status            string   `json:"status"`
	RecentNewsletters int      `json:"recent_newsletters"`
	LastGeneration    string   `json:"last_generation"`
	Issues            []string `json:"issues"`
}

func (s *RESTSource) WorkerActivity(ctx context.Context, now time.Time, window time.Duration) (models.WorkerActivity, error) {
	var resp workerStatusResponse
	if err := s.get(ctx, "/api/v1/monitoring/worker/status", &resp); err != nil {
		return models.WorkerActivity{}, err
	}

	activity := models.WorkerActivity{
		RecentRuns:  resp.RecentRuns,
		SuccessRate: resp.SuccessRate,
		Issues:      resp.Issues,
	}
	activity.LastRun = parseTimestamp(resp.LastRun, "last_run", &activity.Issues)
	return activity, nil
}

func (s *RESTSource) PublisherActivity(ctx context.Context, now time.Time, window time.Duration) (models.PublisherActivity, error) {
	var resp publisherStatusResponse
	if err := s.get(ctx, "/api/v1/monitoring/publisher/status", &resp); err != nil {
		return models.PublisherActivity{}, err
	}

	activity := models.PublisherActivity{
		RecentNewsletters: resp.RecentNewsletters,
		Issues:            resp.Issues,
	}
	activity.LastGeneration = parseTimestamp(resp.LastGeneration, "last_generation", &activity.Issues)
	return activity, nil
}

// RanInWindow approximates the database window search with the API's
// last-activity timestamp. The API exposes no per-window query, so the
// most recent run standing in for "any run in window" is the best the
// adapter can do.
func (s *RESTSource) RanInWindow(ctx context.Context, service string, from, to time.Time) (bool, error) {
	var last *time.Time
	switch service {
	case ServiceWorker:
		activity, err := s.WorkerActivity(ctx, to, to.Sub(from))
		if err != nil {
			return false, err
		}
		last = activity.LastRun
	case ServicePublisher:
		activity, err := s.PublisherActivity(ctx, to, to.Sub(from))
		if err != nil {
			return false, err
		}
		last = activity.LastGeneration
	default:
		return false, fmt.Errorf("unknown service %q", service)
	}

	if last == nil {
		return false, nil
	}
	return !last.Before(from) && !last.After(to), nil
}

func (s *RESTSource) SystemStatus(ctx context.Context) (models.SystemStatus, error) {
	var status models.SystemStatus
	if err := s.get(ctx, "/api/v1/monitoring/status", &status); err != nil {
		return models.SystemStatus{}, err
	}
	return status, nil
}

func (s *RESTSource) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("API request failed for %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API request for %s returned status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

// parseTimestamp converts an API timestamp into a time, demoting parse
// failures to an issue string instead of an error.
func parseTimestamp(raw, field string, issues *[]string) *time.Time {
	if raw == "" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		*issues = append(*issues, fmt.Sprintf("Invalid %s timestamp %q", field, raw))
		return nil
	}
	parsed = parsed.UTC()
	return &parsed
}
