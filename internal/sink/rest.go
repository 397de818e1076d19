package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/contentonrails/newsmon/internal/models"
)

// Version is reported with every heartbeat.
const Version = "2.0.0"

// RESTSink posts monitoring events to the newsletter API.
type RESTSink struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewRESTSink(baseURL, apiKey string) *RESTSink {
	return &RESTSink{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *RESTSink) RecordStatus(ctx context.Context, verdict models.Verdict) error {
	payload := map[string]interface{}{
		"process_type": verdict.Service,
		"status":       verdict,
		"timestamp":    verdict.CheckedAt.Format(time.RFC3339),
	}
	return s.post(ctx, "/api/v1/monitoring/update", payload)
}

func (s *RESTSink) Heartbeat(ctx context.Context) error {
	payload := map[string]interface{}{
		"service":   "monitoring",
		"status":    "active",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   Version,
	}
	return s.post(ctx, "/api/v1/monitoring/heartbeat", payload)
}

func (s *RESTSink) post(ctx context.Context, path string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload for %s: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
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
	return nil
}
