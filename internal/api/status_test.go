package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentonrails/newsmon/internal/alert"
	"github.com/contentonrails/newsmon/internal/api"
	"github.com/contentonrails/newsmon/internal/models"
	"github.com/contentonrails/newsmon/internal/monitor"
	"github.com/contentonrails/newsmon/internal/schedule"
)

type staticSource struct{}

func (staticSource) WorkerActivity(context.Context, time.Time, time.Duration) (models.WorkerActivity, error) {
	last := time.Date(2025, 3, 10, 13, 30, 0, 0, time.UTC)
	return models.WorkerActivity{RecentRuns: 4, SuccessRate: 100, LastRun: &last}, nil
}

func (staticSource) PublisherActivity(context.Context, time.Time, time.Duration) (models.PublisherActivity, error) {
	last := time.Date(2025, 3, 10, 8, 10, 0, 0, time.UTC)
	return models.PublisherActivity{RecentNewsletters: 1, LastGeneration: &last}, nil
}

func (staticSource) RanInWindow(context.Context, string, time.Time, time.Time) (bool, error) {
	return true, nil
}

type discardSink struct{}

func (discardSink) RecordStatus(context.Context, models.Verdict) error { return nil }
func (discardSink) Heartbeat(context.Context) error                    { return nil }

func TestStatusEndpoint(t *testing.T) {
	now := func() time.Time { return time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC) }
	workerSpec, err := schedule.ParseSpec("4x_daily", []string{"06:00", "12:00", "18:00", "00:00"}, 30)
	require.NoError(t, err)
	publisherSpec, err := schedule.ParseSpec("1x_daily", []string{"08:00"}, 60)
	require.NoError(t, err)

	m := monitor.New(monitor.Options{
		Source:            staticSource{},
		Sink:              discardSink{},
		Gate:              alert.NewGate(30*time.Minute, now, nil),
		WorkerSchedule:    workerSpec,
		PublisherSchedule: publisherSpec,
		Interval:          time.Minute,
		FailureBackoff:    time.Second,
		Now:               now,
	})
	require.NoError(t, m.RunCycle(context.Background()))

	router := api.NewRouter(m, "")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Services []models.Verdict `json:"services"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Services, 2)
	for _, v := range body.Services {
		assert.Equal(t, models.StatusHealthy, v.Status)
	}

	// With a key configured the status route rejects anonymous calls
	// but /healthz stays open.
	guarded := api.NewRouter(m, "s3cret")

	rec = httptest.NewRecorder()
	guarded.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	req.Header.Set("X-API-KEY", "s3cret")
	rec = httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	guarded.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
