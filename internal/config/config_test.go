package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentonrails/newsmon/internal/config"
)

func setMongoEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("MONGO_DATABASE", "newsletter")
}

func TestLoadConfigDefaults(t *testing.T) {
	setMongoEnv(t)

	cfg, err := config.LoadConfig("testdata/missing.yaml", nil)
	require.NoError(t, err)

	assert.Equal(t, config.SourceMongo, cfg.Source.Kind)
	assert.Equal(t, 300, cfg.Monitor.IntervalSeconds)
	assert.Equal(t, 30, cfg.Alert.CooldownMinutes)
	assert.Equal(t, "smtp.mailgun.org", cfg.SMTP.Host)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Equal(t, []string{"06:00", "12:00", "18:00", "00:00"}, cfg.Schedules.Worker.TimeEntries())
	assert.Equal(t, []string{"08:00"}, cfg.Schedules.Publisher.TimeEntries())
	assert.Equal(t, 30, cfg.Schedules.Worker.ToleranceMinutes)
	assert.Equal(t, 60, cfg.Schedules.Publisher.ToleranceMinutes)
}

func TestLoadConfigMissingMongoURI(t *testing.T) {
	_, err := config.LoadConfig("testdata/missing.yaml", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONGO_URI")
}

func TestLoadConfigRESTSource(t *testing.T) {
	t.Setenv("SOURCE_KIND", "rest")
	t.Setenv("API_BASE_URL", "https://api.contentonrails.com")
	t.Setenv("API_KEY", "secret")

	cfg, err := config.LoadConfig("testdata/missing.yaml", nil)
	require.NoError(t, err)

	assert.Equal(t, config.SourceREST, cfg.Source.Kind)
	assert.Equal(t, "https://api.contentonrails.com", cfg.API.BaseURL)
}

func TestLoadConfigRESTSourceRequiresBaseURL(t *testing.T) {
	t.Setenv("SOURCE_KIND", "rest")

	_, err := config.LoadConfig("testdata/missing.yaml", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API_BASE_URL")
}

func TestLoadConfigUnknownSourceKind(t *testing.T) {
	t.Setenv("SOURCE_KIND", "carrier-pigeon")

	_, err := config.LoadConfig("testdata/missing.yaml", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown source kind")
}

func TestIncompleteEmailConfigDisablesAlerts(t *testing.T) {
	setMongoEnv(t)
	t.Setenv("EMAIL_ALERTS_ENABLED", "true")
	t.Setenv("SMTP_USERNAME", "postmaster@example.com")
	// SMTP_PASSWORD, ALERT_EMAIL_FROM, ALERT_EMAIL_TO left unset.

	cfg, err := config.LoadConfig("testdata/missing.yaml", nil)
	require.NoError(t, err)

	assert.False(t, cfg.Alert.Enabled)
}

func TestCompleteEmailConfigKeepsAlerts(t *testing.T) {
	setMongoEnv(t)
	t.Setenv("SMTP_USERNAME", "postmaster@example.com")
	t.Setenv("SMTP_PASSWORD", "hunter2")
	t.Setenv("ALERT_EMAIL_FROM", "alerts@example.com")
	t.Setenv("ALERT_EMAIL_TO", "ops@example.com")

	cfg, err := config.LoadConfig("testdata/missing.yaml", nil)
	require.NoError(t, err)

	assert.True(t, cfg.Alert.Enabled)
}

func TestFlagOverrides(t *testing.T) {
	setMongoEnv(t)
	t.Setenv("HEALTH_CHECK_INTERVAL", "600")

	cfg, err := config.LoadConfig("testdata/missing.yaml",
		[]string{"-interval-seconds", "120", "-cooldown-minutes", "45"})
	require.NoError(t, err)

	assert.Equal(t, 120, cfg.Monitor.IntervalSeconds)
	assert.Equal(t, 45, cfg.Alert.CooldownMinutes)
}

func TestInvalidIntervalRejected(t *testing.T) {
	setMongoEnv(t)
	t.Setenv("HEALTH_CHECK_INTERVAL", "0")

	_, err := config.LoadConfig("testdata/missing.yaml", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "health check interval")
}

func TestScheduleOverridesFromEnv(t *testing.T) {
	setMongoEnv(t)
	t.Setenv("WORKER_SCHEDULE_TIMES", "01:00, 13:00")
	t.Setenv("WORKER_TOLERANCE_MINUTES", "15")

	cfg, err := config.LoadConfig("testdata/missing.yaml", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"01:00", "13:00"}, cfg.Schedules.Worker.TimeEntries())
	assert.Equal(t, 15, cfg.Schedules.Worker.ToleranceMinutes)
}
