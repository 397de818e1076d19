package config

import (
	"flag"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// SourceMongo and SourceREST select the data-access adapter.
const (
	SourceMongo = "mongo"
	SourceREST  = "rest"
)

type ScheduleConfig struct {
	Frequency        string `mapstructure:"frequency"`
	Times            string `mapstructure:"times"`
	ToleranceMinutes int    `mapstructure:"tolerance_minutes"`
}

// TimeEntries splits the comma-separated "HH:MM" list.
func (s ScheduleConfig) TimeEntries() []string {
	var entries []string
	for _, entry := range strings.Split(s.Times, ",") {
		if entry = strings.TrimSpace(entry); entry != "" {
			entries = append(entries, entry)
		}
	}
	return entries
}

type Config struct {
	Source struct {
		Kind string `mapstructure:"kind"`
	} `mapstructure:"source"`

	Mongo struct {
		URI      string `mapstructure:"uri"`
		Database string `mapstructure:"database"`
	} `mapstructure:"mongo"`

	API struct {
		BaseURL string `mapstructure:"base_url"`
		Key     string `mapstructure:"key"`
	} `mapstructure:"api"`

	Redis struct {
		Host string `mapstructure:"host"`
		Port int    `mapstructure:"port"`
	} `mapstructure:"redis"`

	Monitor struct {
		Enabled               bool   `mapstructure:"enabled"`
		IntervalSeconds       int    `mapstructure:"interval_seconds"`
		FailureBackoffSeconds int    `mapstructure:"failure_backoff_seconds"`
		HTTPListen            string `mapstructure:"http_listen"`
		HTTPAPIKey            string `mapstructure:"http_api_key"`
	} `mapstructure:"monitor"`

	Alert struct {
		Enabled         bool   `mapstructure:"enabled"`
		CooldownMinutes int    `mapstructure:"cooldown_minutes"`
		State           string `mapstructure:"state"`
		From            string `mapstructure:"from"`
		To              string `mapstructure:"to"`
		SubjectPrefix   string `mapstructure:"subject_prefix"`
	} `mapstructure:"alert"`

	SMTP struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		UseTLS   bool   `mapstructure:"use_tls"`
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
	} `mapstructure:"smtp"`

	Schedules struct {
		Worker    ScheduleConfig `mapstructure:"worker"`
		Publisher ScheduleConfig `mapstructure:"publisher"`
	} `mapstructure:"schedules"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

// LoadConfig loads the configuration from file, environment variables, and command-line arguments.
// Order of precedence: defaults < config file < env vars < cmd flags.
func LoadConfig(configPath string, args []string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("source.kind", SourceMongo)
	v.SetDefault("mongo.uri", "")
	v.SetDefault("mongo.database", "newsletter")
	v.SetDefault("api.base_url", "")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("monitor.enabled", true)
	v.SetDefault("monitor.interval_seconds", 300)
	v.SetDefault("monitor.failure_backoff_seconds", 60)
	v.SetDefault("monitor.http_listen", "")
	v.SetDefault("alert.enabled", true)
	v.SetDefault("alert.cooldown_minutes", 30)
	v.SetDefault("alert.state", "memory")
	v.SetDefault("alert.subject_prefix", "[Newsletter System Alert]")
	v.SetDefault("smtp.host", "smtp.mailgun.org")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.use_tls", true)
	v.SetDefault("schedules.worker.frequency", "4x_daily")
	v.SetDefault("schedules.worker.times", "06:00,12:00,18:00,00:00")
	v.SetDefault("schedules.worker.tolerance_minutes", 30)
	v.SetDefault("schedules.publisher.frequency", "1x_daily")
	v.SetDefault("schedules.publisher.times", "08:00")
	v.SetDefault("schedules.publisher.tolerance_minutes", 60)
	v.SetDefault("log.level", "info")

	// Read from config file if present
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		log.Warn().Err(err).Str("config_path", configPath).Msg("Failed to read config file, relying on defaults, env, and flags")
	}

	// Explicitly bind environment variables
	bindEnvOrPanic(v, "source.kind", "SOURCE_KIND")
	bindEnvOrPanic(v, "mongo.uri", "MONGO_URI")
	bindEnvOrPanic(v, "mongo.database", "MONGO_DATABASE")
	bindEnvOrPanic(v, "api.base_url", "API_BASE_URL")
	bindEnvOrPanic(v, "api.key", "API_KEY")
	bindEnvOrPanic(v, "redis.host", "REDIS_HOST")
	bindEnvOrPanic(v, "redis.port", "REDIS_PORT")
	bindEnvOrPanic(v, "monitor.enabled", "MONITORING_ENABLED")
	bindEnvOrPanic(v, "monitor.interval_seconds", "HEALTH_CHECK_INTERVAL")
	bindEnvOrPanic(v, "monitor.failure_backoff_seconds", "FAILURE_BACKOFF_SECONDS")
	bindEnvOrPanic(v, "monitor.http_listen", "MONITOR_HTTP_LISTEN")
	bindEnvOrPanic(v, "monitor.http_api_key", "MONITOR_API_KEY")
	bindEnvOrPanic(v, "alert.enabled", "EMAIL_ALERTS_ENABLED")
	bindEnvOrPanic(v, "alert.cooldown_minutes", "ALERT_COOLDOWN_MINUTES")
	bindEnvOrPanic(v, "alert.state", "ALERT_STATE")
	bindEnvOrPanic(v, "alert.from", "ALERT_EMAIL_FROM")
	bindEnvOrPanic(v, "alert.to", "ALERT_EMAIL_TO")
	bindEnvOrPanic(v, "alert.subject_prefix", "ALERT_EMAIL_SUBJECT_PREFIX")
	bindEnvOrPanic(v, "smtp.host", "SMTP_SERVER")
	bindEnvOrPanic(v, "smtp.port", "SMTP_PORT")
	bindEnvOrPanic(v, "smtp.use_tls", "SMTP_USE_TLS")
	bindEnvOrPanic(v, "smtp.username", "SMTP_USERNAME")
	bindEnvOrPanic(v, "smtp.password", "SMTP_PASSWORD")
	bindEnvOrPanic(v, "schedules.worker.times", "WORKER_SCHEDULE_TIMES")
	bindEnvOrPanic(v, "schedules.worker.tolerance_minutes", "WORKER_TOLERANCE_MINUTES")
	bindEnvOrPanic(v, "schedules.publisher.times", "PUBLISHER_SCHEDULE_TIMES")
	bindEnvOrPanic(v, "schedules.publisher.tolerance_minutes", "PUBLISHER_TOLERANCE_MINUTES")
	bindEnvOrPanic(v, "log.level", "LOG_LEVEL")

	// Parse command-line flags
	fs := flag.NewFlagSet("newsmon", flag.ContinueOnError)
	interval := fs.Int("interval-seconds", 0, "Override health check interval in seconds")
	cooldown := fs.Int("cooldown-minutes", 0, "Override alert cooldown in minutes")
	logLevel := fs.String("log-level", "", "Override log level")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	// Apply command-line flags if provided
	if *interval > 0 {
		v.Set("monitor.interval_seconds", *interval)
	}
	if *cooldown > 0 {
		v.Set("alert.cooldown_minutes", *cooldown)
	}
	if *logLevel != "" {
		v.Set("log.level", *logLevel)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func bindEnvOrPanic(v *viper.Viper, key, env string) {
	if err := v.BindEnv(key, env); err != nil {
		log.Fatal().Err(err).Msgf("Failed to bind environment variable %s to key %s", env, key)
	}
}

func validateConfig(cfg *Config) error {
	switch cfg.Source.Kind {
	case SourceMongo:
		if cfg.Mongo.URI == "" {
			return fmt.Errorf("MONGO_URI is required when source kind is %q", SourceMongo)
		}
		if cfg.Mongo.Database == "" {
			return fmt.Errorf("MONGO_DATABASE is required when source kind is %q", SourceMongo)
		}
	case SourceREST:
		if cfg.API.BaseURL == "" {
			return fmt.Errorf("API_BASE_URL is required when source kind is %q", SourceREST)
		}
	default:
		return fmt.Errorf("unknown source kind %q, expected %q or %q", cfg.Source.Kind, SourceMongo, SourceREST)
	}

	if cfg.Monitor.IntervalSeconds <= 0 {
		return fmt.Errorf("health check interval must be > 0 seconds, got %d", cfg.Monitor.IntervalSeconds)
	}
	if cfg.Monitor.FailureBackoffSeconds <= 0 {
		return fmt.Errorf("failure backoff must be > 0 seconds, got %d", cfg.Monitor.FailureBackoffSeconds)
	}
	if cfg.Alert.CooldownMinutes <= 0 {
		return fmt.Errorf("alert cooldown must be > 0 minutes, got %d", cfg.Alert.CooldownMinutes)
	}
	if cfg.Alert.State != "memory" && cfg.Alert.State != "redis" {
		return fmt.Errorf("unknown alert state store %q, expected \"memory\" or \"redis\"", cfg.Alert.State)
	}

	// Missing email settings only disable alerting, never fail startup.
	if cfg.Alert.Enabled {
		var missing []string
		for env, value := range map[string]string{
			"SMTP_USERNAME":    cfg.SMTP.Username,
			"SMTP_PASSWORD":    cfg.SMTP.Password,
			"ALERT_EMAIL_FROM": cfg.Alert.From,
			"ALERT_EMAIL_TO":   cfg.Alert.To,
		} {
			if value == "" {
				missing = append(missing, env)
			}
		}
		if len(missing) > 0 {
			log.Warn().Strs("missing", missing).Msg("Incomplete email configuration, disabling email alerts")
			cfg.Alert.Enabled = false
		}
	}

	return nil
}
