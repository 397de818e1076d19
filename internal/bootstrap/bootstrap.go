// Package bootstrap assembles the daemon's components from config so
// the command entrypoints stay thin.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/contentonrails/newsmon/internal/alert"
	"github.com/contentonrails/newsmon/internal/config"
	"github.com/contentonrails/newsmon/internal/database"
	"github.com/contentonrails/newsmon/internal/monitor"
	"github.com/contentonrails/newsmon/internal/schedule"
	"github.com/contentonrails/newsmon/internal/sink"
	"github.com/contentonrails/newsmon/internal/source"
)

// Components holds everything a command needs to run the monitor.
type Components struct {
	Config      *config.Config
	Source      source.Source
	Sink        sink.Sink
	Notifier    alert.Notifier
	Gate        *alert.Gate
	Monitor     *monitor.Monitor
	MongoClient *mongo.Client
	RedisClient *redis.Client
}

// Initialize loads config, sets up logging, and wires the configured
// source/sink adapters, alert gate, and notifier into a Monitor.
func Initialize(serviceName string, args []string) (*Components, error) {
	cfg, err := config.LoadConfig("config/config.yaml", args)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Warn().Msgf("Invalid log level '%s', defaulting to info", cfg.Log.Level)
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().Msgf("Starting %s service with log level %s...", serviceName, level.String())

	c := &Components{Config: cfg}

	switch cfg.Source.Kind {
	case config.SourceMongo:
		c.MongoClient, err = database.NewMongoClient(cfg.Mongo.URI)
		if err != nil {
			return nil, err
		}
		db := c.MongoClient.Database(cfg.Mongo.Database)
		c.Source = source.NewMongoSource(db)
		c.Sink = sink.NewMongoSink(db)
	case config.SourceREST:
		c.Source = source.NewRESTSource(cfg.API.BaseURL, cfg.API.Key)
		c.Sink = sink.NewRESTSink(cfg.API.BaseURL, cfg.API.Key)
	}

	var store alert.Store
	if cfg.Alert.State == "redis" {
		c.RedisClient, err = database.NewRedisClient(cfg.Redis.Host, cfg.Redis.Port)
		if err != nil {
			return nil, err
		}
		store = alert.NewRedisStore(c.RedisClient)
	}
	c.Gate = alert.NewGate(time.Duration(cfg.Alert.CooldownMinutes)*time.Minute, nil, store)

	if cfg.Alert.Enabled {
		c.Notifier, err = alert.NewMailer(alert.MailerOptions{
			Host:          cfg.SMTP.Host,
			Port:          cfg.SMTP.Port,
			Username:      cfg.SMTP.Username,
			Password:      cfg.SMTP.Password,
			From:          cfg.Alert.From,
			To:            cfg.Alert.To,
			SubjectPrefix: cfg.Alert.SubjectPrefix,
			UseTLS:        cfg.SMTP.UseTLS,
		})
		if err != nil {
			return nil, err
		}
	}

	workerSchedule, err := schedule.ParseSpec(
		cfg.Schedules.Worker.Frequency,
		cfg.Schedules.Worker.TimeEntries(),
		cfg.Schedules.Worker.ToleranceMinutes)
	if err != nil {
		return nil, fmt.Errorf("invalid worker schedule: %w", err)
	}
	publisherSchedule, err := schedule.ParseSpec(
		cfg.Schedules.Publisher.Frequency,
		cfg.Schedules.Publisher.TimeEntries(),
		cfg.Schedules.Publisher.ToleranceMinutes)
	if err != nil {
		return nil, fmt.Errorf("invalid publisher schedule: %w", err)
	}

	c.Monitor = monitor.New(monitor.Options{
		Source:            c.Source,
		Sink:              c.Sink,
		Notifier:          c.Notifier,
		Gate:              c.Gate,
		WorkerSchedule:    workerSchedule,
		PublisherSchedule: publisherSchedule,
		Interval:          time.Duration(cfg.Monitor.IntervalSeconds) * time.Second,
		FailureBackoff:    time.Duration(cfg.Monitor.FailureBackoffSeconds) * time.Second,
	})

	return c, nil
}

// CloseAll releases the external clients.
func (c *Components) CloseAll(ctx context.Context) {
	if c.MongoClient != nil {
		if err := c.MongoClient.Disconnect(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to disconnect MongoDB client")
		}
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close Redis client")
		}
	}
}
