package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/contentonrails/newsmon/internal/bootstrap"
	"github.com/contentonrails/newsmon/internal/health"
)

// Connectivity smoke test: verifies the configured data source and
// status sink are reachable before deploying the daemon.
func main() {
	components, err := bootstrap.Initialize("test-connections", os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("Initialization failed")
	}
	defer components.CloseAll(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now().UTC()
	activity, err := components.Source.WorkerActivity(ctx, now, health.WorkerWindow)
	if err != nil {
		log.Fatal().Err(err).Msg("Data source check failed")
	}
	log.Info().Int("recent_runs", activity.RecentRuns).Msg("Data source reachable")

	if err := components.Sink.Heartbeat(ctx); err != nil {
		log.Fatal().Err(err).Msg("Status sink check failed")
	}
	log.Info().Msg("Status sink reachable")

	if components.Notifier == nil {
		log.Warn().Msg("Email alerts are disabled, skipping SMTP check")
	} else {
		log.Info().Msg("Email alerting configured")
	}
	log.Info().Msg("All connection checks passed")
}
