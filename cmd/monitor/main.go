package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/contentonrails/newsmon/internal/api"
	"github.com/contentonrails/newsmon/internal/bootstrap"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info().Msgf("Received signal %s, shutting down monitor gracefully...", sig)
		cancel()
	}()

	components, err := bootstrap.Initialize("monitor", os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start monitoring service")
	}
	defer components.CloseAll(context.Background())

	if !components.Config.Monitor.Enabled {
		log.Warn().Msg("Monitoring is disabled")
		return
	}

	if listen := components.Config.Monitor.HTTPListen; listen != "" {
		router := api.NewRouter(components.Monitor, components.Config.Monitor.HTTPAPIKey)
		go func() {
			log.Info().Str("listen", listen).Msg("Status endpoint started")
			if err := http.ListenAndServe(listen, router); err != nil {
				log.Error().Err(err).Msg("Status endpoint stopped")
			}
		}()
	}

	components.Monitor.Run(ctx)
	log.Info().Msg("Monitoring service exited gracefully")
}
