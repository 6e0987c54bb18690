package main

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/sameicp/assignment-monitor/cmd/assignment-monitor/cli"
	"github.com/sameicp/assignment-monitor/cmd/assignment-monitor/scripts"
	"github.com/sameicp/assignment-monitor/internal/api"
	"github.com/sameicp/assignment-monitor/internal/config"
	"github.com/sameicp/assignment-monitor/internal/db/model"
	"github.com/sameicp/assignment-monitor/internal/observability/healthcheck"
	"github.com/sameicp/assignment-monitor/internal/observability/metrics"
	"github.com/sameicp/assignment-monitor/internal/queue"
	"github.com/sameicp/assignment-monitor/internal/scheduler"
	"github.com/sameicp/assignment-monitor/internal/services"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("failed to load .env file")
	}
}

func main() {
	ctx := context.Background()

	// setup cli commands and flags
	if err := cli.Setup(); err != nil {
		log.Fatal().Err(err).Msg("error while setting up cli")
	}

	// load config
	cfgPath := cli.GetConfigPath()
	cfg, err := config.New(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg(fmt.Sprintf("error while loading config file: %s", cfgPath))
	}

	// initialize metrics with the metrics port from config
	metricsPort := cfg.Metrics.GetMetricsPort()
	metrics.Init(metricsPort)

	err = model.Setup(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up escrow db model")
	}

	timers := scheduler.NewTimerScheduler()
	defer timers.Stop()

	services, err := services.New(ctx, cfg, timers)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up escrow services layer")
	}

	probes := []healthcheck.Probe{{Name: "db", Check: services.DoHealthCheck}}

	if cfg.Queue.Enabled {
		queues, err := queue.New(cfg.Queue, services)
		if err != nil {
			log.Fatal().Err(err).Msg("error while setting up queues")
		}

		if cli.GetReplayFlag() {
			log.Info().Msg("Replay flag is set. Starting replay of unprocessable messages.")
			if err := scripts.ReplayUnprocessableMessages(ctx, queues, services.DbClient); err != nil {
				log.Fatal().Err(err).Msg("error while replaying unprocessable messages")
			}
			return
		}

		services.SetExpiryDispatcher(queues.PublishExpiredAssignment)
		if err := queues.StartReceivingMessages(); err != nil {
			log.Fatal().Err(err).Msg("error while starting queue processing")
		}
		defer queues.StopReceivingMessages()

		probes = append(probes, healthcheck.Probe{
			Name:  "queue",
			Check: func(context.Context) error { return queues.IsConnectionHealthy() },
		})
	} else if cli.GetReplayFlag() {
		log.Fatal().Msg("replay requires queue.enabled")
	}

	// timers must be back in place before any request can verify an assignment
	restored, err := services.RestoreTimers(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("error while restoring forfeiture timers")
	}
	log.Info().Int("count", restored).Msg("forfeiture timers restored")

	if err := healthcheck.StartHealthCheckCron(ctx, cfg.Server.HealthCheckInterval, probes...); err != nil {
		log.Fatal().Err(err).Msg("error while starting health check cron")
	}

	apiServer, err := api.New(ctx, cfg, services)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up escrow api service")
	}
	if err = apiServer.Start(); err != nil {
		log.Fatal().Err(err).Msg("error while starting escrow api service")
	}
}
