package healthcheck

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const defaultCronInterval = 60

var logger zerolog.Logger = log.Logger

// terminate is swapped in tests
var terminate = terminateService

func SetLogger(customLogger zerolog.Logger) {
	logger = customLogger
}

// Probe reports whether a dependency is still reachable.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

// StartHealthCheckCron runs every probe each cronTime seconds and terminates
// the service as soon as one of them fails.
func StartHealthCheckCron(ctx context.Context, cronTime int, probes ...Probe) error {
	c := cron.New()
	logger.Info().Msg("Initiated Health Check Cron")

	if cronTime == 0 {
		cronTime = defaultCronInterval
	}

	cronSpec := fmt.Sprintf("@every %ds", cronTime)
	timeout := time.Duration(cronTime) * time.Second

	_, err := c.AddFunc(cronSpec, func() {
		runProbes(ctx, timeout, probes)
	})
	if err != nil {
		return err
	}

	c.Start()

	go func() {
		<-ctx.Done()
		logger.Info().Msg("Stopping Health Check Cron")
		c.Stop()
	}()

	return nil
}

func runProbes(ctx context.Context, timeout time.Duration, probes []Probe) {
	for _, probe := range probes {
		probeCtx, cancel := context.WithTimeout(ctx, timeout)
		err := probe.Check(probeCtx)
		cancel()
		if err != nil {
			logger.Error().Err(err).Str("probe", probe.Name).Msg("dependency is not healthy")
			terminate()
			return
		}
	}
}

func terminateService() {
	logger.Error().Msg("Terminating service due to health check failure.")
	os.Exit(1)
}
