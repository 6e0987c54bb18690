package metrics

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Outcome string

const (
	Success Outcome = "success"
	Error   Outcome = "error"
	// Ignored marks outdated duplicates that were dropped on purpose.
	Ignored Outcome = "ignored"
)

func (O Outcome) String() string {
	return string(O)
}

// EscrowEvent names a balance-affecting operation.
type EscrowEvent string

const (
	StakeEvent   EscrowEvent = "stake"
	VerifyEvent  EscrowEvent = "verify"
	ForfeitEvent EscrowEvent = "forfeit"
	ClaimEvent   EscrowEvent = "claim"
)

var defaultHistogramBucketsSeconds = []float64{0.1, 0.5, 1, 2.5, 5, 10, 30}

var (
	once          sync.Once
	metricsRouter *chi.Mux

	// Collectors exist before Init so that recording is safe in tests.
	httpRequestDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of http request durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"endpoint", "status"},
	)
	escrowEventCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "escrow_events_total",
			Help: "Count of stake, verify, forfeit and claim operations by outcome.",
		},
		[]string{"event", "outcome"},
	)
	queueProcessingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "queue_message_processing_duration_seconds",
			Help:    "Histogram of queue message processing durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"queue", "status"},
	)
	armedTimersGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "forfeiture_timers_armed",
			Help: "Number of forfeiture timers currently armed in this process.",
		},
	)
)

// Init registers the collectors and, when metricsPort is not 0, starts the
// metrics server.
func Init(metricsPort int) {
	once.Do(func() {
		registerMetrics()
		if metricsPort != 0 {
			initMetricsRouter(metricsPort)
		}
	})
}

// initMetricsRouter initializes the metrics router.
func initMetricsRouter(metricsPort int) {
	metricsRouter = chi.NewRouter()
	metricsRouter.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	go func() {
		metricsAddr := fmt.Sprintf(":%d", metricsPort)
		err := http.ListenAndServe(metricsAddr, metricsRouter)
		if err != nil {
			log.Fatal().Err(err).Msgf("error starting metrics server on %s", metricsAddr)
		}
	}()
}

// registerMetrics registers the Prometheus collectors.
func registerMetrics() {
	prometheus.MustRegister(
		httpRequestDurationHistogram,
		escrowEventCounter,
		queueProcessingDuration,
		armedTimersGauge,
	)
}

// StartHttpRequestDurationTimer starts a timer to measure http request handling duration.
func StartHttpRequestDurationTimer(endpoint string) func(statusCode int) {
	startTime := time.Now()
	return func(statusCode int) {
		duration := time.Since(startTime).Seconds()
		httpRequestDurationHistogram.WithLabelValues(endpoint, fmt.Sprintf("%d", statusCode)).Observe(duration)
	}
}

// StartQueueProcessingTimer starts a timer to measure how long a queue message takes to process.
func StartQueueProcessingTimer(queueName string) func(outcome Outcome) {
	startTime := time.Now()
	return func(outcome Outcome) {
		duration := time.Since(startTime).Seconds()
		queueProcessingDuration.WithLabelValues(queueName, outcome.String()).Observe(duration)
	}
}

func RecordEscrowEvent(event EscrowEvent, outcome Outcome) {
	escrowEventCounter.WithLabelValues(string(event), outcome.String()).Inc()
}

func IncArmedTimers() {
	armedTimersGauge.Inc()
}

func DecArmedTimers() {
	armedTimersGauge.Dec()
}
