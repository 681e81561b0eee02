package metrics

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Outcome string

const (
	Success                  Outcome       = "success"
	Error                    Outcome       = "error"
	MetricRequestTimeout     time.Duration = 5 * time.Second
	MetricRequestIdleTimeout time.Duration = 10 * time.Second
)

func (O Outcome) String() string {
	return string(O)
}

var (
	once                           sync.Once
	metricsRouter                  *chi.Mux
	clientRequestDurationHistogram *prometheus.HistogramVec
	pollerDurationHistogram        *prometheus.HistogramVec
	tokensDiscoveredCounter        prometheus.Counter
	milestonesRecordedCounter      prometheus.Counter
	alertsSentCounter              prometheus.Counter
	alertSendErrorCounter          prometheus.Counter
	taskErrorCounter               *prometheus.CounterVec
	blacklistedActorsCounter       prometheus.Counter
	trackedTokensGauge             prometheus.Gauge
	purgedTokensCounter            prometheus.Counter
	dbLatency                      *prometheus.HistogramVec
)

// Init initializes the metrics package.
func Init(metricsPort int) {
	once.Do(func() {
		initMetricsRouter(metricsPort)
		registerMetrics()
	})
}

// initMetricsRouter initializes the metrics router.
func initMetricsRouter(metricsPort int) {
	metricsRouter = chi.NewRouter()
	metricsRouter.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})
	// Create a custom server with timeout settings
	metricsAddr := fmt.Sprintf(":%d", metricsPort)
	server := &http.Server{
		Addr:         metricsAddr,
		Handler:      metricsRouter,
		ReadTimeout:  MetricRequestTimeout,
		WriteTimeout: MetricRequestTimeout,
		IdleTimeout:  MetricRequestIdleTimeout,
	}

	// Start the server in a separate goroutine
	go func() {
		log.Printf("Starting metrics server on %s", metricsAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msgf("Error starting metrics server on %s", metricsAddr)
		}
	}()
}

// registerMetrics initializes and register the Prometheus metrics.
func registerMetrics() {
	defaultHistogramBucketsSeconds := []float64{0.1, 0.5, 1, 2.5, 5, 10, 30}

	// client requests are the ones sent to the listings feed
	clientRequestDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "client_request_duration_seconds",
			Help:    "Histogram of outgoing client request durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"method", "status"},
	)

	pollerDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poller_duration_seconds",
			Help:    "Histogram of poller durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"type", "status"},
	)

	tokensDiscoveredCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tokens_discovered_total",
			Help: "The total number of newly discovered tokens",
		},
	)

	milestonesRecordedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "milestones_recorded_total",
			Help: "The total number of milestone events recorded",
		},
	)

	alertsSentCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "alerts_sent_total",
			Help: "The total number of alert messages delivered",
		},
	)

	alertSendErrorCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "alert_send_error_total",
			Help: "The total number of alert delivery failures",
		},
	)

	taskErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_error_total",
			Help: "The total number of periodic task failures, split by task",
		},
		[]string{"task"},
	)

	blacklistedActorsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "blacklisted_actors_total",
			Help: "The total number of actors blacklisted by the reputation sweep",
		},
	)

	trackedTokensGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tracked_tokens_page_size",
			Help: "Size of the last milestone-check page of tracked tokens",
		},
	)

	purgedTokensCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "purged_tokens_total",
			Help: "The total number of tokens removed by the retention sweep",
		},
	)

	dbLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_latency_seconds",
			Help:    "DB latency in seconds splitted by method and execution status",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"method", "status"},
	)

	prometheus.MustRegister(
		clientRequestDurationHistogram,
		pollerDurationHistogram,
		tokensDiscoveredCounter,
		milestonesRecordedCounter,
		alertsSentCounter,
		alertSendErrorCounter,
		taskErrorCounter,
		blacklistedActorsCounter,
		trackedTokensGauge,
		purgedTokensCounter,
		dbLatency,
	)
}

// RecordClientRequestDuration records the duration of a listings feed request.
func RecordClientRequestDuration(method string, statusCode int, duration time.Duration) {
	if clientRequestDurationHistogram == nil {
		return
	}
	clientRequestDurationHistogram.WithLabelValues(
		method, fmt.Sprintf("%d", statusCode),
	).Observe(duration.Seconds())
}

func IncTokensDiscovered(n int) {
	if tokensDiscoveredCounter == nil {
		return
	}
	tokensDiscoveredCounter.Add(float64(n))
}

func IncMilestonesRecorded(n int) {
	if milestonesRecordedCounter == nil {
		return
	}
	milestonesRecordedCounter.Add(float64(n))
}

func IncAlertsSent() {
	if alertsSentCounter == nil {
		return
	}
	alertsSentCounter.Inc()
}

func IncAlertSendError() {
	if alertSendErrorCounter == nil {
		return
	}
	alertSendErrorCounter.Inc()
}

func IncTaskError(task string) {
	if taskErrorCounter == nil {
		return
	}
	taskErrorCounter.WithLabelValues(task).Inc()
}

func IncBlacklistedActors() {
	if blacklistedActorsCounter == nil {
		return
	}
	blacklistedActorsCounter.Inc()
}

func RecordMilestonePageSize(n int) {
	if trackedTokensGauge == nil {
		return
	}
	trackedTokensGauge.Set(float64(n))
}

func IncPurgedTokens(n int64) {
	if purgedTokensCounter == nil {
		return
	}
	purgedTokensCounter.Add(float64(n))
}

// RecordDBLatency records the latency of a persistence gateway call.
func RecordDBLatency(method string, start time.Time, err error) {
	if dbLatency == nil {
		return
	}
	status := Success
	if err != nil {
		status = Error
	}
	dbLatency.WithLabelValues(method, status.String()).Observe(time.Since(start).Seconds())
}
