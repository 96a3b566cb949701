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

	"strconv"
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
	once                         sync.Once
	metricsRouter                *chi.Mux
	tokenClientLatency           *prometheus.HistogramVec
	queueSendErrorCounter        prometheus.Counter
	httpRequestDurationHistogram *prometheus.HistogramVec
	pollerDurationHistogram      *prometheus.HistogramVec
	ledgerOpDurationHistogram    *prometheus.HistogramVec
	poolBalanceGauge             prometheus.Gauge
	poolAllowanceGauge           prometheus.Gauge
	totalUsersGauge              prometheus.Gauge
	activeStakesGauge            prometheus.Gauge
	dbLatency                    *prometheus.HistogramVec
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

	tokenClientLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "token_client_latency_seconds",
			Help:    "Histogram of token client durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"method", "status"},
	)

	// add a counter for the number of errors from the fail to push message into queue
	queueSendErrorCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "queue_send_error_count",
			Help: "The total number of errors when sending messages to the queue",
		},
	)

	httpRequestDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of incoming http request durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"method", "path", "status"},
	)

	pollerDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poller_duration_seconds",
			Help:    "Histogram of poller durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"type", "status"},
	)

	ledgerOpDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ledger_op_duration_seconds",
			Help:    "Ledger operation duration in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"operation", "status"},
	)

	poolBalanceGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pool_balance_units",
			Help: "Last observed pool token balance in base units",
		},
	)

	poolAllowanceGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pool_allowance_units",
			Help: "Last observed pool allowance towards the ledger in base units",
		},
	)

	totalUsersGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "total_users",
			Help: "Number of registered users",
		},
	)

	activeStakesGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_stakes",
			Help: "Number of open stakes across all users",
		},
	)

	dbLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "db_latency_seconds",
			Help: "DB latency in seconds splitted by method and execution status",
		},
		[]string{"method", "status"},
	)

	prometheus.MustRegister(
		tokenClientLatency,
		queueSendErrorCounter,
		httpRequestDurationHistogram,
		pollerDurationHistogram,
		ledgerOpDurationHistogram,
		poolBalanceGauge,
		poolAllowanceGauge,
		totalUsersGauge,
		activeStakesGauge,
		dbLatency,
	)
}

// The Record helpers are no-ops until Init has registered the collectors,
// so callers do not need a running metrics server.

func RecordTokenClientLatency(d time.Duration, method string, failure bool) {
	if tokenClientLatency == nil {
		return
	}
	status := Success
	if failure {
		status = Error
	}

	tokenClientLatency.WithLabelValues(method, status.String()).Observe(d.Seconds())
}

func RecordDbLatency(d time.Duration, method string, failure bool) {
	if dbLatency == nil {
		return
	}
	status := Success
	if failure {
		status = Error
	}

	dbLatency.WithLabelValues(method, status.String()).Observe(d.Seconds())
}

func RecordLedgerOpDuration(d time.Duration, operation string, failure bool) {
	if ledgerOpDurationHistogram == nil {
		return
	}
	status := Success
	if failure {
		status = Error
	}

	ledgerOpDurationHistogram.WithLabelValues(operation, status.String()).Observe(d.Seconds())
}

func RecordPoolBalance(units float64) {
	if poolBalanceGauge == nil {
		return
	}
	poolBalanceGauge.Set(units)
}

func RecordPoolAllowance(units float64) {
	if poolAllowanceGauge == nil {
		return
	}
	poolAllowanceGauge.Set(units)
}

func RecordTotalUsers(count uint64) {
	if totalUsersGauge == nil {
		return
	}
	totalUsersGauge.Set(float64(count))
}

func RecordActiveStakes(count uint64) {
	if activeStakesGauge == nil {
		return
	}
	activeStakesGauge.Set(float64(count))
}

// RecordHttpRequestDuration records the duration of one incoming http
// request. The path label is the route pattern, not the raw URL, to keep
// cardinality bounded.
func RecordHttpRequestDuration(d time.Duration, method, path string, statusCode int) {
	if httpRequestDurationHistogram == nil {
		return
	}
	httpRequestDurationHistogram.WithLabelValues(
		method,
		path,
		strconv.Itoa(statusCode),
	).Observe(d.Seconds())
}

func RecordQueueSendError() {
	if queueSendErrorCounter == nil {
		return
	}
	queueSendErrorCounter.Inc()
}
