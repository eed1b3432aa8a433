// Package telemetry provides Prometheus metrics and correlation-id aware logging helpers.
package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	JoinsAttempted  prometheus.Counter
	JoinsFailed     prometheus.Counter
	Reconnects      prometheus.Counter
	NoticesSeen     prometheus.Counter
	GiftsAccepted   prometheus.Counter
	HarvestPages    prometheus.Counter
	HarvestFailures prometheus.Counter

	// Histograms (seconds)
	HarvestDuration prometheus.Observer

	// Gauges
	ChannelsJoinedGauge prometheus.Gauge
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		JoinsAttempted = promauto.NewCounter(prometheus.CounterOpts{Name: "giftwatch_joins_attempted_total", Help: "Number of channel join attempts"})
		JoinsFailed = promauto.NewCounter(prometheus.CounterOpts{Name: "giftwatch_joins_failed_total", Help: "Number of channel joins that errored or timed out"})
		Reconnects = promauto.NewCounter(prometheus.CounterOpts{Name: "giftwatch_reconnects_total", Help: "Number of chat reconnects after EOF"})
		NoticesSeen = promauto.NewCounter(prometheus.CounterOpts{Name: "giftwatch_notices_seen_total", Help: "Number of user notices received"})
		GiftsAccepted = promauto.NewCounter(prometheus.CounterOpts{Name: "giftwatch_gifts_accepted_total", Help: "Number of gift notices addressed to the configured recipient"})
		HarvestPages = promauto.NewCounter(prometheus.CounterOpts{Name: "giftwatch_harvest_pages_total", Help: "Number of stream-listing pages fetched"})
		HarvestFailures = promauto.NewCounter(prometheus.CounterOpts{Name: "giftwatch_harvest_failures_total", Help: "Number of harvest runs that failed"})
		HarvestDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "giftwatch_harvest_duration_seconds", Help: "Harvest run duration seconds", Buckets: prometheus.DefBuckets})
		ChannelsJoinedGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "giftwatch_channels_joined", Help: "Channels currently joined on the active connection"})
	})
}

// SetChannelsJoined records the joined-channel count for the live connection.
func SetChannelsJoined(n int) {
	if ChannelsJoinedGauge != nil {
		ChannelsJoinedGauge.Set(float64(n))
	}
}

// TimeFunc measures the duration of fn and records in observer if non-nil.
func TimeFunc(obs prometheus.Observer, fn func()) time.Duration {
	start := time.Now()
	fn()
	d := time.Since(start)
	if obs != nil {
		obs.Observe(d.Seconds())
	}
	return d
}

// Correlation ID helpers ----------------------------------------------------
type corrKeyType struct{}

var corrKey corrKeyType

// WithCorrelation returns a new context embedding correlation id (if absent) and the id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// GetCorrelation returns correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	v := ctx.Value(corrKey)
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// LoggerWithCorr returns a logger with corr attribute if present.
func LoggerWithCorr(ctx context.Context) *slog.Logger {
	if id := GetCorrelation(ctx); id != "" {
		return slog.Default().With(slog.String("corr", id))
	}
	return slog.Default()
}
