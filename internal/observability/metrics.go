package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/kiosk-backend/internal/platform/envutil"
	"github.com/yungbote/kiosk-backend/internal/platform/logger"
)

type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge
	apiErrors   *Counter

	blobReaps   *CounterVec
	treeCache   *CounterVec
	sseClients  *Gauge
	sseDropped  *Counter
	busMessages *CounterVec

	pgStats   *GaugeVec
	redisUp   *Gauge
	redisPing *Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", false)
}

// Current is nil unless Init ran with METRICS_ENABLED set; every method
// on a nil *Metrics is a no-op.
func Current() *Metrics {
	return instance
}

func scrapeInterval() time.Duration {
	return envutil.Seconds("METRICS_SCRAPE_INTERVAL_SECONDS", 10*time.Second)
}

func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = newMetrics()
		log.Info("metrics enabled", "scrape_interval", scrapeInterval())
	})
	return instance
}

func newMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("kiosk_api_requests_total", "API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"kiosk_api_request_duration_seconds",
			"API request latency in seconds by method/route.",
			[]string{"method", "route"},
			[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 30},
		),
		apiInflight: NewGauge("kiosk_api_inflight_requests", "In-flight API requests."),
		apiErrors:   NewCounter("kiosk_api_requests_error_total", "API requests answered with a 5xx status."),
		blobReaps:   NewCounterVec("kiosk_blob_reaps_total", "Blob deletions after record mutations by op/result.", []string{"op", "result"}),
		treeCache:   NewCounterVec("kiosk_tree_cache_total", "Playback tree cache lookups by result.", []string{"result"}),
		sseClients:  NewGauge("kiosk_sse_clients", "Connected SSE clients."),
		sseDropped:  NewCounter("kiosk_sse_dropped_total", "SSE messages dropped for slow clients."),
		busMessages: NewCounterVec("kiosk_bus_messages_total", "Change events crossing the message bus by direction.", []string{"direction"}),
		pgStats:     NewGaugeVec("kiosk_db_pool", "Database pool stats.", []string{"stat"}),
		redisUp:     NewGauge("kiosk_redis_up", "Redis reachability (1 up, 0 down)."),
		redisPing:   NewGauge("kiosk_redis_ping_seconds", "Redis ping latency in seconds."),
	}
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	writers := []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight, m.apiErrors,
		m.blobReaps, m.treeCache, m.sseClients, m.sseDropped, m.busMessages,
		m.pgStats, m.redisUp, m.redisPing,
	}
	for _, wr := range writers {
		if err := wr.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route)
	if strings.HasPrefix(status, "5") {
		m.apiErrors.Inc()
	}
}

func (m *Metrics) ApiInflightInc() {
	if m != nil {
		m.apiInflight.Inc()
	}
}

func (m *Metrics) ApiInflightDec() {
	if m != nil {
		m.apiInflight.Dec()
	}
}

func (m *Metrics) IncBlobReap(op string, ok bool) {
	if m == nil {
		return
	}
	result := "deleted"
	if !ok {
		result = "failed"
	}
	m.blobReaps.Inc(op, result)
}

func (m *Metrics) IncTreeCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.treeCache.Inc("hit")
	} else {
		m.treeCache.Inc("miss")
	}
}

func (m *Metrics) SetSSEClients(n int) {
	if m != nil {
		m.sseClients.Set(float64(n))
	}
}

func (m *Metrics) IncSSEDropped() {
	if m != nil {
		m.sseDropped.Inc()
	}
}

// IncBus counts bus traffic; direction is "published" or "received".
func (m *Metrics) IncBus(direction string) {
	if m != nil {
		m.busMessages.Inc(direction)
	}
}

func (m *Metrics) StartPostgresCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	go m.every(ctx, func() {
		sqlDB, err := db.DB()
		if err != nil {
			log.Warn("metrics: db stats unavailable", "error", err)
			return
		}
		stats := sqlDB.Stats()
		m.pgStats.Set(float64(stats.OpenConnections), "open_connections")
		m.pgStats.Set(float64(stats.InUse), "in_use")
		m.pgStats.Set(float64(stats.Idle), "idle")
		m.pgStats.Set(float64(stats.WaitCount), "wait_count")
		m.pgStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
		m.pgStats.Set(float64(stats.MaxOpenConnections), "max_open_connections")
	})
}

// StartRedisCollector pings the shared client; it never closes it.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb goredis.UniversalClient) {
	if m == nil || rdb == nil {
		return
	}
	go m.every(ctx, func() {
		start := time.Now()
		if err := rdb.Ping(ctx).Err(); err != nil {
			m.redisUp.Set(0)
			log.Warn("metrics: redis ping failed", "error", err)
			return
		}
		m.redisUp.Set(1)
		m.redisPing.Set(time.Since(start).Seconds())
	})
}

func (m *Metrics) every(ctx context.Context, fn func()) {
	ticker := time.NewTicker(scrapeInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}
