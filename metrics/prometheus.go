package metrics

import (
	"net/http"
	"sync"
	"time"

	"cosmossdk.io/math"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

// Vault metrics collector

var (
	// Singleton collector
	collector     *Collector
	collectorOnce sync.Once
)

// Collector holds all vault metrics
type Collector struct {
	// Pool metrics
	NAV            prometheus.Gauge
	TotalSupply    prometheus.Gauge
	PricePerShare  prometheus.Gauge
	Healthy        prometheus.Gauge
	ModuleFailures *prometheus.CounterVec

	// Fee metrics
	FeeShares *prometheus.GaugeVec

	// Withdrawal queue metrics
	WithdrawalsPending prometheus.Gauge
	WithdrawalsMatured prometheus.Gauge

	// Cross-domain metrics
	Requests        *prometheus.GaugeVec
	RequestsExpired prometheus.Counter

	// Relayer metrics
	RelayerReplies      *prometheus.CounterVec
	RelayerPending      prometheus.Gauge
	RelayerReplyLatency prometheus.Histogram

	// WebSocket metrics
	WSConnectionsActive prometheus.Gauge
	WSMessagesTotal     *prometheus.CounterVec

	// API metrics
	APIRequestsTotal  *prometheus.CounterVec
	APIRequestLatency *prometheus.HistogramVec

	// System metrics
	BlockHeight  prometheus.Gauge
	EndBlockTime prometheus.Histogram
}

// GetCollector returns the singleton metrics collector registered with the
// default Prometheus registry
func GetCollector() *Collector {
	collectorOnce.Do(func() {
		collector = NewCollector(prometheus.DefaultRegisterer)
	})
	return collector
}

// NewCollector creates a collector and registers it with reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{}

	// Pool metrics
	c.NAV = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "hwmvault",
		Subsystem: "pool",
		Name:      "nav",
		Help:      "Net asset value in whole base asset units",
	})

	c.TotalSupply = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "hwmvault",
		Subsystem: "pool",
		Name:      "total_supply",
		Help:      "Share supply in whole shares",
	})

	c.PricePerShare = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "hwmvault",
		Subsystem: "pool",
		Name:      "price_per_share",
		Help:      "Base asset value of one whole share",
	})

	c.Healthy = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "hwmvault",
		Subsystem: "pool",
		Name:      "healthy",
		Help:      "1 when every valuation module reported, 0 otherwise",
	})

	c.ModuleFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hwmvault",
			Subsystem: "pool",
			Name:      "module_failures_total",
			Help:      "Valuation module failures seen during aggregation",
		},
		[]string{"module"},
	)

	// Fee metrics
	c.FeeShares = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "hwmvault",
			Subsystem: "fees",
			Name:      "recipient_shares",
			Help:      "Shares held by fee recipients",
		},
		[]string{"recipient"},
	)

	// Withdrawal queue metrics
	c.WithdrawalsPending = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "hwmvault",
		Subsystem: "withdrawals",
		Name:      "pending",
		Help:      "Queued withdrawal requests",
	})

	c.WithdrawalsMatured = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "hwmvault",
		Subsystem: "withdrawals",
		Name:      "matured",
		Help:      "Queued withdrawal requests past their timelock",
	})

	// Cross-domain metrics
	c.Requests = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "hwmvault",
			Subsystem: "crossdomain",
			Name:      "requests",
			Help:      "Cross-domain requests by status",
		},
		[]string{"status"},
	)

	c.RequestsExpired = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "hwmvault",
		Subsystem: "crossdomain",
		Name:      "expired_total",
		Help:      "Requests expired by the end blocker",
	})

	// Relayer metrics
	c.RelayerReplies = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hwmvault",
			Subsystem: "relayer",
			Name:      "replies_total",
			Help:      "Replies submitted by the relayer",
		},
		[]string{"outcome"},
	)

	c.RelayerPending = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "hwmvault",
		Subsystem: "relayer",
		Name:      "pending",
		Help:      "Handles waiting on remote values",
	})

	c.RelayerReplyLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "hwmvault",
		Subsystem: "relayer",
		Name:      "reply_latency_ms",
		Help:      "Time from first remote value to reply submission",
		Buckets:   []float64{10, 50, 100, 500, 1000, 5000, 30000, 120000},
	})

	// WebSocket metrics
	c.WSConnectionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "hwmvault",
		Subsystem: "websocket",
		Name:      "connections_active",
		Help:      "Number of active WebSocket connections",
	})

	c.WSMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hwmvault",
			Subsystem: "websocket",
			Name:      "messages_total",
			Help:      "Total WebSocket messages sent",
		},
		[]string{"channel"},
	)

	// API metrics
	c.APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hwmvault",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total API requests",
		},
		[]string{"method", "path", "status"},
	)

	c.APIRequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hwmvault",
			Subsystem: "api",
			Name:      "request_latency_ms",
			Help:      "API request latency in milliseconds",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"method", "path"},
	)

	// System metrics
	c.BlockHeight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "hwmvault",
		Subsystem: "chain",
		Name:      "block_height",
		Help:      "Current block height",
	})

	c.EndBlockTime = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "hwmvault",
		Subsystem: "chain",
		Name:      "endblock_ms",
		Help:      "Vault end blocker duration in milliseconds",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 25, 50, 100},
	})

	reg.MustRegister(
		c.NAV, c.TotalSupply, c.PricePerShare, c.Healthy, c.ModuleFailures,
		c.FeeShares,
		c.WithdrawalsPending, c.WithdrawalsMatured,
		c.Requests, c.RequestsExpired,
		c.RelayerReplies, c.RelayerPending, c.RelayerReplyLatency,
		c.WSConnectionsActive, c.WSMessagesTotal,
		c.APIRequestsTotal, c.APIRequestLatency,
		c.BlockHeight, c.EndBlockTime,
	)
	return c
}

// ============ Recording Helpers ============

// VaultSnapshot is the pool state sampled once per block
type VaultSnapshot struct {
	Height        int64
	NAV           math.Int
	Supply        math.Int
	Price         math.Int
	AssetDecimals uint32
	ShareDecimals uint32
	Healthy       bool
	FailedModules []string

	PendingWithdrawals int
	MaturedWithdrawals int
	ExpiredRequests    int
	RequestsByStatus   map[string]int

	// FeeShares maps a recipient label to its share balance
	FeeShares map[string]math.Int
}

// RecordVault publishes a block's vault snapshot
func (c *Collector) RecordVault(s VaultSnapshot) {
	c.BlockHeight.Set(float64(s.Height))
	c.NAV.Set(ToFloat(s.NAV, s.AssetDecimals))
	c.TotalSupply.Set(ToFloat(s.Supply, s.ShareDecimals))
	c.PricePerShare.Set(ToFloat(s.Price, s.AssetDecimals))
	if s.Healthy {
		c.Healthy.Set(1)
	} else {
		c.Healthy.Set(0)
	}
	for _, m := range s.FailedModules {
		c.ModuleFailures.WithLabelValues(m).Inc()
	}

	c.WithdrawalsPending.Set(float64(s.PendingWithdrawals))
	c.WithdrawalsMatured.Set(float64(s.MaturedWithdrawals))
	c.RequestsExpired.Add(float64(s.ExpiredRequests))
	for status, n := range s.RequestsByStatus {
		c.Requests.WithLabelValues(status).Set(float64(n))
	}
	for recipient, shares := range s.FeeShares {
		c.FeeShares.WithLabelValues(recipient).Set(ToFloat(shares, s.ShareDecimals))
	}
}

// RecordEndBlock records end blocker duration
func (c *Collector) RecordEndBlock(latencyMs float64) {
	c.EndBlockTime.Observe(latencyMs)
}

// RecordRelayerReply records a submitted reply
func (c *Collector) RecordRelayerReply(success bool, latencyMs float64) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	c.RelayerReplies.WithLabelValues(outcome).Inc()
	c.RelayerReplyLatency.Observe(latencyMs)
}

// RecordAPIRequest records an API request
func (c *Collector) RecordAPIRequest(method, path, status string, latencyMs float64) {
	c.APIRequestsTotal.WithLabelValues(method, path, status).Inc()
	c.APIRequestLatency.WithLabelValues(method, path).Observe(latencyMs)
}

// RecordWSConnection records WebSocket connection changes
func (c *Collector) RecordWSConnection(delta int) {
	c.WSConnectionsActive.Add(float64(delta))
}

// RecordWSMessage records a WebSocket message
func (c *Collector) RecordWSMessage(channel string) {
	c.WSMessagesTotal.WithLabelValues(channel).Inc()
}

// ToFloat scales a fixed-point integer with the given decimals to a float.
// Precision loss is acceptable for gauges.
func ToFloat(v math.Int, decimals uint32) float64 {
	if v.IsNil() {
		return 0
	}
	return decimal.NewFromBigInt(v.BigInt(), -int32(decimals)).InexactFloat64()
}

// ============ HTTP Handler ============

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for measuring latency
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ElapsedMs returns the elapsed time in milliseconds
func (t *Timer) ElapsedMs() float64 {
	return float64(time.Since(t.start).Microseconds()) / 1000.0
}
