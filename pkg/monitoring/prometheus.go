package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus 指标定义
var (
	// HTTP 请求相关指标
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时分布",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// 数据库相关指标
	dbConnectionsInUse = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_in_use",
			Help: "当前使用中的数据库连接数",
		},
	)

	// 订单状态机指标
	orderTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_transitions_total",
			Help: "订单状态转换总数",
		},
		[]string{"from", "to", "result"},
	)

	// 统计引擎指标
	statsRecomputeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stats_recompute_duration_seconds",
			Help:    "全量重算耗时分布",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		},
	)

	statsRecomputeAgentFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stats_recompute_agent_failures_total",
			Help: "全量重算中单个销售失败的次数",
		},
	)

	statsUnknownAgentOrders = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stats_unknown_agent_orders_total",
			Help: "销售编码无法解析而被跳过的订单数",
		},
	)

	statsNegativePending = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stats_negative_pending_total",
			Help: "待返佣金额为负（对账异常）的次数",
		},
	)
)

// PrometheusMiddleware Gin中间件，用于收集HTTP指标
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		statusCode := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			statusCode,
		).Inc()

		httpRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

// 业务指标记录函数

func RecordOrderTransition(from, to, result string) {
	orderTransitionsTotal.WithLabelValues(from, to, result).Inc()
}

func ObserveRecomputeDuration(d time.Duration) {
	statsRecomputeDuration.Observe(d.Seconds())
}

func RecordRecomputeAgentFailure() {
	statsRecomputeAgentFailures.Inc()
}

func RecordUnknownAgentOrder() {
	statsUnknownAgentOrders.Inc()
}

func RecordNegativePending() {
	statsNegativePending.Inc()
}

func UpdateDBConnections(inUse int) {
	dbConnectionsInUse.Set(float64(inUse))
}
