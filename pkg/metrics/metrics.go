// Package metrics 提供理论价服务的 Prometheus 指标
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wyfcoding/theoprice/pkg/logger"
)

// Metrics 指标集合
type Metrics struct {
	// HTTP 请求计数
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTP 请求耗时
	HTTPRequestDuration prometheus.Histogram

	// 按附表统计已计算记录数
	RecordsPriced *prometheus.CounterVec
	// 数值无效的记录
	RecordsInvalid *prometheus.CounterVec
	// 比对 break 数
	ReconciliationBreaks prometheus.Counter
	// 批量计算耗时
	BatchDuration prometheus.Histogram

	registry *prometheus.Registry
}

// New 创建指标实例，使用独立 registry 便于测试
func New(serviceName string) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "theoprice",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "theoprice",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		RecordsPriced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "theoprice",
			Subsystem: serviceName,
			Name:      "records_priced_total",
			Help:      "Records priced by schedule code",
		}, []string{"schedule"}),
		RecordsInvalid: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "theoprice",
			Subsystem: serviceName,
			Name:      "records_invalid_total",
			Help:      "Records rejected as numerically invalid",
		}, []string{"schedule"}),
		ReconciliationBreaks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "theoprice",
			Subsystem: serviceName,
			Name:      "reconciliation_breaks_total",
			Help:      "Computed prices outside tolerance of the reference price",
		}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "theoprice",
			Subsystem: serviceName,
			Name:      "batch_duration_seconds",
			Help:      "Batch pricing duration in seconds",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30},
		}),
		registry: prometheus.NewRegistry(),
	}
	m.registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.RecordsPriced,
		m.RecordsInvalid,
		m.ReconciliationBreaks,
		m.BatchDuration,
	)
	return m
}

// Handler Prometheus 抓取入口
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// StartHTTPServer 启动 Prometheus HTTP 服务器
func (m *Metrics) StartHTTPServer(port int, path string) {
	if path == "" {
		path = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())
	addr := fmt.Sprintf(":%d", port)
	logger.Info(context.Background(), "Starting Prometheus HTTP server", "addr", addr, "path", path)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
			logger.Error(context.Background(), "Prometheus HTTP server stopped", "error", err)
		}
	}()
}

// RecordPriced 记录一次成功计算
func (m *Metrics) RecordPriced(schedule string) {
	if m == nil {
		return
	}
	m.RecordsPriced.WithLabelValues(schedule).Inc()
}

// RecordInvalid 记录一次数值无效
func (m *Metrics) RecordInvalid(schedule string) {
	if m == nil {
		return
	}
	m.RecordsInvalid.WithLabelValues(schedule).Inc()
}

// RecordBreak 记录一次比对 break
func (m *Metrics) RecordBreak() {
	if m == nil {
		return
	}
	m.ReconciliationBreaks.Inc()
}

// ObserveBatch 记录批量耗时（秒）
func (m *Metrics) ObserveBatch(seconds float64) {
	if m == nil {
		return
	}
	m.BatchDuration.Observe(seconds)
}

// RecordHTTPRequest 记录 HTTP 请求
func (m *Metrics) RecordHTTPRequest(method, path string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, fmt.Sprint(status)).Inc()
	m.HTTPRequestDuration.Observe(seconds)
}
