package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stockledger"

// Metrics holds all Prometheus collectors for the service
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// MongoDB metrics
	mongoOperationDuration *prometheus.HistogramVec
	mongoOperationErrors   *prometheus.CounterVec

	// Kafka metrics
	kafkaPublishTotal  *prometheus.CounterVec
	kafkaPublishErrors *prometheus.CounterVec

	// Business metrics
	transactionsRecorded   *prometheus.CounterVec
	transactionsReverted   *prometheus.CounterVec
	transactionsEdited     prometheus.Counter
	bulkRowsProcessed      *prometheus.CounterVec
	insufficientStockTotal prometheus.Counter
	lowStockAlertsTotal    *prometheus.CounterVec
	pendingApprovals       prometheus.Gauge
}

// New creates a Metrics instance backed by its own registry
func New(serviceName string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Name:        "http_requests_total",
				Help:        "Total number of HTTP requests",
				ConstLabels: prometheus.Labels{"service": serviceName},
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Name:        "http_request_duration_seconds",
				Help:        "HTTP request latency in seconds",
				ConstLabels: prometheus.Labels{"service": serviceName},
				Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace:   namespace,
				Name:        "http_requests_in_flight",
				Help:        "Number of HTTP requests currently being served",
				ConstLabels: prometheus.Labels{"service": serviceName},
			},
		),

		mongoOperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Name:        "mongodb_operation_duration_seconds",
				Help:        "MongoDB operation latency in seconds",
				ConstLabels: prometheus.Labels{"service": serviceName},
				Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation", "collection"},
		),
		mongoOperationErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Name:        "mongodb_operation_errors_total",
				Help:        "Total number of failed MongoDB operations",
				ConstLabels: prometheus.Labels{"service": serviceName},
			},
			[]string{"operation", "collection"},
		),

		kafkaPublishTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Name:        "kafka_publish_total",
				Help:        "Total number of events published to Kafka",
				ConstLabels: prometheus.Labels{"service": serviceName},
			},
			[]string{"topic"},
		),
		kafkaPublishErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Name:        "kafka_publish_errors_total",
				Help:        "Total number of failed Kafka publishes",
				ConstLabels: prometheus.Labels{"service": serviceName},
			},
			[]string{"topic"},
		),

		transactionsRecorded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Name:        "transactions_recorded_total",
				Help:        "Total number of stock transactions recorded",
				ConstLabels: prometheus.Labels{"service": serviceName},
			},
			[]string{"type", "status"},
		),
		transactionsReverted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Name:        "transactions_reverted_total",
				Help:        "Total number of stock transactions reverted",
				ConstLabels: prometheus.Labels{"service": serviceName},
			},
			[]string{"type"},
		),
		transactionsEdited: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Name:        "transactions_edited_total",
				Help:        "Total number of stock transactions edited",
				ConstLabels: prometheus.Labels{"service": serviceName},
			},
		),
		bulkRowsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Name:        "bulk_rows_processed_total",
				Help:        "Total number of bulk submission rows by outcome",
				ConstLabels: prometheus.Labels{"service": serviceName},
			},
			[]string{"outcome"},
		),
		insufficientStockTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Name:        "insufficient_stock_rejections_total",
				Help:        "Total number of operations rejected for insufficient stock",
				ConstLabels: prometheus.Labels{"service": serviceName},
			},
		),
		lowStockAlertsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Name:        "low_stock_alerts_total",
				Help:        "Total number of low stock alerts raised",
				ConstLabels: prometheus.Labels{"service": serviceName},
			},
			[]string{"branch"},
		),
		pendingApprovals: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace:   namespace,
				Name:        "pending_approvals",
				Help:        "Number of transactions awaiting approval",
				ConstLabels: prometheus.Labels{"service": serviceName},
			},
		),
	}

	registry.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.httpRequestsInFlight,
		m.mongoOperationDuration,
		m.mongoOperationErrors,
		m.kafkaPublishTotal,
		m.kafkaPublishErrors,
		m.transactionsRecorded,
		m.transactionsReverted,
		m.transactionsEdited,
		m.bulkRowsProcessed,
		m.insufficientStockTotal,
		m.lowStockAlertsTotal,
		m.pendingApprovals,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler returns an HTTP handler for the /metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records a completed HTTP request
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// IncrementHTTPRequestsInFlight increments the in-flight gauge
func (m *Metrics) IncrementHTTPRequestsInFlight() {
	m.httpRequestsInFlight.Inc()
}

// DecrementHTTPRequestsInFlight decrements the in-flight gauge
func (m *Metrics) DecrementHTTPRequestsInFlight() {
	m.httpRequestsInFlight.Dec()
}

// RecordMongoOperation records a MongoDB operation
func (m *Metrics) RecordMongoOperation(operation, collection string, duration time.Duration, err error) {
	m.mongoOperationDuration.WithLabelValues(operation, collection).Observe(duration.Seconds())
	if err != nil {
		m.mongoOperationErrors.WithLabelValues(operation, collection).Inc()
	}
}

// RecordKafkaPublish records a Kafka publish attempt
func (m *Metrics) RecordKafkaPublish(topic string, err error) {
	m.kafkaPublishTotal.WithLabelValues(topic).Inc()
	if err != nil {
		m.kafkaPublishErrors.WithLabelValues(topic).Inc()
	}
}

// RecordTransactionRecorded records a recorded transaction
func (m *Metrics) RecordTransactionRecorded(txType, status string) {
	m.transactionsRecorded.WithLabelValues(txType, status).Inc()
}

// RecordTransactionReverted records a reverted transaction
func (m *Metrics) RecordTransactionReverted(txType string) {
	m.transactionsReverted.WithLabelValues(txType).Inc()
}

// RecordTransactionEdited records an edited transaction
func (m *Metrics) RecordTransactionEdited() {
	m.transactionsEdited.Inc()
}

// RecordBulkRow records a bulk submission row outcome ("applied", "pending", "skipped", "failed")
func (m *Metrics) RecordBulkRow(outcome string) {
	m.bulkRowsProcessed.WithLabelValues(outcome).Inc()
}

// RecordInsufficientStock records a stock shortage rejection
func (m *Metrics) RecordInsufficientStock() {
	m.insufficientStockTotal.Inc()
}

// RecordLowStockAlert records a low stock alert for a branch
func (m *Metrics) RecordLowStockAlert(branchID string) {
	m.lowStockAlertsTotal.WithLabelValues(branchID).Inc()
}

// SetPendingApprovals sets the pending approvals gauge
func (m *Metrics) SetPendingApprovals(count int) {
	m.pendingApprovals.Set(float64(count))
}
