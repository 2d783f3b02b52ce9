package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Все метрики публикуются с префиксом inventario_
const namespace = "inventario"

var (
	latencyBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}
	cacheBuckets   = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1}
)

// ---- HTTP ----

var HttpRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route and status code",
	},
	[]string{"service", "method", "path", "status"},
)

// HttpRequestDuration считается по шаблону маршрута, а не по фактическому пути
var HttpRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   latencyBuckets,
	},
	[]string{"service", "method", "path"},
)

var HttpRequestsInFlight = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "HTTP requests currently being served",
	},
	[]string{"service"},
)

// ---- Реляционная БД (productos, categorias, alertas) ----

var DbQueryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "db",
		Name:      "query_duration_seconds",
		Help:      "Store query latency by operation and table",
		Buckets:   latencyBuckets,
	},
	[]string{"service", "operation", "table"},
)

// DbConnectionsOpen обновляется при каждом health check
var DbConnectionsOpen = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "db",
		Name:      "connections",
		Help:      "Pooled store connections by state",
	},
	[]string{"service", "state"}, // idle, in_use
)

var DbErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "db",
		Name:      "errors_total",
		Help:      "Failed store operations",
	},
	[]string{"service", "operation"},
)

// ---- Кеш категорий ----

var RedisCacheHits = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Category cache hits",
	},
	[]string{"service", "key_prefix"},
)

var RedisCacheMisses = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Category cache misses",
	},
	[]string{"service", "key_prefix"},
)

var RedisOperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "operation_duration_seconds",
		Help:      "Redis command latency",
		Buckets:   cacheBuckets,
	},
	[]string{"service", "operation"},
)

var RedisErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "errors_total",
		Help:      "Failed Redis commands",
	},
	[]string{"service", "operation"},
)

// ---- События Kafka ----

var KafkaMessagesProduced = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Events written to Kafka",
	},
	[]string{"service", "topic"},
)

var KafkaProduceDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "events",
		Name:      "publish_duration_seconds",
		Help:      "Kafka write latency",
		Buckets:   latencyBuckets,
	},
	[]string{"service", "topic"},
)

var KafkaErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "events",
		Name:      "errors_total",
		Help:      "Failed Kafka writes",
	},
	[]string{"service", "topic", "operation"},
)

// ---- Алерты и товары ----

// InventoryAlertsCreated - новые алерты по tipo_alerta
var InventoryAlertsCreated = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "alerts",
		Name:      "created_total",
		Help:      "Stock alerts created",
	},
	[]string{"type"},
)

// InventoryAlertScans - проходы генератора: trigger scheduled|on_read|manual, status success|failed
var InventoryAlertScans = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "alerts",
		Name:      "scans_total",
		Help:      "Alert engine passes",
	},
	[]string{"trigger", "status"},
)

var InventoryAlertScanDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "alerts",
		Name:      "scan_duration_seconds",
		Help:      "Alert engine pass duration",
		Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	},
	[]string{"trigger"},
)

// InventoryProductMutations - operation create|update, status success|rejected|failed
var InventoryProductMutations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "products",
		Name:      "mutations_total",
		Help:      "Product create and update requests",
	},
	[]string{"operation", "status"},
)
