// Package metrics provides Prometheus metrics for the storyarc
// segmentation engine and its verification harness.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the storyarc engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Core engine metrics
	gamesSegmented      *prometheus.CounterVec // by allocation path
	segmentationErrors  prometheus.Counter
	segmentationLatency prometheus.Histogram
	blocksPerGame       prometheus.Histogram

	// Correctness-defect metrics; any nonzero value is a bug
	allocationShortfalls prometheus.Counter
	guardrailViolations  prometheus.Counter

	// Harness queue metrics
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueEnqueues    prometheus.Counter
	queueDequeues    prometheus.Counter
	queueFullDrops   prometheus.Counter

	// Harness worker metrics
	workerActiveCount prometheus.Gauge
	workerLatency     prometheus.Histogram
	workerErrors      prometheus.Counter

	// Drama-ranking store metrics
	gamesTracked   prometheus.Gauge
	rankingUpdates prometheus.Counter
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// blockCountBuckets covers the legal block-count range with one bucket per
// count.
var blockCountBuckets = []float64{1, 2, 3, 4, 5, 6, 7} //nolint:gochecknoglobals // static bucket layout

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "storyarc",
		subsystem:        "segmenter",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.gamesSegmented = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "games_segmented_total",
		Help:      "Total games segmented, labeled by allocation path (weighted, unweighted, blowout, three_block)",
	}, []string{"path"})

	m.segmentationErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "segmentation_errors_total",
		Help:      "Total games whose output failed verification and was withheld from downstream",
	})

	m.segmentationLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "segmentation_latency_milliseconds",
		Help:      "Histogram of single-game segmentation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.blocksPerGame = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "blocks_per_game",
		Help:      "Histogram of narrative block counts per segmented game",
		Buckets:   blockCountBuckets,
	})

	m.allocationShortfalls = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "allocation_shortfalls_total",
		Help:      "Weighted allocations that could not reach the target split count (correctness defect)",
	})

	m.guardrailViolations = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "guardrail_violations_total",
		Help:      "Outputs that violated a non-negotiable invariant (correctness defect)",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current number of games waiting in the harness queue",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Configured capacity of the harness queue",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_utilization",
		Help:      "Harness queue utilization ratio (0-1)",
	})

	m.queueEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueues_total",
		Help:      "Total games enqueued",
	})

	m.queueDequeues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeues_total",
		Help:      "Total games dequeued",
	})

	m.queueFullDrops = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_full_drops_total",
		Help:      "Enqueue attempts rejected because the queue was full or closed",
	})

	m.workerActiveCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_active_count",
		Help:      "Number of running segmentation workers",
	})

	m.workerLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_latency_milliseconds",
		Help:      "Histogram of per-game worker processing latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.workerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_errors_total",
		Help:      "Total games a worker failed to process",
	})

	m.gamesTracked = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "games_tracked",
		Help:      "Number of games in the drama-ranking store",
	})

	m.rankingUpdates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ranking_updates_total",
		Help:      "Total drama-ranking store updates",
	})
}

// RecordGameSegmented increments the segmented-games counter for the given
// allocation path.
func RecordGameSegmented(path string) {
	globalManager.gamesSegmented.WithLabelValues(path).Inc()
}

// RecordSegmentationError increments the withheld-output counter.
func RecordSegmentationError() {
	globalManager.segmentationErrors.Inc()
}

// RecordSegmentationLatency observes one game's segmentation latency.
func RecordSegmentationLatency(latencyMs float64) {
	globalManager.segmentationLatency.Observe(latencyMs)
}

// RecordBlocksPerGame observes a segmented game's block count.
func RecordBlocksPerGame(count int) {
	globalManager.blocksPerGame.Observe(float64(count))
}

// RecordAllocationShortfall increments the weighted-allocation defect counter.
func RecordAllocationShortfall() {
	globalManager.allocationShortfalls.Inc()
}

// RecordGuardrailViolation increments the invariant-violation counter.
func RecordGuardrailViolation() {
	globalManager.guardrailViolations.Inc()
}

// UpdateQueueSize sets the current queue size gauge.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity gauge.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization gauge.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueues.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeues.Inc()
}

// RecordQueueFullDrop increments the rejected-enqueue counter.
func RecordQueueFullDrop() {
	globalManager.queueFullDrops.Inc()
}

// UpdateWorkerActiveCount sets the active worker gauge.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerLatency observes one game's worker processing latency.
func RecordWorkerLatency(latencyMs float64) {
	globalManager.workerLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// UpdateGamesTracked sets the ranking-store size gauge.
func UpdateGamesTracked(count int) {
	globalManager.gamesTracked.Set(float64(count))
}

// RecordRankingUpdate increments the ranking-store update counter.
func RecordRankingUpdate() {
	globalManager.rankingUpdates.Inc()
}

// GetRegistry returns the custom registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
