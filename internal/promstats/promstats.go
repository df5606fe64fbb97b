// Package promstats exposes an Engram memory engine's Stats() as Prometheus
// gauges: layer counts, per-type counts, average strengths, link counts, and
// anomaly-tracker baselines, for a host process that wants to graph memory
// system health over time.
package promstats

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// LayerStats is the subset of the façade's StatsResult this package reads.
// It is expressed as a plain struct rather than importing package engram,
// so a host can wire this collector without creating an import cycle
// between engram and its own optional add-ons.
type LayerStats struct {
	DBSizeBytes      int64
	TotalMemories    int
	ByLayer          map[string]int
	ByType           map[string]int
	PinnedCount      int
	AvgWorkingStr    float64
	AvgCoreStr       float64
	HebbianLinkCount int
	GraphLinkCount   int
	AnomalyBaselines map[string][3]float64
}

// StatsSource is the single method this package needs from a memory engine.
type StatsSource interface {
	Stats(ctx context.Context) (LayerStats, error)
}

// Collector implements prometheus.Collector, pulling a fresh snapshot from
// Source on every scrape rather than caching counters internally — Engram's
// own store is the source of truth, not a set of promauto globals.
type Collector struct {
	Source StatsSource

	totalMemories    *prometheus.Desc
	dbSizeBytes      *prometheus.Desc
	layerCount       *prometheus.Desc
	typeCount        *prometheus.Desc
	pinnedCount      *prometheus.Desc
	avgWorkingStr    *prometheus.Desc
	avgCoreStr       *prometheus.Desc
	hebbianLinkCount *prometheus.Desc
	graphLinkCount   *prometheus.Desc
	anomalyMean      *prometheus.Desc
	anomalyStd       *prometheus.Desc
	anomalySamples   *prometheus.Desc
	scrapeError      *prometheus.Desc
}

// New builds a Collector reading from source. Callers register it with
// prometheus.Register (or a custom registry) themselves — this package
// never calls MustRegister on a global registry, since Engram is a library,
// not a standalone process.
func New(source StatsSource) *Collector {
	return &Collector{
		Source: source,
		totalMemories: prometheus.NewDesc(
			"engram_memories_total", "Total number of stored memories.", nil, nil),
		dbSizeBytes: prometheus.NewDesc(
			"engram_db_size_bytes", "Size of the backing database in bytes.", nil, nil),
		layerCount: prometheus.NewDesc(
			"engram_layer_memories", "Number of memories in a given layer.", []string{"layer"}, nil),
		typeCount: prometheus.NewDesc(
			"engram_type_memories", "Number of memories of a given type.", []string{"type"}, nil),
		pinnedCount: prometheus.NewDesc(
			"engram_pinned_memories", "Number of pinned memories.", nil, nil),
		avgWorkingStr: prometheus.NewDesc(
			"engram_avg_working_strength", "Average working-trace strength across stored memories.", nil, nil),
		avgCoreStr: prometheus.NewDesc(
			"engram_avg_core_strength", "Average core-trace strength across stored memories.", nil, nil),
		hebbianLinkCount: prometheus.NewDesc(
			"engram_hebbian_links_total", "Total number of Hebbian co-activation links.", nil, nil),
		graphLinkCount: prometheus.NewDesc(
			"engram_graph_links_total", "Total number of entity-graph links.", nil, nil),
		anomalyMean: prometheus.NewDesc(
			"engram_anomaly_baseline_mean", "Rolling-window mean for a tracked metric.", []string{"metric"}, nil),
		anomalyStd: prometheus.NewDesc(
			"engram_anomaly_baseline_stddev", "Rolling-window standard deviation for a tracked metric.", []string{"metric"}, nil),
		anomalySamples: prometheus.NewDesc(
			"engram_anomaly_baseline_samples", "Rolling-window sample count for a tracked metric.", []string{"metric"}, nil),
		scrapeError: prometheus.NewDesc(
			"engram_stats_scrape_errors_total", "Set to 1 if the most recent Stats() call failed.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.totalMemories
	ch <- c.dbSizeBytes
	ch <- c.layerCount
	ch <- c.typeCount
	ch <- c.pinnedCount
	ch <- c.avgWorkingStr
	ch <- c.avgCoreStr
	ch <- c.hebbianLinkCount
	ch <- c.graphLinkCount
	ch <- c.anomalyMean
	ch <- c.anomalyStd
	ch <- c.anomalySamples
	ch <- c.scrapeError
}

// Collect implements prometheus.Collector, fetching a fresh Stats()
// snapshot on every scrape.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	stats, err := c.Source.Stats(context.Background())
	if err != nil {
		ch <- prometheus.MustNewConstMetric(c.scrapeError, prometheus.GaugeValue, 1)
		return
	}
	ch <- prometheus.MustNewConstMetric(c.scrapeError, prometheus.GaugeValue, 0)

	ch <- prometheus.MustNewConstMetric(c.totalMemories, prometheus.GaugeValue, float64(stats.TotalMemories))
	ch <- prometheus.MustNewConstMetric(c.dbSizeBytes, prometheus.GaugeValue, float64(stats.DBSizeBytes))
	ch <- prometheus.MustNewConstMetric(c.pinnedCount, prometheus.GaugeValue, float64(stats.PinnedCount))
	ch <- prometheus.MustNewConstMetric(c.avgWorkingStr, prometheus.GaugeValue, stats.AvgWorkingStr)
	ch <- prometheus.MustNewConstMetric(c.avgCoreStr, prometheus.GaugeValue, stats.AvgCoreStr)
	ch <- prometheus.MustNewConstMetric(c.hebbianLinkCount, prometheus.GaugeValue, float64(stats.HebbianLinkCount))
	ch <- prometheus.MustNewConstMetric(c.graphLinkCount, prometheus.GaugeValue, float64(stats.GraphLinkCount))

	for layer, n := range stats.ByLayer {
		ch <- prometheus.MustNewConstMetric(c.layerCount, prometheus.GaugeValue, float64(n), layer)
	}
	for typ, n := range stats.ByType {
		ch <- prometheus.MustNewConstMetric(c.typeCount, prometheus.GaugeValue, float64(n), typ)
	}
	for metric, baseline := range stats.AnomalyBaselines {
		mean, std, n := baseline[0], baseline[1], baseline[2]
		ch <- prometheus.MustNewConstMetric(c.anomalyMean, prometheus.GaugeValue, mean, metric)
		ch <- prometheus.MustNewConstMetric(c.anomalyStd, prometheus.GaugeValue, std, metric)
		ch <- prometheus.MustNewConstMetric(c.anomalySamples, prometheus.GaugeValue, n, metric)
	}
}
