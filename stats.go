package engram

import (
	"context"

	"github.com/engramhq/engram/internal/engramerr"
	"github.com/engramhq/engram/internal/promstats"
)

// StatsResult merges the store's aggregate counters with the façade's
// anomaly-tracker baselines (spec.md §4.1 "stats", §4.7).
type StatsResult struct {
	DBPath           string
	DBSizeBytes      int64
	TotalMemories    int
	ByLayer          map[string]int
	ByType           map[string]int
	PinnedCount      int
	AvgWorkingStr    float64
	AvgCoreStr       float64
	HebbianLinkCount int
	GraphLinkCount   int

	// AnomalyBaselines maps a tracked metric name to [mean, std, n].
	AnomalyBaselines map[string][3]float64
}

// Stats returns the current store-wide counters plus the anomaly
// registry's per-metric baselines.
func (m *Memory) Stats(ctx context.Context) (StatsResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, err := m.db.Stats(ctx, m.dbPath)
	if err != nil {
		return StatsResult{}, engramerr.Storage("stats", err)
	}
	return StatsResult{
		DBPath:           s.DBPath,
		DBSizeBytes:      s.DBSizeBytes,
		TotalMemories:    s.TotalMemories,
		ByLayer:          s.ByLayer,
		ByType:           s.ByType,
		PinnedCount:      s.PinnedCount,
		AvgWorkingStr:    s.AvgWorkingStr,
		AvgCoreStr:       s.AvgCoreStr,
		HebbianLinkCount: s.HebbianLinkCount,
		GraphLinkCount:   s.GraphLinkCount,
		AnomalyBaselines: m.anomalies.Snapshot(),
	}, nil
}

// promStatsSource adapts Memory.Stats to promstats.StatsSource, so a host
// can register a Prometheus collector over this engine without promstats
// importing this package (which would cycle back into it).
type promStatsSource struct{ m *Memory }

func (p promStatsSource) Stats(ctx context.Context) (promstats.LayerStats, error) {
	s, err := p.m.Stats(ctx)
	if err != nil {
		return promstats.LayerStats{}, err
	}
	return promstats.LayerStats{
		DBSizeBytes:      s.DBSizeBytes,
		TotalMemories:    s.TotalMemories,
		ByLayer:          s.ByLayer,
		ByType:           s.ByType,
		PinnedCount:      s.PinnedCount,
		AvgWorkingStr:    s.AvgWorkingStr,
		AvgCoreStr:       s.AvgCoreStr,
		HebbianLinkCount: s.HebbianLinkCount,
		GraphLinkCount:   s.GraphLinkCount,
		AnomalyBaselines: s.AnomalyBaselines,
	}, nil
}

// PrometheusCollector returns a prometheus.Collector exposing this engine's
// Stats() as gauges (internal/promstats). The caller registers it with
// whatever registry their process uses; Engram never registers itself.
func (m *Memory) PrometheusCollector() *promstats.Collector {
	return promstats.New(promStatsSource{m: m})
}

// RecordMetric feeds an operational measurement (e.g. recall latency in
// milliseconds) into the named anomaly tracker (spec.md §4.7). Hosts call
// this around their own instrumented operations; Engram does not time
// itself internally.
func (m *Memory) RecordMetric(metric string, value float64) {
	m.anomalies.Record(metric, value)
}

// IsAnomalous reports whether value deviates from metric's rolling
// baseline by more than sigma standard deviations, requiring at least
// minSamples observations. A positive result is logged with its z-score
// so a host can alert on it without re-deriving the score itself.
func (m *Memory) IsAnomalous(metric string, value, sigma float64, minSamples int) bool {
	anomalous := m.anomalies.IsAnomaly(metric, value, sigma, minSamples)
	if anomalous {
		m.log.WithFields(map[string]interface{}{
			"metric": metric,
			"value":  value,
			"zscore": m.anomalies.ZScore(metric, value),
		}).Warn("anomalous metric observation")
	}
	return anomalous
}
