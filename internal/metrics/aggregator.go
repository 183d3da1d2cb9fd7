// internal/metrics/aggregator.go
package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/mwiater/paper2pod/internal/logging"
	"github.com/mwiater/paper2pod/internal/providers"
)

// Aggregator collects chat metrics per model for one pipeline run.
type Aggregator struct {
	mutex   sync.Mutex
	metrics map[string]*ModelMetrics
}

// NewAggregator returns an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{metrics: make(map[string]*ModelMetrics)}
}

func (a *Aggregator) modelLocked(model string) *ModelMetrics {
	m, ok := a.metrics[model]
	if !ok {
		m = &ModelMetrics{ModelName: model}
		a.metrics[model] = m
	}
	m.LastUpdatedUTC = time.Now().UTC()
	return m
}

// Record adds one successful completion.
func (a *Aggregator) Record(model string, resp providers.ChatResponse, latency time.Duration) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	stats := &a.modelLocked(model).OverallStats
	stats.TotalRequests++
	stats.ToolCalls += int64(len(resp.Message.ToolCalls))
	updateRunningStat(&stats.LatencyMillis, float64(latency.Milliseconds()))
	updateRunningStat(&stats.InputTokens, float64(resp.Usage.PromptTokens))
	updateRunningStat(&stats.OutputTokens, float64(resp.Usage.CompletionTokens))
}

// RecordError counts a failed completion.
func (a *Aggregator) RecordError(model string) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	stats := &a.modelLocked(model).OverallStats
	stats.TotalRequests++
	stats.FailedCalls++
}

// Snapshot returns a copy of the collected metrics ordered by model name.
func (a *Aggregator) Snapshot() []ModelMetrics {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	out := make([]ModelMetrics, 0, len(a.metrics))
	for _, m := range a.metrics {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ModelName < out[j].ModelName })
	return out
}

// WriteReport saves the snapshot as indented JSON at path.
func (a *Aggregator) WriteReport(path string) error {
	data, err := json.MarshalIndent(a.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	logging.LogEvent("[METRICS] report written to %s", path)
	return nil
}

// updateRunningStat updates a single running statistic using Welford's online algorithm.
func updateRunningStat(rs *RunningStat, value float64) {
	rs.Count++
	rs.Sum += value
	if rs.Count == 1 {
		rs.Min = value
		rs.Max = value
	} else {
		if value < rs.Min {
			rs.Min = value
		}
		if value > rs.Max {
			rs.Max = value
		}
	}

	delta := value - rs.Mean
	rs.Mean += delta / float64(rs.Count)
	delta2 := value - rs.Mean
	rs.M2 += delta * delta2
}
