// Package metrics keeps in-process counters and timings for pw.
//
// Timings cover deck parsing, view rendering and export; counters cover
// selection traffic and reveal advances. Everything is lock-free and global.
// Set PW_METRICS=0 to turn collection off.
//
//	func (m Model) View() string {
//	    defer metrics.Timer(metrics.ViewRender)()
//	    ...
//	}
package metrics

import (
	"os"
	"sync/atomic"
	"time"
)

var enabled atomic.Bool

func init() {
	enabled.Store(os.Getenv("PW_METRICS") != "0")
}

// Enabled reports whether metrics are being collected.
func Enabled() bool { return enabled.Load() }

// SetEnabled turns collection on or off.
func SetEnabled(e bool) { enabled.Store(e) }

// TimingMetric accumulates durations of one named operation.
type TimingMetric struct {
	name  string
	count atomic.Int64
	total atomic.Int64
	max   atomic.Int64
	min   atomic.Int64 // 0 until the first sample
}

func newTimingMetric(name string) *TimingMetric {
	return &TimingMetric{name: name}
}

// Record adds one sample.
func (m *TimingMetric) Record(d time.Duration) {
	if !enabled.Load() {
		return
	}
	ns := d.Nanoseconds()
	m.count.Add(1)
	m.total.Add(ns)
	for cur := m.max.Load(); ns > cur; cur = m.max.Load() {
		if m.max.CompareAndSwap(cur, ns) {
			break
		}
	}
	for cur := m.min.Load(); cur == 0 || ns < cur; cur = m.min.Load() {
		if m.min.CompareAndSwap(cur, ns) {
			break
		}
	}
}

// Name returns the metric name.
func (m *TimingMetric) Name() string { return m.name }

// Count returns the number of samples.
func (m *TimingMetric) Count() int64 { return m.count.Load() }

// MaxNs returns the longest sample.
func (m *TimingMetric) MaxNs() int64 { return m.max.Load() }

// MinNs returns the shortest sample, or 0 before the first one.
func (m *TimingMetric) MinNs() int64 { return m.min.Load() }

// AvgNs returns the mean sample, or 0 before the first one.
func (m *TimingMetric) AvgNs() int64 {
	n := m.count.Load()
	if n == 0 {
		return 0
	}
	return m.total.Load() / n
}

// Stats returns the metric in milliseconds.
func (m *TimingMetric) Stats() TimingStats {
	const ms = float64(time.Millisecond)
	return TimingStats{
		Name:    m.name,
		Count:   m.count.Load(),
		TotalMs: float64(m.total.Load()) / ms,
		AvgMs:   float64(m.AvgNs()) / ms,
		MaxMs:   float64(m.max.Load()) / ms,
		MinMs:   float64(m.min.Load()) / ms,
	}
}

// Reset clears all samples.
func (m *TimingMetric) Reset() {
	m.count.Store(0)
	m.total.Store(0)
	m.max.Store(0)
	m.min.Store(0)
}

// TimingStats is a snapshot of one TimingMetric.
type TimingStats struct {
	Name    string  `json:"name"`
	Count   int64   `json:"count"`
	TotalMs float64 `json:"total_ms"`
	AvgMs   float64 `json:"avg_ms"`
	MaxMs   float64 `json:"max_ms"`
	MinMs   float64 `json:"min_ms,omitempty"`
}

// Timer starts timing m; call the returned func to record the sample.
func Timer(m *TimingMetric) func() {
	if m == nil || !enabled.Load() {
		return func() {}
	}
	start := time.Now()
	return func() { m.Record(time.Since(start)) }
}

// Timing metrics.
var (
	DeckParse  = newTimingMetric("deck_parse")
	ViewRender = newTimingMetric("view_render")
	Export     = newTimingMetric("export")
)

// AllTimingMetrics returns every timing metric in report order.
func AllTimingMetrics() []*TimingMetric {
	return []*TimingMetric{DeckParse, ViewRender, Export}
}

// ResetAll clears every timing metric and counter.
func ResetAll() {
	for _, m := range AllTimingMetrics() {
		m.Reset()
	}
	for _, c := range AllCounters() {
		c.Reset()
	}
}

// AllTimingStats returns stats for the timing metrics that have samples.
func AllTimingStats() []TimingStats {
	var out []TimingStats
	for _, m := range AllTimingMetrics() {
		if m.Count() > 0 {
			out = append(out, m.Stats())
		}
	}
	return out
}
