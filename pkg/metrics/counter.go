package metrics

import "sync/atomic"

// Counter is a monotonically increasing event count.
type Counter struct {
	name  string
	value atomic.Int64
}

func newCounter(name string) *Counter {
	return &Counter{name: name}
}

// Inc adds one to the counter.
func (c *Counter) Inc() {
	if enabled.Load() {
		c.value.Add(1)
	}
}

// Name returns the counter name.
func (c *Counter) Name() string {
	return c.name
}

// Value returns the current count.
func (c *Counter) Value() int64 {
	return c.value.Load()
}

// Reset sets the counter back to zero.
func (c *Counter) Reset() {
	c.value.Store(0)
}

// Global counters.
var (
	// Selections counts walkthrough selection changes (GoTo/Next/Previous).
	Selections = newCounter("selections")
	// AdvancesApplied counts reveal advances that moved a phase forward.
	AdvancesApplied = newCounter("advances_applied")
	// AdvancesDropped counts advances rejected as stale or out of order.
	AdvancesDropped = newCounter("advances_dropped")
	// RuleSelections counts rule selector changes.
	RuleSelections = newCounter("rule_selections")
	// DeckReloads counts successful live reloads of the deck file.
	DeckReloads = newCounter("deck_reloads")
)

// AllCounters returns all registered counters.
func AllCounters() []*Counter {
	return []*Counter{
		Selections,
		AdvancesApplied,
		AdvancesDropped,
		RuleSelections,
		DeckReloads,
	}
}

// Snapshot is a point-in-time copy of every metric.
type Snapshot struct {
	Counters map[string]int64 `json:"counters"`
	Timings  []TimingStats    `json:"timings,omitempty"`
}

// TakeSnapshot collects the current counter values and timing stats.
func TakeSnapshot() Snapshot {
	counters := AllCounters()
	snap := Snapshot{Counters: make(map[string]int64, len(counters))}
	for _, c := range counters {
		snap.Counters[c.Name()] = c.Value()
	}
	snap.Timings = AllTimingStats()
	return snap
}
