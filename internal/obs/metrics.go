package obs

import "sync"

// Label is a key/value pair attached to measurements.
type Label struct {
	Key   string
	Value string
}

// Meter emits counters and histograms. Implementations may no-op or bridge to
// a metrics system.
type Meter interface {
	Counter(name string, value float64, labels ...Label)
	Histogram(name string, value float64, labels ...Label)
}

// NopMeter is a Meter that discards all measurements.
type NopMeter struct{}

func (NopMeter) Counter(name string, value float64, labels ...Label)   {}
func (NopMeter) Histogram(name string, value float64, labels ...Label) {}

// MemMeter keeps counter totals in memory, keyed by name and labels.
type MemMeter struct {
	mu       sync.Mutex
	counters map[string]float64
}

func NewMemMeter() *MemMeter {
	return &MemMeter{counters: make(map[string]float64)}
}

func (m *MemMeter) Counter(name string, value float64, labels ...Label) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[key(name, labels)] += value
}

func (m *MemMeter) Histogram(name string, value float64, labels ...Label) {}

// Value returns the current total for name with the given labels.
func (m *MemMeter) Value(name string, labels ...Label) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[key(name, labels)]
}

func key(name string, labels []Label) string {
	k := name
	for _, l := range labels {
		k += "," + l.Key + "=" + l.Value
	}
	return k
}
