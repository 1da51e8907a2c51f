package observability

import (
	"sync"
	"time"
)

var _ MetricsRegistry = (*MockMetricsRegistry)(nil)

// MockMetricsRegistry counts calls by metric and label set so tests can
// assert on what was recorded.
type MockMetricsRegistry struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewMockMetricsRegistry creates an empty MockMetricsRegistry.
func NewMockMetricsRegistry() *MockMetricsRegistry {
	return &MockMetricsRegistry{counts: make(map[string]int)}
}

func (m *MockMetricsRegistry) inc(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counts == nil {
		m.counts = make(map[string]int)
	}
	m.counts[key]++
}

// Count returns how often the metric identified by key was incremented.
// Keys are the metric name followed by its labels, joined by ":",
// e.g. "pixel_decisions:dax_dialog:allowed".
func (m *MockMetricsRegistry) Count(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[key]
}

func (m *MockMetricsRegistry) IncrementRequests(endpoint, method, status string) {
	m.inc("requests:" + endpoint + ":" + method + ":" + status)
}

func (m *MockMetricsRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {}

func (m *MockMetricsRegistry) IncrementHistoryAppends(family string) {
	m.inc("history_appends:" + family)
}

func (m *MockMetricsRegistry) IncrementPixelDecisions(family, outcome string) {
	m.inc("pixel_decisions:" + family + ":" + outcome)
}

func (m *MockMetricsRegistry) IncrementPixels(pixel, status string) {
	m.inc("pixels:" + pixel + ":" + status)
}

func (m *MockMetricsRegistry) IncrementTrackersTextRenders(remainder string) {
	m.inc("trackers_text:" + remainder)
}

func (m *MockMetricsRegistry) IncrementStoreErrors(op string) {
	m.inc("store_errors:" + op)
}
