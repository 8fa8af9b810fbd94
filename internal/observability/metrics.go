package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters for requests and monitor cycles.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	errorCount   map[string]int64
	lastCycle    CycleStats
	cycleCount   int64
}

// CycleStats summarizes one SLA monitor pass.
type CycleStats struct {
	StartedAt  time.Time
	Duration   time.Duration
	Scanned    int
	Breached   int
	Warned     int
	Escalated  int
	Errors     int
	Skipped    bool
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordCycle stores the outcome of the latest monitor pass.
func (m *Metrics) RecordCycle(stats CycleStats) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastCycle = stats
	m.cycleCount++
}

// LastCycle returns the most recent monitor pass summary.
func (m *Metrics) LastCycle() (CycleStats, int64) {
	if m == nil {
		return CycleStats{}, 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastCycle, m.cycleCount
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
