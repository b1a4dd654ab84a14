package metrics

import (
	"slices"
	"sync"
	"time"
)

const maxSamples = 1000

type Metrics struct {
	mutex     sync.RWMutex
	rules     map[string]int64
	targets   map[string]*targetStats
	startTime time.Time
}

type targetStats struct {
	responses   int64
	latencies   []time.Duration
	statusCodes map[int]int64
	healthy     bool
	healthKnown bool
}

type Snapshot struct {
	TotalRequests int64                    `json:"total_requests"`
	Uptime        time.Duration            `json:"uptime"`
	Strategy      string                   `json:"strategy"`
	Rules         map[string]int64         `json:"rules"`
	Targets       map[string]TargetMetrics `json:"targets"`
}

type TargetMetrics struct {
	Responses   int64         `json:"responses"`
	Healthy     *bool         `json:"healthy,omitempty"`
	AvgResponse time.Duration `json:"avg_response"`
	P50Response time.Duration `json:"p50_response"`
	P95Response time.Duration `json:"p95_response"`
	P99Response time.Duration `json:"p99_response"`
	StatusCodes map[int]int64 `json:"status_codes"`
}

func NewMetrics() *Metrics {
	return &Metrics{
		rules:     make(map[string]int64),
		targets:   make(map[string]*targetStats),
		startTime: time.Now(),
	}
}

func (m *Metrics) target(id string) *targetStats {
	ts, ok := m.targets[id]
	if !ok {
		ts = &targetStats{statusCodes: make(map[int]int64)}
		m.targets[id] = ts
	}
	return ts
}

func (m *Metrics) RecordRouted(rule string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.rules[rule]++
}

func (m *Metrics) RecordResponse(target string, duration time.Duration, statusCode int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	ts := m.target(target)
	ts.responses++
	ts.statusCodes[statusCode]++

	ts.latencies = append(ts.latencies, duration)
	if len(ts.latencies) > maxSamples {
		ts.latencies = ts.latencies[len(ts.latencies)-maxSamples:]
	}
}

func (m *Metrics) RecordHealth(target string, healthy bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	ts := m.target(target)
	ts.healthy = healthy
	ts.healthKnown = true
}

func (m *Metrics) Snapshot(strategy string) Snapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	snap := Snapshot{
		Uptime:   time.Since(m.startTime),
		Strategy: strategy,
		Rules:    make(map[string]int64, len(m.rules)),
		Targets:  make(map[string]TargetMetrics, len(m.targets)),
	}

	for rule, n := range m.rules {
		snap.Rules[rule] = n
		snap.TotalRequests += n
	}

	for id, ts := range m.targets {
		tm := TargetMetrics{
			Responses:   ts.responses,
			StatusCodes: make(map[int]int64, len(ts.statusCodes)),
		}
		for code, n := range ts.statusCodes {
			tm.StatusCodes[code] = n
		}
		if ts.healthKnown {
			healthy := ts.healthy
			tm.Healthy = &healthy
		}

		if len(ts.latencies) > 0 {
			sorted := slices.Clone(ts.latencies)
			slices.Sort(sorted)

			tm.AvgResponse = average(sorted)
			tm.P50Response = percentile(sorted, 0.50)
			tm.P95Response = percentile(sorted, 0.95)
			tm.P99Response = percentile(sorted, 0.99)
		}

		snap.Targets[id] = tm
	}

	return snap
}

func average(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	var sum time.Duration
	for _, d := range durations {
		sum += d
	}
	return sum / time.Duration(len(durations))
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}

	index := int(float64(len(sorted)) * p)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}
