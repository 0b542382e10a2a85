package performance

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

// maxOperations bounds the per-call history kept for the slowest list.
const maxOperations = 1000

// Tracker tracks timing of HTTP requests and outbound calls (match source, predictor, backend)
type Tracker struct {
	mu sync.RWMutex

	started time.Time
	stats   map[string]*operationStats

	// Recent calls, oldest first, capped at maxOperations
	Operations []Operation
}

type operationStats struct {
	count    int
	failures int
	total    time.Duration
	max      time.Duration
}

// Operation is one recorded call.
type Operation struct {
	Name      string
	Detail    string
	Duration  time.Duration
	Success   bool
	Error     string
	Timestamp time.Time
}

var globalTracker = NewTracker()

// GetTracker returns the global performance tracker
func GetTracker() *Tracker {
	return globalTracker
}

func NewTracker() *Tracker {
	return &Tracker{
		started:    time.Now(),
		stats:      make(map[string]*operationStats),
		Operations: make([]Operation, 0, maxOperations),
	}
}

// Reset resets all metrics
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.started = time.Now()
	t.stats = make(map[string]*operationStats)
	t.Operations = t.Operations[:0]
}

// Record records a single call. detail is free text (e.g. "Arsenal vs Chelsea").
func (t *Tracker) Record(name, detail string, duration time.Duration, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.stats[name]
	if !ok {
		st = &operationStats{}
		t.stats[name] = st
	}
	st.count++
	st.total += duration
	if duration > st.max {
		st.max = duration
	}

	op := Operation{
		Name:      name,
		Detail:    detail,
		Duration:  duration,
		Success:   err == nil,
		Timestamp: time.Now(),
	}
	if err != nil {
		st.failures++
		op.Error = err.Error()
	}

	if len(t.Operations) >= maxOperations {
		copy(t.Operations, t.Operations[1:])
		t.Operations = t.Operations[:len(t.Operations)-1]
	}
	t.Operations = append(t.Operations, op)

	if duration > 5*time.Second {
		slog.Warn("Slow operation", "operation", name, "detail", detail, "duration", duration)
	}
}

// Track returns a func that records the elapsed time since Track was called.
//
//	done := tracker.Track("football_data.matches", "")
//	defer func() { done(err) }()
func (t *Tracker) Track(name, detail string) func(error) {
	start := time.Now()
	return func(err error) {
		t.Record(name, detail, time.Since(start), err)
	}
}

// OperationMetrics is the per-operation summary in MetricsResponse
type OperationMetrics struct {
	Count       int     `json:"count"`
	Failures    int     `json:"failures"`
	AvgTime     string  `json:"avg_time"`
	MaxTime     string  `json:"max_time"`
	SuccessRate float64 `json:"success_rate"`
}

// SlowOperation is one entry of MetricsResponse.SlowestOperations
type SlowOperation struct {
	Operation string `json:"operation"`
	Detail    string `json:"detail,omitempty"`
	Duration  string `json:"duration"`
	Error     string `json:"error,omitempty"`
}

// MetricsResponse represents the JSON response structure for /metrics endpoint
type MetricsResponse struct {
	Uptime            string                      `json:"uptime"`
	Operations        map[string]OperationMetrics `json:"operations"`
	SlowestOperations []SlowOperation             `json:"slowest_operations"`
}

// GetMetrics returns structured metrics for JSON API
func (t *Tracker) GetMetrics() MetricsResponse {
	t.mu.RLock()
	defer t.mu.RUnlock()

	resp := MetricsResponse{
		Uptime:            time.Since(t.started).Round(time.Second).String(),
		Operations:        make(map[string]OperationMetrics, len(t.stats)),
		SlowestOperations: []SlowOperation{},
	}

	for name, st := range t.stats {
		m := OperationMetrics{
			Count:    st.count,
			Failures: st.failures,
			MaxTime:  st.max.String(),
		}
		if st.count > 0 {
			m.AvgTime = (st.total / time.Duration(st.count)).String()
			m.SuccessRate = float64(st.count-st.failures) / float64(st.count) * 100
		}
		resp.Operations[name] = m
	}

	ops := make([]Operation, len(t.Operations))
	copy(ops, t.Operations)
	sort.Slice(ops, func(i, j int) bool {
		return ops[i].Duration > ops[j].Duration
	})
	for i := 0; i < min(10, len(ops)); i++ {
		resp.SlowestOperations = append(resp.SlowestOperations, SlowOperation{
			Operation: ops[i].Name,
			Detail:    ops[i].Detail,
			Duration:  ops[i].Duration.String(),
			Error:     ops[i].Error,
		})
	}

	return resp
}
