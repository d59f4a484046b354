// Package metrics provides observability for the mission server.
package metrics

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Collector gathers performance metrics.
type Collector struct {
	// Turn metrics
	TurnCount      int64
	TurnLatencySum int64 // nanoseconds
	TurnLatencyMax int64
	LastTurnTime   time.Time

	// Event metrics
	EventsWritten    int64
	EventWriteErrors int64

	// Engine metrics
	SessionsActive   int64
	ModifiersCreated int64
	GatesUnlocked    int64
	DriftDetections  int64

	// WebSocket metrics
	WSConnectionsActive int64
	WSMessagesIn        int64
	WSMessagesOut       int64
	WSErrors            int64

	StartTime time.Time
	mu        sync.RWMutex
}

// Global collector instance
var collector = &Collector{
	StartTime: time.Now(),
}

// Get returns the global collector.
func Get() *Collector {
	return collector
}

// RecordTurn records a processed turn.
func (c *Collector) RecordTurn(latency time.Duration) {
	atomic.AddInt64(&c.TurnCount, 1)
	atomic.AddInt64(&c.TurnLatencySum, int64(latency))

	// Update max (non-atomic but acceptable for metrics)
	if int64(latency) > atomic.LoadInt64(&c.TurnLatencyMax) {
		atomic.StoreInt64(&c.TurnLatencyMax, int64(latency))
	}

	c.mu.Lock()
	c.LastTurnTime = time.Now()
	c.mu.Unlock()
}

// RecordEventWrite records an event write to the database.
func (c *Collector) RecordEventWrite(err error) {
	atomic.AddInt64(&c.EventsWritten, 1)
	if err != nil {
		atomic.AddInt64(&c.EventWriteErrors, 1)
	}
}

// RecordSession records session registry changes.
func (c *Collector) RecordSession(delta int64) {
	atomic.AddInt64(&c.SessionsActive, delta)
}

// RecordModifierCreated counts a new active modifier.
func (c *Collector) RecordModifierCreated() {
	atomic.AddInt64(&c.ModifiersCreated, 1)
}

// RecordGatesUnlocked counts a turn where all required gates were met.
func (c *Collector) RecordGatesUnlocked() {
	atomic.AddInt64(&c.GatesUnlocked, 1)
}

// RecordDrift counts a detected persona drift.
func (c *Collector) RecordDrift() {
	atomic.AddInt64(&c.DriftDetections, 1)
}

// RecordWSConnection records WebSocket connection changes.
func (c *Collector) RecordWSConnection(delta int64) {
	atomic.AddInt64(&c.WSConnectionsActive, delta)
}

// RecordWSMessage records WebSocket messages.
func (c *Collector) RecordWSMessage(incoming bool) {
	if incoming {
		atomic.AddInt64(&c.WSMessagesIn, 1)
	} else {
		atomic.AddInt64(&c.WSMessagesOut, 1)
	}
}

// RecordWSError records a WebSocket error.
func (c *Collector) RecordWSError() {
	atomic.AddInt64(&c.WSErrors, 1)
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	turnCount := atomic.LoadInt64(&c.TurnCount)

	var turnAvg float64
	if turnCount > 0 {
		turnAvg = float64(atomic.LoadInt64(&c.TurnLatencySum)) / float64(turnCount) / 1e6 // ms
	}

	return map[string]interface{}{
		"uptime_seconds": time.Since(c.StartTime).Seconds(),

		"turns": map[string]interface{}{
			"count":          turnCount,
			"avg_latency_ms": turnAvg,
			"max_latency_ms": float64(atomic.LoadInt64(&c.TurnLatencyMax)) / 1e6,
			"last_turn":      c.LastTurnTime.Format(time.RFC3339),
		},

		"events": map[string]interface{}{
			"written": atomic.LoadInt64(&c.EventsWritten),
			"errors":  atomic.LoadInt64(&c.EventWriteErrors),
		},

		"engine": map[string]interface{}{
			"sessions_active":   atomic.LoadInt64(&c.SessionsActive),
			"modifiers_created": atomic.LoadInt64(&c.ModifiersCreated),
			"gates_unlocked":    atomic.LoadInt64(&c.GatesUnlocked),
			"drift_detections":  atomic.LoadInt64(&c.DriftDetections),
		},

		"websocket": map[string]interface{}{
			"active_connections": atomic.LoadInt64(&c.WSConnectionsActive),
			"messages_in":        atomic.LoadInt64(&c.WSMessagesIn),
			"messages_out":       atomic.LoadInt64(&c.WSMessagesOut),
			"errors":             atomic.LoadInt64(&c.WSErrors),
		},
	}
}

// Handler returns an http.HandlerFunc serving the metrics snapshot.
func (c *Collector) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(c.Snapshot())
	}
}
