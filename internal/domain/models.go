package domain

import "time"

// Outcome is the result of one probe attempt.
type Outcome struct {
	TargetURL  string    `json:"target_url"`
	Success    bool      `json:"success"`
	StatusCode int       `json:"status_code,omitempty"` // 0 when no response was read
	Reason     string    `json:"reason,omitempty"`      // empty on success
	LatencyMS  int64     `json:"latency_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// Status is what observers receive after each cycle.
//
// Silent is true when Success repeats the previous cycle's classification:
// displays should still refresh, alerts should not fire.
type Status struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	Silent  bool    `json:"silent"`
	Title   string  `json:"title"`
	Detail  string  `json:"detail"`
	Outcome Outcome `json:"outcome"`
}
