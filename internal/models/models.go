package models

import (
	"time"
)

// Target defines a monitored WebSocket endpoint.
type Target struct {
	ID             string `yaml:"id" json:"id"`
	Name           string `yaml:"name" json:"name"`
	URL            string `yaml:"url" json:"url"`
	Payload        string `yaml:"payload" json:"payload"`
	TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds"`
}

// ProbeResult captures the outcome of a single round trip against one target.
type ProbeResult struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OK        bool      `json:"ok"`
	LatencyMs int64     `json:"latency_ms,omitempty"`
	Reply     string    `json:"reply,omitempty"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// ProbeEntry stores the results of all probes at a moment in time.
type ProbeEntry struct {
	Timestamp time.Time     `json:"timestamp"`
	Results   []ProbeResult `json:"results"`
}
