package metrics_test

import (
	"testing"
	"time"

	"wsprobe/internal/metrics"
	"wsprobe/internal/models"
)

func TestComputeTargetUptime(t *testing.T) {
	now := time.Now().UTC()
	entries := []models.ProbeEntry{
		{
			Timestamp: now.Add(-2 * time.Minute),
			Results: []models.ProbeResult{
				{ID: "local", Name: "Local WebSocket", OK: true, LatencyMs: 10},
				{ID: "gw", Name: "Gateway", OK: false, Error: "dial tcp: connection refused"},
			},
		},
		{
			Timestamp: now,
			Results: []models.ProbeResult{
				{ID: "local", Name: "Local WebSocket", OK: true, LatencyMs: 30},
				{ID: "gw", Name: "Gateway", OK: true, LatencyMs: 8},
			},
		},
	}

	summary := metrics.ComputeTargetUptime(entries)
	if len(summary) != 2 {
		t.Fatalf("expected 2 targets, got %d", len(summary))
	}

	// Sorted by id.
	gw, local := summary[0], summary[1]
	if gw.ID != "gw" || local.ID != "local" {
		t.Fatalf("unexpected order: %q, %q", gw.ID, local.ID)
	}

	if local.UptimePercent != 100 {
		t.Errorf("expected local uptime 100, got %v", local.UptimePercent)
	}
	if local.AvgLatencyMs != 20 {
		t.Errorf("expected local avg latency 20, got %v", local.AvgLatencyMs)
	}

	if gw.UptimePercent != 50 {
		t.Errorf("expected gw uptime 50, got %v", gw.UptimePercent)
	}
	if gw.Passing != 1 || gw.Failing != 1 {
		t.Errorf("expected 1 passing / 1 failing for gw, got %d/%d", gw.Passing, gw.Failing)
	}
	if gw.LastError == "" {
		t.Error("expected last error to be recorded for gw")
	}
	if gw.LastUpdated == "" {
		t.Error("expected last updated timestamp for gw")
	}
}

func TestComputeTargetUptime_Empty(t *testing.T) {
	if got := metrics.ComputeTargetUptime(nil); got != nil {
		t.Errorf("expected nil summary for empty history, got %v", got)
	}
}
