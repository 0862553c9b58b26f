package monitor_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"wsprobe/internal/models"
	"wsprobe/internal/monitor"
	"wsprobe/internal/storage"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

func newEchoServer(t *testing.T) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			mt, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(mt, msg); err != nil {
				return
			}
		}
	}))
}

func newTestStorage(t *testing.T) *storage.ProbeStorage {
	t.Helper()

	store, err := storage.NewProbeStorage(filepath.Join(t.TempDir(), "probe_history.json"))
	if err != nil {
		t.Fatalf("new storage: %v", err)
	}
	return store
}

func TestRunOnce_ProbesAllTargets(t *testing.T) {
	ts := newEchoServer(t)
	defer ts.Close()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")

	store := newTestStorage(t)
	targets := []models.Target{
		{ID: "up", Name: "Up", URL: wsURL, TimeoutSeconds: 5},
		{ID: "down", Name: "Down", URL: "ws://127.0.0.1:1", TimeoutSeconds: 1},
	}

	mon := monitor.New(time.Minute, targets, store)
	entry, err := mon.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("run once: %v", err)
	}

	if len(entry.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(entry.Results))
	}
	if !entry.Results[0].OK {
		t.Errorf("expected 'up' target to pass, got error: %s", entry.Results[0].Error)
	}
	if entry.Results[0].Reply == "" {
		t.Error("expected a reply from the echo server")
	}
	if entry.Results[1].OK {
		t.Error("expected 'down' target to fail")
	}
	if entry.Results[1].Error == "" {
		t.Error("expected error description for 'down' target")
	}

	// The round must be persisted and exposed as the latest entry.
	if history := store.History(); len(history) != 1 {
		t.Errorf("expected 1 persisted entry, got %d", len(history))
	}
	latest, ok := mon.Latest()
	if !ok {
		t.Fatal("expected latest entry to be set")
	}
	if !latest.Timestamp.Equal(entry.Timestamp) {
		t.Error("expected latest entry to match the returned one")
	}
}

func TestStartStop(t *testing.T) {
	ts := newEchoServer(t)
	defer ts.Close()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")

	store := newTestStorage(t)
	mon := monitor.New(time.Minute, []models.Target{{ID: "up", URL: wsURL, TimeoutSeconds: 5}}, store)

	mon.Start()
	defer mon.Stop()

	// Start runs an initial round before the first tick.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := mon.Latest(); ok {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("expected initial probe round to complete")
}

func TestStop_Idempotent(t *testing.T) {
	store := newTestStorage(t)
	mon := monitor.New(time.Minute, nil, store)

	mon.Start()
	mon.Stop()
	mon.Stop()
}
