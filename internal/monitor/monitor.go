package monitor

import (
	"context"
	"log"
	"sync"
	"time"

	"wsprobe/internal/models"
	"wsprobe/internal/probe"
	"wsprobe/internal/storage"
)

// Monitor periodically probes targets and persists their status.
type Monitor struct {
	interval time.Duration
	targets  []models.Target
	storage  *storage.ProbeStorage

	mu     sync.RWMutex
	latest *models.ProbeEntry

	stopCh chan struct{}
	doneCh chan struct{}
}

// New creates a monitor for the given targets and interval.
func New(interval time.Duration, targets []models.Target, storage *storage.ProbeStorage) *Monitor {
	if interval < 5*time.Second {
		interval = 5 * time.Second
	}

	return &Monitor{
		interval: interval,
		targets:  targets,
		storage:  storage,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the monitoring loop in a goroutine.
func (m *Monitor) Start() {
	go m.run()
}

// Stop requests graceful loop termination and waits until it is done.
func (m *Monitor) Stop() {
	select {
	case <-m.doneCh:
		return
	default:
	}
	close(m.stopCh)
	<-m.doneCh
}

// Latest returns the most recent probe entry.
func (m *Monitor) Latest() (models.ProbeEntry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.latest == nil {
		return models.ProbeEntry{}, false
	}
	return *m.latest, true
}

// RunOnce executes a single round of probes and returns the entry.
func (m *Monitor) RunOnce(ctx context.Context) (models.ProbeEntry, error) {
	entry := models.ProbeEntry{
		Timestamp: time.Now().UTC(),
		Results:   make([]models.ProbeResult, 0, len(m.targets)),
	}

	for _, t := range m.targets {
		timeout := time.Duration(t.TimeoutSeconds) * time.Second
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		probeCtx, cancel := context.WithTimeout(ctx, timeout)
		result := probe.Run(probeCtx, t)
		cancel()

		entry.Results = append(entry.Results, result)
	}

	m.mu.Lock()
	m.latest = &entry
	m.mu.Unlock()

	if err := m.storage.Append(entry); err != nil {
		return entry, err
	}
	return entry, nil
}

func (m *Monitor) run() {
	defer close(m.doneCh)

	if _, err := m.RunOnce(context.Background()); err != nil {
		log.Printf("initial probe round failed: %v", err)
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := m.RunOnce(context.Background()); err != nil {
				log.Printf("monitor tick failed: %v", err)
			}
		case <-m.stopCh:
			return
		}
	}
}
