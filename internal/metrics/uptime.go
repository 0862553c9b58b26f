package metrics

import (
	"math"
	"sort"
	"time"

	"wsprobe/internal/models"
)

// TargetUptime summarises health of a probed endpoint.
type TargetUptime struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	UptimePercent float64 `json:"uptime_percent"`
	TotalProbes   int     `json:"total_probes"`
	Passing       int     `json:"passing"`
	Failing       int     `json:"failing"`
	AvgLatencyMs  float64 `json:"avg_latency_ms,omitempty"`
	LastError     string  `json:"last_error,omitempty"`
	LastUpdated   string  `json:"last_updated,omitempty"`
}

// ComputeTargetUptime aggregates uptime statistics per target from history entries.
func ComputeTargetUptime(entries []models.ProbeEntry) []TargetUptime {
	type acc struct {
		name       string
		passing    int
		failing    int
		latencySum int64
		lastError  string
		lastTime   time.Time
	}
	state := make(map[string]*acc)
	for _, entry := range entries {
		for _, result := range entry.Results {
			target := state[result.ID]
			if target == nil {
				target = &acc{name: result.Name}
				state[result.ID] = target
			}
			if result.OK {
				target.passing++
				target.latencySum += result.LatencyMs
			} else {
				target.failing++
			}
			if result.Error != "" {
				target.lastError = result.Error
			}
			target.lastTime = entry.Timestamp
		}
	}
	if len(state) == 0 {
		return nil
	}

	keys := make([]string, 0, len(state))
	for k := range state {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	results := make([]TargetUptime, 0, len(keys))
	for _, id := range keys {
		data := state[id]
		total := data.passing + data.failing
		uptime := 0.0
		if total > 0 {
			uptime = float64(data.passing) / float64(total) * 100
		}

		result := TargetUptime{
			ID:            id,
			Name:          data.name,
			UptimePercent: round2(uptime),
			TotalProbes:   total,
			Passing:       data.passing,
			Failing:       data.failing,
			LastError:     data.lastError,
		}
		if data.passing > 0 {
			result.AvgLatencyMs = round2(float64(data.latencySum) / float64(data.passing))
		}
		if !data.lastTime.IsZero() {
			result.LastUpdated = data.lastTime.UTC().Format(time.RFC3339)
		}
		results = append(results, result)
	}
	return results
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
