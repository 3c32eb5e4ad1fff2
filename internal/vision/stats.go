package vision

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// TrackSummary is a read-only reporting view of one live track.
type TrackSummary struct {
	ID           int64      `json:"id"`
	Label        string     `json:"label"`
	State        TrackState `json:"state"`
	Box          Box        `json:"box"`
	Confidence   float64    `json:"confidence"`
	DwellSeconds float64    `json:"dwell_s"`
	Displacement float64    `json:"displacement_px"`
	Observations int        `json:"observations"`
}

// TableStats aggregates the live track table for reporting endpoints.
type TableStats struct {
	Tracks  int            `json:"tracks"`
	Alerted int            `json:"alerted"`
	ByLabel map[string]int `json:"by_label"`

	// Dwell percentiles across live tracks, in seconds.
	DwellP50 float64 `json:"dwell_p50_s"`
	DwellP85 float64 `json:"dwell_p85_s"`
	DwellP95 float64 `json:"dwell_p95_s"`
}

// Summaries returns reporting views of the live track table in insertion
// order, with dwell computed against now.
func (e *Engine) Summaries(now time.Time) []TrackSummary {
	if now.IsZero() {
		now = e.clock.Now()
	}
	out := make([]TrackSummary, 0, len(e.order))
	for _, id := range e.order {
		tr := e.tracks[id]
		out = append(out, TrackSummary{
			ID:           tr.ID,
			Label:        tr.Label,
			State:        tr.State,
			Box:          tr.Box,
			Confidence:   tr.Confidence,
			DwellSeconds: roundTenth(tr.Dwell(now)),
			Displacement: tr.Displacement(),
			Observations: tr.Observations,
		})
	}
	return out
}

// Statistics aggregates the live track table at now.
func (e *Engine) Statistics(now time.Time) TableStats {
	if now.IsZero() {
		now = e.clock.Now()
	}

	stats := TableStats{ByLabel: make(map[string]int)}
	dwells := make([]float64, 0, len(e.order))
	for _, id := range e.order {
		tr := e.tracks[id]
		stats.Tracks++
		if tr.State == TrackAlerted {
			stats.Alerted++
		}
		stats.ByLabel[tr.Label]++
		dwells = append(dwells, tr.Dwell(now).Seconds())
	}

	stats.DwellP50, stats.DwellP85, stats.DwellP95 = dwellPercentiles(dwells)
	return stats
}

// dwellPercentiles computes p50/p85/p95 of the given dwell samples.
func dwellPercentiles(dwells []float64) (p50, p85, p95 float64) {
	if len(dwells) == 0 {
		return 0, 0, 0
	}
	sort.Float64s(dwells)
	p50 = stat.Quantile(0.50, stat.Empirical, dwells, nil)
	p85 = stat.Quantile(0.85, stat.Empirical, dwells, nil)
	p95 = stat.Quantile(0.95, stat.Empirical, dwells, nil)
	return p50, p85, p95
}
