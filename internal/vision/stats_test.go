package vision

import (
	"testing"
	"time"
)

func TestSummaries(t *testing.T) {
	e := newTestEngine(t)
	base := time.Unix(1000, 0)

	e.Step([]Detection{
		personAt(Box{0, 0, 10, 10}),
		{Label: "handbag", Confidence: 0.7, Box: Box{100, 100, 120, 120}},
	}, base)
	e.Step([]Detection{
		personAt(Box{0, 0, 10, 10}),
		{Label: "handbag", Confidence: 0.7, Box: Box{100, 100, 120, 120}},
	}, base.Add(2*time.Second))

	sums := e.Summaries(base.Add(2 * time.Second))
	if len(sums) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(sums))
	}
	if sums[0].ID != 1 || sums[1].ID != 2 {
		t.Errorf("summaries out of insertion order: %d, %d", sums[0].ID, sums[1].ID)
	}
	if sums[0].DwellSeconds != 2.0 {
		t.Errorf("dwell = %v, want 2.0", sums[0].DwellSeconds)
	}
	if sums[0].Observations != 2 {
		t.Errorf("observations = %d, want 2", sums[0].Observations)
	}
	if sums[1].Label != "handbag" {
		t.Errorf("label = %q, want handbag", sums[1].Label)
	}
}

func TestStatistics(t *testing.T) {
	e := newTestEngine(t)
	base := time.Unix(1000, 0)

	e.Step([]Detection{
		personAt(Box{0, 0, 10, 10}),
		personAt(Box{100, 0, 110, 10}),
		{Label: "suitcase", Confidence: 0.8, Box: Box{200, 200, 250, 250}},
	}, base)

	stats := e.Statistics(base.Add(4 * time.Second))
	if stats.Tracks != 3 {
		t.Errorf("Tracks = %d, want 3", stats.Tracks)
	}
	if stats.Alerted != 0 {
		t.Errorf("Alerted = %d, want 0", stats.Alerted)
	}
	if stats.ByLabel["person"] != 2 || stats.ByLabel["suitcase"] != 1 {
		t.Errorf("ByLabel = %v", stats.ByLabel)
	}
	// All tracks share the same dwell, so every percentile equals it.
	if stats.DwellP50 != 4.0 || stats.DwellP95 != 4.0 {
		t.Errorf("dwell percentiles = %v / %v, want 4.0", stats.DwellP50, stats.DwellP95)
	}
}

func TestStatistics_EmptyTable(t *testing.T) {
	e := newTestEngine(t)
	stats := e.Statistics(time.Unix(1000, 0))
	if stats.Tracks != 0 || stats.DwellP50 != 0 {
		t.Errorf("unexpected stats for empty table: %+v", stats)
	}
}
