package db

import (
	"testing"
	"time"

	"github.com/banshee-data/lookout.report/internal/testutil"
	"github.com/banshee-data/lookout.report/internal/vision"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := NewDB(testutil.TempDBPath(t))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestRecordAndQueryAlerts(t *testing.T) {
	d := newTestDB(t)
	base := time.Unix(1700000000, 0)

	testutil.AssertNoError(t, d.RecordSession("sess-1", "cam-entrance", base))
	testutil.AssertNoError(t, d.RecordAlert("sess-1", base.Add(30*time.Second), vision.Alert{
		Type: vision.AlertLoitering, TrackID: 1, SinceSeconds: 30.0,
		Box: vision.Box{X1: 0, Y1: 0, X2: 10, Y2: 10}, Confidence: 0.9,
	}))
	testutil.AssertNoError(t, d.RecordAlert("sess-1", base.Add(50*time.Second), vision.Alert{
		Type: vision.AlertAbandoned, TrackID: 2, SinceSeconds: 20.0,
		Box: vision.Box{X1: 5, Y1: 5, X2: 25, Y2: 25}, Confidence: 0.7, Label: "handbag",
	}))

	alerts, err := d.Alerts(0)
	testutil.AssertNoError(t, err)
	if len(alerts) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(alerts))
	}
	// Newest first.
	if alerts[0].Type != "abandoned_object" || alerts[0].Label != "handbag" {
		t.Errorf("unexpected newest alert: %+v", alerts[0])
	}
	if alerts[1].TrackID != 1 || alerts[1].SinceS != 30.0 {
		t.Errorf("unexpected oldest alert: %+v", alerts[1])
	}
	if alerts[1].Box != [4]float64{0, 0, 10, 10} {
		t.Errorf("unexpected box: %v", alerts[1].Box)
	}
}

func TestAlertsByType(t *testing.T) {
	d := newTestDB(t)
	base := time.Unix(1700000000, 0)

	testutil.AssertNoError(t, d.RecordSession("sess-1", "", base))
	for i := 0; i < 3; i++ {
		testutil.AssertNoError(t, d.RecordAlert("sess-1", base.Add(time.Duration(i)*time.Minute), vision.Alert{
			Type: vision.AlertLoitering, TrackID: int64(i + 1), SinceSeconds: 31.0, Confidence: 0.8,
		}))
	}
	testutil.AssertNoError(t, d.RecordAlert("sess-1", base, vision.Alert{
		Type: vision.AlertAbandoned, TrackID: 9, SinceSeconds: 20.0, Confidence: 0.6, Label: "suitcase",
	}))

	loiter, err := d.AlertsByType("loitering", 0)
	testutil.AssertNoError(t, err)
	if len(loiter) != 3 {
		t.Errorf("expected 3 loitering alerts, got %d", len(loiter))
	}
	bags, err := d.AlertsByType("abandoned_object", 0)
	testutil.AssertNoError(t, err)
	if len(bags) != 1 || bags[0].TrackID != 9 {
		t.Errorf("unexpected abandonment alerts: %+v", bags)
	}
}

func TestSessionAlerts_OrderedOldestFirst(t *testing.T) {
	d := newTestDB(t)
	base := time.Unix(1700000000, 0)

	testutil.AssertNoError(t, d.RecordSession("sess-a", "", base))
	testutil.AssertNoError(t, d.RecordSession("sess-b", "", base))
	testutil.AssertNoError(t, d.RecordAlert("sess-a", base.Add(2*time.Minute), vision.Alert{Type: vision.AlertLoitering, TrackID: 2}))
	testutil.AssertNoError(t, d.RecordAlert("sess-a", base.Add(1*time.Minute), vision.Alert{Type: vision.AlertLoitering, TrackID: 1}))
	testutil.AssertNoError(t, d.RecordAlert("sess-b", base, vision.Alert{Type: vision.AlertLoitering, TrackID: 5}))

	got, err := d.SessionAlerts("sess-a")
	testutil.AssertNoError(t, err)
	if len(got) != 2 {
		t.Fatalf("expected 2 alerts for sess-a, got %d", len(got))
	}
	if got[0].TrackID != 1 || got[1].TrackID != 2 {
		t.Errorf("alerts not ordered oldest first: %+v", got)
	}
}
