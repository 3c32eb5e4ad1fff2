package vision

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

// TimedAlert pairs an alert with the frame timestamp it was raised at.
type TimedAlert struct {
	At    time.Time `json:"at"`
	Alert Alert     `json:"alert"`
}

// alertCSVHeader is the column set for exported alert logs.
var alertCSVHeader = []string{
	"timestamp", "type", "label", "track_id", "since_s", "confidence",
	"x1", "y1", "x2", "y2",
}

// WriteAlertsCSV writes alerts as CSV rows, one per alert, with a header.
func WriteAlertsCSV(w io.Writer, rows []TimedAlert) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(alertCSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, row := range rows {
		a := row.Alert
		label := a.Label
		if label == "" {
			// Loitering alerts carry no object label; the row records
			// the tracked class instead.
			label = "person"
		}
		rec := []string{
			row.At.UTC().Format(time.RFC3339),
			string(a.Type),
			label,
			fmt.Sprintf("%d", a.TrackID),
			fmt.Sprintf("%.1f", a.SinceSeconds),
			fmt.Sprintf("%.3f", a.Confidence),
			fmt.Sprintf("%.1f", a.Box.X1),
			fmt.Sprintf("%.1f", a.Box.Y1),
			fmt.Sprintf("%.1f", a.Box.X2),
			fmt.Sprintf("%.1f", a.Box.Y2),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
