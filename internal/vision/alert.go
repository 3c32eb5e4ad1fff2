package vision

// AlertType identifies which rule fired.
type AlertType string

const (
	AlertLoitering AlertType = "loitering"
	AlertAbandoned AlertType = "abandoned_object"
)

// Alert is one behavioural alert emitted for a frame. At most one alert is
// ever emitted per track over its lifetime, and alerts are never retracted.
type Alert struct {
	Type         AlertType `json:"type"`
	TrackID      int64     `json:"track_id"`
	SinceSeconds float64   `json:"since_s"` // Dwell at fire time, rounded to 0.1s
	Box          Box       `json:"box"`
	Confidence   float64   `json:"confidence"`
	Label        string    `json:"label,omitempty"` // Object class; set for abandonment alerts
}
