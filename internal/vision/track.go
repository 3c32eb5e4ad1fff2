package vision

import "time"

// TrackState represents the lifecycle state of a track.
type TrackState string

const (
	TrackActive  TrackState = "active"  // Track is live, no alert fired yet
	TrackAlerted TrackState = "alerted" // An alert fired; suppressed for the rest of the track's life
)

// Anchor is a track's reference point for displacement checks. Valid is
// false only before the anchor has been set; a legitimate box centred at
// the origin cannot alias the unset state.
type Anchor struct {
	Point Point
	Valid bool
}

// Detection is a single-frame observation from the external detector:
// a class label, a confidence in [0,1], and a pixel-space bounding box.
// Detections are consumed once per Step call and never retained.
type Detection struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Box        Box     `json:"box"`
}

// Track is a persisted identity for one physical entity across frames,
// re-associated each frame by bounding-box overlap.
type Track struct {
	// Identity. IDs increase monotonically and are never reused within
	// one engine instance, even after the track is purged.
	ID    int64
	Label string // Fixed at creation; association never crosses labels
	State TrackState

	// Most recent matched observation.
	Box        Box
	Confidence float64

	// Timestamps. LastSeen >= FirstSeen always holds.
	FirstSeen time.Time
	LastSeen  time.Time

	// Anchor is the box centre at creation. Displacement for the
	// loitering rule is measured against it; it is set exactly once.
	Anchor Anchor

	// Observation count across the track's lifetime.
	Observations int
}

// update overwrites the track's observation state with a matched detection.
func (tr *Track) update(d Detection, now time.Time) {
	tr.Box = d.Box
	tr.Confidence = d.Confidence
	tr.LastSeen = now
	tr.Observations++
}

// Dwell returns how long the track has existed as of now.
func (tr *Track) Dwell(now time.Time) time.Duration {
	return now.Sub(tr.FirstSeen)
}

// Displacement returns the distance between the track's current box centre
// and its anchor, or 0 if the anchor was never set.
func (tr *Track) Displacement() float64 {
	if !tr.Anchor.Valid {
		return 0
	}
	return Distance(tr.Box.Center(), tr.Anchor.Point)
}
