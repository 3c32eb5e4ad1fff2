package vision

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/lookout.report/internal/timeutil"
)

// Engine maintains the track table for one camera stream and derives
// behavioural alerts from it. It is the only persistent state in the
// pipeline: detections go in once per frame, alerts come out, nothing
// else is retained.
//
// The engine is deliberately not goroutine-safe. It is driven by a
// single frame loop with single-stream affinity; concurrent camera
// streams each own their own Engine. Callers that expose an engine over
// a shared surface (e.g. an HTTP handler) must serialise access
// themselves.
type Engine struct {
	cfg   Config
	clock timeutil.Clock

	tracks map[int64]*Track
	order  []int64 // Track IDs in insertion order, for deterministic iteration
	nextID int64

	sessionID string
	frames    int64
}

// NewEngine creates an engine with a validated configuration and a
// wall-clock time source for calls that omit a timestamp.
func NewEngine(cfg Config) (*Engine, error) {
	return NewEngineWithClock(cfg, timeutil.RealClock{})
}

// NewEngineWithClock creates an engine with an explicit time source.
func NewEngineWithClock(cfg Config, clock timeutil.Clock) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	if clock == nil {
		return nil, fmt.Errorf("clock must not be nil")
	}
	return &Engine{
		cfg:       cfg,
		clock:     clock,
		tracks:    make(map[int64]*Track),
		nextID:    1,
		sessionID: uuid.NewString(),
	}, nil
}

// Step ingests one frame of detections and returns the alerts raised by
// that frame, in rule order (loitering first, then abandonment). A zero
// `now` falls back to the engine clock. Timestamps must be non-decreasing
// across calls within a session; ties are allowed.
//
// Step never fails: malformed detections (inverted or non-finite boxes)
// have zero overlap by construction, so they fall through association,
// spawn a short-lived track, and age out on the staleness purge.
func (e *Engine) Step(detections []Detection, now time.Time) []Alert {
	if now.IsZero() {
		now = e.clock.Now()
	}

	e.associate(detections, now)
	e.purgeStale(now)

	alerts := e.checkLoitering(now)
	alerts = append(alerts, e.checkAbandoned(now)...)

	e.frames++
	return alerts
}

// associate performs greedy per-track matching of detections to tracks.
//
// Each track, visited in insertion order, claims the currently-unmatched
// same-label detection with the highest IoU, provided it clears the match
// threshold. Assignment is first-come-greedy rather than globally optimal:
// when two tracks share a best detection, the earlier track wins it and
// the later one falls back to its next-best or goes unmatched. This is a
// known limitation accepted for its O(tracks x detections) cost; an
// optimal min-cost assignment would change which track wins contested
// detections.
func (e *Engine) associate(detections []Detection, now time.Time) {
	matched := make([]bool, len(detections))

	for _, id := range e.order {
		tr := e.tracks[id]

		bestJ := -1
		bestScore := 0.0
		for j, d := range detections {
			if matched[j] || d.Label != tr.Label {
				continue
			}
			score := IoU(tr.Box, d.Box)
			if score > bestScore {
				bestScore = score
				bestJ = j
			}
		}

		if bestJ >= 0 && bestScore >= e.cfg.MatchIoU {
			tr.update(detections[bestJ], now)
			if !tr.Anchor.Valid {
				tr.Anchor = Anchor{Point: detections[bestJ].Box.Center(), Valid: true}
			}
			matched[bestJ] = true
		}
		// No detection cleared the threshold: the track receives no
		// update this frame and ages toward staleness.
	}

	// Every detection still unmatched starts a new track.
	for j, d := range detections {
		if matched[j] || len(e.tracks) >= e.cfg.MaxTracks {
			continue
		}
		e.initTrack(d, now)
	}
}

// initTrack creates a new track from an unmatched detection.
func (e *Engine) initTrack(d Detection, now time.Time) *Track {
	tr := &Track{
		ID:           e.nextID,
		Label:        d.Label,
		State:        TrackActive,
		Box:          d.Box,
		Confidence:   d.Confidence,
		FirstSeen:    now,
		LastSeen:     now,
		Anchor:       Anchor{Point: d.Box.Center(), Valid: true},
		Observations: 1,
	}
	e.nextID++
	e.tracks[tr.ID] = tr
	e.order = append(e.order, tr.ID)
	return tr
}

// purgeStale evicts tracks unobserved for longer than the staleness
// threshold. Runs after association and before rule evaluation, so a
// track purged this frame contributes no alerts. Eviction also drops the
// track's alert latch: a re-appearing object gets a fresh ID and fresh
// timers rather than a resurrection.
func (e *Engine) purgeStale(now time.Time) {
	kept := e.order[:0]
	for _, id := range e.order {
		tr := e.tracks[id]
		if now.Sub(tr.LastSeen) > e.cfg.Staleness {
			delete(e.tracks, id)
			continue
		}
		kept = append(kept, id)
	}
	e.order = kept
}

// Tracks returns a snapshot of the live track table in insertion order.
// The returned copies are safe to retain across Step calls.
func (e *Engine) Tracks() []Track {
	out := make([]Track, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, *e.tracks[id])
	}
	return out
}

// TrackCount returns counts of live tracks by state.
func (e *Engine) TrackCount() (total, active, alerted int) {
	for _, tr := range e.tracks {
		total++
		switch tr.State {
		case TrackActive:
			active++
		case TrackAlerted:
			alerted++
		}
	}
	return
}

// SessionID identifies this engine instance for alert persistence.
func (e *Engine) SessionID() string { return e.sessionID }

// Frames returns the number of Step calls processed so far.
func (e *Engine) Frames() int64 { return e.frames }

// Config returns the engine's configuration.
func (e *Engine) Config() Config { return e.cfg }

// roundTenth rounds a duration to one decimal place in seconds, the
// precision carried on alert records.
func roundTenth(d time.Duration) float64 {
	return math.Round(d.Seconds()*10) / 10
}
