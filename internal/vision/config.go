package vision

import (
	"fmt"
	"time"
)

// Config holds the tunable parameters for the engine. All values are
// fixed at construction; per-frame calls never re-validate them.
type Config struct {
	MatchIoU        float64       // Minimum IoU for a detection to match a track
	LoiterTime      time.Duration // Dwell before a stationary person alerts
	LoiterRadius    float64       // Max displacement (px) from anchor to count as stationary
	AbandonTime     time.Duration // Dwell before an unattended object alerts
	NearPersonDist  float64       // Distance (px) within which a person "attends" an object
	Staleness       time.Duration // Unobserved time before a track is purged
	PersonFreshness time.Duration // Max age of a person observation to count as present
	MaxTracks       int           // Cap on concurrent tracks

	PersonLabels map[string]bool // Labels treated as people
	ObjectLabels map[string]bool // Labels monitored for abandonment
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		MatchIoU:        0.3,
		LoiterTime:      30 * time.Second,
		LoiterRadius:    40.0,
		AbandonTime:     20 * time.Second,
		NearPersonDist:  80.0,
		Staleness:       5 * time.Second,
		PersonFreshness: 1 * time.Second,
		MaxTracks:       500,
		PersonLabels:    map[string]bool{"person": true},
		ObjectLabels: map[string]bool{
			"handbag":  true,
			"backpack": true,
			"suitcase": true,
		},
	}
}

// Validate checks that the configuration values are within valid operating
// ranges. Called once at construction; a bad config is a caller error and
// fails fast rather than degrading per frame.
func (c Config) Validate() error {
	if c.MatchIoU <= 0 || c.MatchIoU > 1 {
		return fmt.Errorf("match_iou must be in (0, 1], got %v", c.MatchIoU)
	}
	if c.LoiterTime <= 0 {
		return fmt.Errorf("loiter_time must be positive, got %v", c.LoiterTime)
	}
	if c.LoiterRadius <= 0 {
		return fmt.Errorf("loiter_radius must be positive, got %v", c.LoiterRadius)
	}
	if c.AbandonTime <= 0 {
		return fmt.Errorf("abandon_time must be positive, got %v", c.AbandonTime)
	}
	if c.NearPersonDist <= 0 {
		return fmt.Errorf("near_person_dist must be positive, got %v", c.NearPersonDist)
	}
	if c.Staleness <= 0 {
		return fmt.Errorf("staleness must be positive, got %v", c.Staleness)
	}
	if c.PersonFreshness <= 0 {
		return fmt.Errorf("person_freshness must be positive, got %v", c.PersonFreshness)
	}
	if c.MaxTracks < 1 {
		return fmt.Errorf("max_tracks must be >= 1, got %d", c.MaxTracks)
	}
	if len(c.PersonLabels) == 0 {
		return fmt.Errorf("person_labels must not be empty")
	}
	if len(c.ObjectLabels) == 0 {
		return fmt.Errorf("object_labels must not be empty")
	}
	return nil
}
