// Package config loads behavioural tuning parameters from JSON files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/lookout.report/internal/vision"
)

// TuningConfig is the JSON schema for behavioural tuning overrides.
// All fields are optional; fields omitted from the file keep their
// engine defaults, so partial configs are safe.
type TuningConfig struct {
	// Association params
	MatchIoU  *float64 `json:"match_iou,omitempty"`
	Staleness *string  `json:"staleness,omitempty"` // duration string like "5s"
	MaxTracks *int     `json:"max_tracks,omitempty"`

	// Loitering params
	LoiterTime   *string  `json:"loiter_time,omitempty"` // duration string like "30s"
	LoiterRadius *float64 `json:"loiter_radius_px,omitempty"`

	// Abandonment params
	AbandonTime     *string  `json:"abandon_time,omitempty"` // duration string like "20s"
	NearPersonDist  *float64 `json:"near_person_dist_px,omitempty"`
	PersonFreshness *string  `json:"person_freshness,omitempty"`

	// Label sets
	PersonLabels []string `json:"person_labels,omitempty"`
	ObjectLabels []string `json:"object_labels,omitempty"`
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The file must
// have a .json extension and stay under 1MB.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &TuningConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return cfg, nil
}

// EngineConfig applies the overrides to the engine defaults and returns
// the resulting config. The result is validated so a bad file fails at
// load time rather than at the first frame.
func (c *TuningConfig) EngineConfig() (vision.Config, error) {
	cfg := vision.DefaultConfig()

	if c.MatchIoU != nil {
		cfg.MatchIoU = *c.MatchIoU
	}
	if c.MaxTracks != nil {
		cfg.MaxTracks = *c.MaxTracks
	}
	if c.LoiterRadius != nil {
		cfg.LoiterRadius = *c.LoiterRadius
	}
	if c.NearPersonDist != nil {
		cfg.NearPersonDist = *c.NearPersonDist
	}

	durations := []struct {
		name  string
		value *string
		out   *time.Duration
	}{
		{"staleness", c.Staleness, &cfg.Staleness},
		{"loiter_time", c.LoiterTime, &cfg.LoiterTime},
		{"abandon_time", c.AbandonTime, &cfg.AbandonTime},
		{"person_freshness", c.PersonFreshness, &cfg.PersonFreshness},
	}
	for _, d := range durations {
		if d.value == nil || *d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(*d.value)
		if err != nil {
			return vision.Config{}, fmt.Errorf("invalid %s %q: %w", d.name, *d.value, err)
		}
		*d.out = parsed
	}

	if c.PersonLabels != nil {
		cfg.PersonLabels = labelSet(c.PersonLabels)
	}
	if c.ObjectLabels != nil {
		cfg.ObjectLabels = labelSet(c.ObjectLabels)
	}

	if err := cfg.Validate(); err != nil {
		return vision.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func labelSet(labels []string) map[string]bool {
	set := make(map[string]bool, len(labels))
	for _, l := range labels {
		set[l] = true
	}
	return set
}
