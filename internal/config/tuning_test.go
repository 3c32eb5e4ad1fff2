package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/banshee-data/lookout.report/internal/testutil"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	testutil.AssertNoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTuningConfig_PartialOverride(t *testing.T) {
	path := writeConfig(t, "tuning.json", `{
		"match_iou": 0.5,
		"loiter_time": "45s",
		"object_labels": ["handbag", "umbrella"]
	}`)

	tc, err := LoadTuningConfig(path)
	testutil.AssertNoError(t, err)

	cfg, err := tc.EngineConfig()
	testutil.AssertNoError(t, err)

	if cfg.MatchIoU != 0.5 {
		t.Errorf("MatchIoU = %v, want 0.5", cfg.MatchIoU)
	}
	if cfg.LoiterTime != 45*time.Second {
		t.Errorf("LoiterTime = %v, want 45s", cfg.LoiterTime)
	}
	// Unset fields keep engine defaults.
	if cfg.AbandonTime != 20*time.Second {
		t.Errorf("AbandonTime = %v, want default 20s", cfg.AbandonTime)
	}
	if cfg.LoiterRadius != 40 {
		t.Errorf("LoiterRadius = %v, want default 40", cfg.LoiterRadius)
	}
	if !cfg.PersonLabels["person"] {
		t.Error("expected default person labels to survive")
	}
	if !cfg.ObjectLabels["umbrella"] || cfg.ObjectLabels["suitcase"] {
		t.Errorf("object labels not replaced: %v", cfg.ObjectLabels)
	}
}

func TestLoadTuningConfig_EmptyFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "tuning.json", `{}`)

	tc, err := LoadTuningConfig(path)
	testutil.AssertNoError(t, err)

	cfg, err := tc.EngineConfig()
	testutil.AssertNoError(t, err)
	if cfg.LoiterTime != 30*time.Second || cfg.Staleness != 5*time.Second {
		t.Errorf("defaults not preserved: %+v", cfg)
	}
}

func TestLoadTuningConfig_RejectsNonJSONExtension(t *testing.T) {
	path := writeConfig(t, "tuning.yaml", `{}`)
	_, err := LoadTuningConfig(path)
	testutil.AssertError(t, err)
}

func TestLoadTuningConfig_RejectsMalformedJSON(t *testing.T) {
	path := writeConfig(t, "tuning.json", `{"match_iou": `)
	_, err := LoadTuningConfig(path)
	testutil.AssertError(t, err)
}

func TestEngineConfig_RejectsBadDuration(t *testing.T) {
	path := writeConfig(t, "tuning.json", `{"loiter_time": "soon"}`)
	tc, err := LoadTuningConfig(path)
	testutil.AssertNoError(t, err)
	_, err = tc.EngineConfig()
	testutil.AssertError(t, err)
}

func TestEngineConfig_RejectsOutOfRangeValue(t *testing.T) {
	path := writeConfig(t, "tuning.json", `{"match_iou": 1.5}`)
	tc, err := LoadTuningConfig(path)
	testutil.AssertNoError(t, err)
	_, err = tc.EngineConfig()
	testutil.AssertError(t, err)
}

func TestLoadTuningConfig_MissingFile(t *testing.T) {
	_, err := LoadTuningConfig(filepath.Join(t.TempDir(), "absent.json"))
	testutil.AssertError(t, err)
}
