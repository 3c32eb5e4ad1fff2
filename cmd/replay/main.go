// Command replay feeds recorded detection frames through the behaviour
// engine and writes the resulting alerts as CSV. Input is JSONL, one
// frame per line:
//
//	{"t": 1700000000.5, "detections": [{"label": "person", "confidence": 0.9, "box": {"x1": 0, "y1": 0, "x2": 10, "y2": 10}}]}
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/banshee-data/lookout.report/db"
	"github.com/banshee-data/lookout.report/internal/config"
	"github.com/banshee-data/lookout.report/internal/vision"
)

type frame struct {
	T          float64            `json:"t"`
	Detections []vision.Detection `json:"detections"`
}

func main() {
	var inPath string
	var outPath string
	var dbPath string
	var camera string
	var tuningPath string

	flag.StringVar(&inPath, "in", "", "path to JSONL detection log (\"-\" for stdin)")
	flag.StringVar(&outPath, "out", "", "path for alert CSV output (default stdout)")
	flag.StringVar(&dbPath, "db", "", "optional sqlite db to record alerts into")
	flag.StringVar(&camera, "camera", "replay", "camera name recorded with the session")
	flag.StringVar(&tuningPath, "tuning", "", "optional behavioural tuning JSON")
	flag.Parse()

	if inPath == "" {
		log.Fatalf("in must be provided")
	}

	cfg := vision.DefaultConfig()
	if tuningPath != "" {
		tc, err := config.LoadTuningConfig(tuningPath)
		if err != nil {
			log.Fatalf("load tuning: %v", err)
		}
		cfg, err = tc.EngineConfig()
		if err != nil {
			log.Fatalf("apply tuning: %v", err)
		}
	}

	engine, err := vision.NewEngine(cfg)
	if err != nil {
		log.Fatalf("create engine: %v", err)
	}

	var store *db.DB
	if dbPath != "" {
		store, err = db.NewDB(dbPath)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		defer store.Close()
		if err := store.RecordSession(engine.SessionID(), camera, time.Now()); err != nil {
			log.Fatalf("record session: %v", err)
		}
	}

	var in io.Reader = os.Stdin
	if inPath != "-" {
		f, err := os.Open(inPath)
		if err != nil {
			log.Fatalf("open input: %v", err)
		}
		defer f.Close()
		in = f
	}

	alerts, frames, err := replay(in, engine, store)
	if err != nil {
		log.Fatalf("replay failed: %v", err)
	}

	var out io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			log.Fatalf("create output: %v", err)
		}
		defer f.Close()
		out = f
	}
	if err := vision.WriteAlertsCSV(out, alerts); err != nil {
		log.Fatalf("write csv: %v", err)
	}

	fmt.Fprintf(os.Stderr, "replayed %d frames, %d alerts\n", frames, len(alerts))
}

// replay runs every frame in the log through the engine, recording
// alerts to store when one is configured.
func replay(in io.Reader, engine *vision.Engine, store *db.DB) ([]vision.TimedAlert, int64, error) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)

	var out []vision.TimedAlert
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var fr frame
		if err := json.Unmarshal(raw, &fr); err != nil {
			return nil, 0, fmt.Errorf("line %d: %w", line, err)
		}

		ts := time.Unix(0, int64(fr.T*float64(time.Second)))
		for _, a := range engine.Step(fr.Detections, ts) {
			out = append(out, vision.TimedAlert{At: ts, Alert: a})
			if store != nil {
				if err := store.RecordAlert(engine.SessionID(), ts, a); err != nil {
					return nil, 0, fmt.Errorf("line %d: record alert: %w", line, err)
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("read input: %w", err)
	}
	return out, engine.Frames(), nil
}
