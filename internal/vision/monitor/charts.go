// Package monitor serves debug chart pages for a running engine. These
// are debugging-only endpoints (no auth) to eyeball alert cadence and
// the live track table without a frontend.
package monitor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sort"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/lookout.report/db"
	"github.com/banshee-data/lookout.report/internal/vision"
)

// Source is a locked snapshot view of the live engine, typically the
// API server that owns the engine mutex.
type Source interface {
	TrackSummaries() []vision.TrackSummary
	TableStatistics() vision.TableStats
}

type Monitor struct {
	source Source
	store  *db.DB
	camera string
}

func New(source Source, store *db.DB, camera string) *Monitor {
	return &Monitor{source: source, store: store, camera: camera}
}

// Register mounts the chart handlers on mux.
func (m *Monitor) Register(mux *http.ServeMux) {
	mux.HandleFunc("/charts/alerts", m.handleAlertsChart)
	mux.HandleFunc("/charts/tracks", m.handleTracksChart)
}

func (m *Monitor) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// handleAlertsChart renders a bar chart of persisted alerts bucketed
// per minute, one series per alert type.
func (m *Monitor) handleAlertsChart(w http.ResponseWriter, r *http.Request) {
	if m.store == nil {
		m.writeJSONError(w, http.StatusNotFound, "alert store not configured")
		return
	}

	rows, err := m.store.Alerts(0)
	if err != nil {
		m.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to get alerts: %v", err))
		return
	}
	if len(rows) == 0 {
		m.writeJSONError(w, http.StatusNotFound, "no alerts recorded yet")
		return
	}

	type bucket struct {
		loiter  int
		abandon int
	}
	buckets := make(map[string]*bucket)
	keys := make([]string, 0)
	for _, row := range rows {
		key := row.At.Truncate(time.Minute).Format("15:04")
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
			keys = append(keys, key)
		}
		switch row.Type {
		case string(vision.AlertLoitering):
			b.loiter++
		case string(vision.AlertAbandoned):
			b.abandon++
		}
	}
	sort.Strings(keys)

	loiterData := make([]opts.BarData, 0, len(keys))
	abandonData := make([]opts.BarData, 0, len(keys))
	for _, key := range keys {
		loiterData = append(loiterData, opts.BarData{Value: buckets[key].loiter})
		abandonData = append(abandonData, opts.BarData{Value: buckets[key].abandon})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Behavioural Alerts", Theme: "dark", Width: "100%", Height: "720px"}),
		charts.WithTitleOpts(opts.Title{Title: "Alerts per Minute", Subtitle: fmt.Sprintf("camera=%s total=%d", m.camera, len(rows))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(keys).
		AddSeries("loitering", loiterData,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		).
		AddSeries("abandoned_object", abandonData,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)

	var buf bytes.Buffer
	if err := bar.Render(&buf); err != nil {
		m.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// handleTracksChart renders live track box centres as a scatter, colored
// by dwell seconds.
func (m *Monitor) handleTracksChart(w http.ResponseWriter, r *http.Request) {
	summaries := m.source.TrackSummaries()
	if len(summaries) == 0 {
		m.writeJSONError(w, http.StatusNotFound, "no live tracks")
		return
	}
	stats := m.source.TableStatistics()

	pts := make([]opts.ScatterData, 0, len(summaries))
	maxAbs := 0.0
	maxDwell := 0.0
	for _, s := range summaries {
		c := s.Box.Center()
		if math.Abs(c.X) > maxAbs {
			maxAbs = math.Abs(c.X)
		}
		if math.Abs(c.Y) > maxAbs {
			maxAbs = math.Abs(c.Y)
		}
		if s.DwellSeconds > maxDwell {
			maxDwell = s.DwellSeconds
		}
		pts = append(pts, opts.ScatterData{Value: []interface{}{c.X, c.Y, s.DwellSeconds}})
	}
	pad := maxAbs * 1.05
	if pad == 0 {
		pad = 1.0
	}
	if maxDwell == 0 {
		maxDwell = 1
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Live Tracks", Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: "Live Tracks", Subtitle: fmt.Sprintf("camera=%s tracks=%d alerted=%d", m.camera, stats.Tracks, stats.Alerted)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X (px)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Y (px)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxDwell),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: []string{"#440154", "#3e4989", "#26828e", "#35b779", "#b5de2b", "#fde725"}},
		}),
	)
	scatter.AddSeries("tracks", pts, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		m.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render tracks chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
