// Package api exposes the frame-ingest and alert-query HTTP surface.
//
// The engine itself is single-threaded with no internal locking; the
// server owns the mutex that serialises Step calls against snapshot
// reads, so one Server wraps exactly one camera stream's engine.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/banshee-data/lookout.report/db"
	"github.com/banshee-data/lookout.report/internal/monitoring"
	"github.com/banshee-data/lookout.report/internal/vision"
)

type Server struct {
	mu     sync.Mutex
	engine *vision.Engine
	store  *db.DB
	camera string
}

// NewServer wraps one engine and its alert store. The store may be nil,
// in which case alerts are returned to callers but not persisted.
func NewServer(engine *vision.Engine, store *db.DB, camera string) *Server {
	return &Server{engine: engine, store: store, camera: camera}
}

// loggingResponseWriter captures the status code for request logging.
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs method, path, status, and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		monitoring.Logf("[%d] %s %s %vms",
			lrw.statusCode, r.Method, r.RequestURI,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/frame", s.handleFrame)
	mux.HandleFunc("/alerts", s.listAlerts)
	mux.HandleFunc("/alerts.csv", s.downloadAlertsCSV)
	mux.HandleFunc("/tracks", s.listTracks)
	mux.HandleFunc("/healthz", s.healthz)
	return mux
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		monitoring.Logf("failed to encode response: %v", err)
	}
}

// FrameRequest is one frame of detections. T is seconds since the Unix
// epoch; when omitted the engine stamps the frame from its own clock.
type FrameRequest struct {
	T          *float64           `json:"t,omitempty"`
	Detections []vision.Detection `json:"detections"`
}

// FrameResponse carries the alerts raised by one frame.
type FrameResponse struct {
	Frame  int64          `json:"frame"`
	Alerts []vision.Alert `json:"alerts"`
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req FrameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid frame payload: %v", err))
		return
	}

	var ts time.Time
	if req.T != nil {
		ts = time.Unix(0, int64(*req.T*float64(time.Second)))
	}

	s.mu.Lock()
	alerts := s.engine.Step(req.Detections, ts)
	frame := s.engine.Frames()
	session := s.engine.SessionID()
	s.mu.Unlock()

	if s.store != nil {
		at := ts
		if at.IsZero() {
			at = time.Now()
		}
		for _, a := range alerts {
			if err := s.store.RecordAlert(session, at, a); err != nil {
				monitoring.Logf("failed to record alert: %v", err)
			}
		}
	}

	if alerts == nil {
		alerts = []vision.Alert{}
	}
	s.writeJSON(w, FrameResponse{Frame: frame, Alerts: alerts})
}

func (s *Server) listAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.store == nil {
		s.writeJSONError(w, http.StatusNotFound, "alert store not configured")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.writeJSONError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	var (
		rows []db.AlertRow
		err  error
	)
	if alertType := r.URL.Query().Get("type"); alertType != "" {
		rows, err = s.store.AlertsByType(alertType, limit)
	} else {
		rows, err = s.store.Alerts(limit)
	}
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if rows == nil {
		rows = []db.AlertRow{}
	}
	s.writeJSON(w, rows)
}

func (s *Server) downloadAlertsCSV(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeJSONError(w, http.StatusNotFound, "alert store not configured")
		return
	}

	rows, err := s.store.Alerts(0)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	timed := make([]vision.TimedAlert, 0, len(rows))
	// Query returns newest first; export oldest first for log readers.
	for i := len(rows) - 1; i >= 0; i-- {
		row := rows[i]
		timed = append(timed, vision.TimedAlert{
			At: row.At,
			Alert: vision.Alert{
				Type:         vision.AlertType(row.Type),
				TrackID:      row.TrackID,
				SinceSeconds: row.SinceS,
				Box:          vision.Box{X1: row.Box[0], Y1: row.Box[1], X2: row.Box[2], Y2: row.Box[3]},
				Confidence:   row.Conf,
				Label:        row.Label,
			},
		})
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=alerts.csv")
	if err := vision.WriteAlertsCSV(w, timed); err != nil {
		monitoring.Logf("failed to write alerts CSV: %v", err)
	}
}

// TracksResponse is a snapshot of the live track table.
type TracksResponse struct {
	Camera string                `json:"camera,omitempty"`
	Tracks []vision.TrackSummary `json:"tracks"`
	Stats  vision.TableStats     `json:"stats"`
}

// TrackSummaries returns a locked snapshot of the live track table.
func (s *Server) TrackSummaries() []vision.TrackSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Summaries(time.Time{})
}

// TableStatistics returns locked aggregate stats of the live track table.
func (s *Server) TableStatistics() vision.TableStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Statistics(time.Time{})
}

func (s *Server) listTracks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	summaries := s.TrackSummaries()
	stats := s.TableStatistics()

	if summaries == nil {
		summaries = []vision.TrackSummary{}
	}
	s.writeJSON(w, TracksResponse{Camera: s.camera, Tracks: summaries, Stats: stats})
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	frames := s.engine.Frames()
	session := s.engine.SessionID()
	s.mu.Unlock()

	s.writeJSON(w, map[string]interface{}{
		"status":  "ok",
		"camera":  s.camera,
		"session": session,
		"frames":  frames,
	})
}
