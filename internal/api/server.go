// Package api exposes the panel over HTTP: the live snapshot for renderers,
// picker data proxied from TMB, and the user-initiated configuration
// mutations (the poll lanes never write config).
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/00b1b1/tmb-pantalles/internal/coordinator"
	"github.com/00b1b1/tmb-pantalles/internal/panel"
	"github.com/00b1b1/tmb-pantalles/internal/shareurl"
	"github.com/00b1b1/tmb-pantalles/internal/tmb"
)

// Source is the slice of the coordinator the server reads and steers.
type Source interface {
	Snapshot() coordinator.Snapshot
	SetSelection(coordinator.Selection)
}

// Directory lists lines and stations for the picker endpoints.
type Directory interface {
	Lines(ctx context.Context) ([]tmb.LineFeature, error)
	LineStations(ctx context.Context, lineCode int) ([]tmb.StationFeature, error)
}

// Server holds the session configuration and serves it. Config mutations take
// the write lock; everything else reads a copy.
type Server struct {
	source    Source
	directory Directory
	shareBase string

	mu          sync.Mutex
	cfg         panel.Config
	rotator     panel.Rotator
	lastAdvance time.Time

	now func() time.Time
}

// NewServer creates a server seeded with the given configuration.
func NewServer(source Source, directory Directory, shareBase string, cfg panel.Config) *Server {
	s := &Server{
		source:    source,
		directory: directory,
		shareBase: shareBase,
		cfg:       cfg,
		now:       time.Now,
	}
	s.pushSelection()
	return s
}

// Routes mounts all endpoints on a chi router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.health)

	r.Get("/api/panel", s.getPanel)
	r.Get("/api/panel/alerts", s.getAlerts)
	r.Get("/api/panel/share", s.getShareURL)
	r.Put("/api/panel/config", s.putConfig)

	r.Post("/api/panel/custom-alerts", s.postCustomAlert)
	r.Put("/api/panel/custom-alerts/{id}", s.putCustomAlert)
	r.Delete("/api/panel/custom-alerts/{id}", s.deleteCustomAlert)
	r.Post("/api/panel/custom-alerts/{id}/toggle", s.toggleCustomAlert)

	r.Get("/api/lines", s.getLines)
	r.Get("/api/lines/{lineCode}/stations", s.getLineStations)
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// TrainView is one countdown row.
type TrainView struct {
	Time        string `json:"time"`
	Theoretical bool   `json:"theoretical"`
}

// PanelResponse is the full render state of the panel.
type PanelResponse struct {
	Line        string       `json:"line"`
	Station     int          `json:"station"`
	Direction   int          `json:"direction"`
	Destination string       `json:"destination,omitempty"`
	Clock       string       `json:"clock"`
	Loading     bool         `json:"loading"`
	Train1      *TrainView   `json:"train1,omitempty"`
	Train2      *TrainView   `json:"train2,omitempty"`
	ActiveAlert *panel.Entry `json:"activeAlert,omitempty"`
	PolledAt    *time.Time   `json:"polledAt,omitempty"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": s.now().UTC(),
	})
}

// getPanel handles GET /api/panel. The rotation advances lazily here: elapsed
// wall time since the previous request is fed to the state machine, so a
// renderer polling every second sees the same cadence as the TUI.
func (s *Server) getPanel(w http.ResponseWriter, r *http.Request) {
	snap := s.source.Snapshot()
	now := s.now()

	s.mu.Lock()
	cfg := s.cfg
	active := s.advanceRotation(snap, now)
	s.mu.Unlock()

	resp := PanelResponse{
		Line:        cfg.LineName,
		Station:     cfg.StationCode,
		Direction:   cfg.DirectionID,
		Clock:       now.Format("15:04"),
		Loading:     !snap.ArrivalsLoaded,
		ActiveAlert: active,
	}

	if station := snap.Arrivals.Direction(cfg.DirectionID); station != nil && len(station.LiniesTrajectes) > 0 {
		resp.Destination = station.LiniesTrajectes[0].DestiTrajecte
	}
	if snap.ArrivalsLoaded {
		t := snap.ArrivalsAt
		resp.PolledAt = &t
	}

	trains := snap.Arrivals.UpcomingTrains(cfg.DirectionID)
	nowMs := now.UnixMilli()
	if len(trains) > 0 {
		resp.Train1 = &TrainView{
			Time:        panel.TimeRemaining(trains[0].TempsArribada, nowMs, false),
			Theoretical: trains[0].TempsTeoric,
		}
	}
	if len(trains) > 1 {
		resp.Train2 = &TrainView{
			Time:        panel.TimeRemaining(trains[1].TempsArribada, nowMs, true),
			Theoretical: trains[1].TempsTeoric,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// advanceRotation feeds the elapsed time into the rotator and returns the
// active entry. Caller must hold s.mu.
func (s *Server) advanceRotation(snap coordinator.Snapshot, now time.Time) *panel.Entry {
	if !s.cfg.ShowAlert {
		s.rotator.SetEntries(nil)
		s.lastAdvance = now
		return nil
	}

	s.rotator.SetEntries(panel.CombineAlerts(snap.Alerts, s.cfg))
	if !s.lastAdvance.IsZero() {
		s.rotator.Tick(now.Sub(s.lastAdvance))
	}
	s.lastAdvance = now

	entry, ok := s.rotator.Active()
	if !ok {
		return nil
	}
	return &entry
}

func (s *Server) getAlerts(w http.ResponseWriter, r *http.Request) {
	snap := s.source.Snapshot()

	s.mu.Lock()
	enabled := s.cfg.ShowAlert
	entries := panel.CombineAlerts(snap.Alerts, s.cfg)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"enabled": enabled,
		"entries": entries,
	})
}

func (s *Server) getShareURL(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	link := shareurl.EncodeURL(s.shareBase, s.cfg)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"url": link})
}

// putConfig handles PUT /api/panel/config. The new configuration arrives in
// the share-URL query format, so a shareable link's query string applies
// as-is.
func (s *Server) putConfig(w http.ResponseWriter, r *http.Request) {
	cfg, ok := shareurl.Decode(r.URL.RawQuery)
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "missing line parameter"})
		return
	}

	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	s.pushSelection()

	writeJSON(w, http.StatusOK, map[string]string{"status": "applied"})
}

func (s *Server) postCustomAlert(w http.ResponseWriter, r *http.Request) {
	var alert panel.CustomAlert
	if err := json.NewDecoder(r.Body).Decode(&alert); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid custom alert payload"})
		return
	}

	s.mu.Lock()
	id := s.cfg.UpsertCustomAlert(alert)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) putCustomAlert(w http.ResponseWriter, r *http.Request) {
	var alert panel.CustomAlert
	if err := json.NewDecoder(r.Body).Decode(&alert); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid custom alert payload"})
		return
	}
	alert.ID = chi.URLParam(r, "id")

	s.mu.Lock()
	s.cfg.UpsertCustomAlert(alert)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"id": alert.ID})
}

func (s *Server) deleteCustomAlert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	found := s.cfg.DeleteCustomAlert(id)
	s.mu.Unlock()

	if !found {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "custom alert not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) toggleCustomAlert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	found := s.cfg.ToggleCustomAlert(id)
	s.mu.Unlock()

	if !found {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "custom alert not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (s *Server) getLines(w http.ResponseWriter, r *http.Request) {
	lines, err := s.directory.Lines(r.Context())
	if err != nil {
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

func (s *Server) getLineStations(w http.ResponseWriter, r *http.Request) {
	lineCode := shareurl.LineCodeFromName(chi.URLParam(r, "lineCode"))
	if lineCode == 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid line code"})
		return
	}

	stations, err := s.directory.LineStations(r.Context(), lineCode)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stations)
}

// pushSelection forwards the poll-relevant slice of the config.
func (s *Server) pushSelection() {
	s.mu.Lock()
	sel := coordinator.Selection{
		LineCode:    s.cfg.LineCode,
		LineName:    s.cfg.LineName,
		StationCode: s.cfg.StationCode,
		ShowAlert:   s.cfg.ShowAlert,
	}
	s.mu.Unlock()
	s.source.SetSelection(sel)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
