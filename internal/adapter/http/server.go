// Package http exposes the browsing session API plus health, readiness, and
// metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dulegil/region-service/internal/browse"
	"github.com/dulegil/region-service/internal/content"
	"github.com/dulegil/region-service/internal/geo"
	"github.com/dulegil/region-service/internal/region"
	"github.com/dulegil/region-service/internal/resolve"
	"github.com/dulegil/region-service/internal/session"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes the session API over HTTP.
type Server struct {
	httpServer *http.Server
	sessions   *session.Manager
	gateway    content.Gateway
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the session routes plus /healthz,
// /readyz, and /metrics.
func NewServer(addr string, sessions *session.Manager, gateway content.Gateway,
	ready ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		sessions: sessions,
		gateway:  gateway,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/regions", s.handleRegions)
	mux.HandleFunc("POST /v1/sessions", s.handleOpenSession)
	mux.HandleFunc("GET /v1/sessions/{id}", s.withSession(s.handleGetSession))
	mux.HandleFunc("DELETE /v1/sessions/{id}", s.handleCloseSession)
	mux.HandleFunc("POST /v1/sessions/{id}/resolve", s.withSession(s.handleResolve))
	mux.HandleFunc("POST /v1/sessions/{id}/province", s.withSession(s.handleSelectProvince))
	mux.HandleFunc("POST /v1/sessions/{id}/city", s.withSession(s.handleSelectCity))
	mux.HandleFunc("POST /v1/sessions/{id}/back", s.withSession(s.handleBack))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// --- session handlers ---

type sessionResponse struct {
	ID        string           `json:"id"`
	Selection browse.Selection `json:"selection"`
	Advisory  []advisoryCity   `json:"advisory,omitempty"`
}

type advisoryCity struct {
	Code region.Code `json:"code"`
	Name string      `json:"name"`
}

func (s *Server) handleOpenSession(w http.ResponseWriter, _ *http.Request) {
	sess := s.sessions.Open()
	writeJSON(w, http.StatusCreated, sessionView(sess))
}

// withSession resolves the {id} path segment to a live session, replying 404
// when it is unknown or already expired.
func (s *Server) withSession(h func(http.ResponseWriter, *http.Request, *session.Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.sessions.Get(r.PathValue("id"))
		if !ok {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		h(w, r, sess)
	}
}

func (s *Server) handleGetSession(w http.ResponseWriter, _ *http.Request, sess *session.Session) {
	writeJSON(w, http.StatusOK, sessionView(sess))
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.Close(r.PathValue("id")) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type resolveRequest struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

type resolveResponse struct {
	Outcome       outcomeView      `json:"outcome"`
	LocationError string           `json:"location_error,omitempty"`
	Message       string           `json:"message,omitempty"`
	Selection     browse.Selection `json:"selection"`
	Advisory      []advisoryCity   `json:"advisory,omitempty"`
}

type outcomeView struct {
	Kind   resolve.Kind    `json:"kind"`
	Region *region.Info    `json:"region,omitempty"`
	Trails []content.Trail `json:"trails,omitempty"`
	Cities []advisoryCity  `json:"cities,omitempty"`
}

// handleResolve runs a resolution chain. A body with lat/lon resolves the
// client-supplied fix; an empty body acquires through the location bridge.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	if (req.Lat == nil) != (req.Lon == nil) {
		writeError(w, http.StatusBadRequest, "lat and lon must be supplied together")
		return
	}

	var res session.Resolution
	if req.Lat != nil {
		res = sess.ResolveCoordinate(r.Context(), geo.Coordinate{Lat: *req.Lat, Lon: *req.Lon})
	} else {
		res = sess.ResolveCurrentLocation(r.Context())
	}

	if res.Cancelled {
		writeError(w, http.StatusConflict, "session closed during resolution")
		return
	}

	out := res.Outcome
	resp := resolveResponse{
		Outcome: outcomeView{
			Kind:   out.Kind,
			Region: out.Region,
			Trails: out.Trails,
			Cities: advisoryCities(out.Cities),
		},
		Selection: sess.Browser().Selection(),
		Advisory:  advisoryCities(sess.Browser().Advisory()),
	}
	if res.LocationError != "" {
		resp.Outcome.Kind = "location_error"
		resp.LocationError = string(res.LocationError)
		resp.Message = res.Message
	}
	writeJSON(w, http.StatusOK, resp)
}

type selectRequest struct {
	Province region.Code `json:"province"`
	City     region.Code `json:"city"`
}

type transitionResponse struct {
	Changed   bool             `json:"changed"`
	Selection browse.Selection `json:"selection"`
}

func (s *Server) handleSelectProvince(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Province == "" {
		writeError(w, http.StatusBadRequest, "province is required")
		return
	}

	changed, err := sess.Browser().SelectProvince(r.Context(), req.Province)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "content service unavailable")
		return
	}
	writeJSON(w, http.StatusOK, transitionResponse{Changed: changed, Selection: sess.Browser().Selection()})
}

func (s *Server) handleSelectCity(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.City == "" {
		writeError(w, http.StatusBadRequest, "city is required")
		return
	}

	changed, err := sess.Browser().SelectCity(r.Context(), req.City)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "content service unavailable")
		return
	}
	writeJSON(w, http.StatusOK, transitionResponse{Changed: changed, Selection: sess.Browser().Selection()})
}

func (s *Server) handleBack(w http.ResponseWriter, _ *http.Request, sess *session.Session) {
	changed := sess.Browser().Back()
	writeJSON(w, http.StatusOK, transitionResponse{Changed: changed, Selection: sess.Browser().Selection()})
}

// --- catalog handler ---

type regionsResponse struct {
	Provinces []provinceView `json:"provinces"`
}

type provinceView struct {
	Code       region.Code `json:"code"`
	Name       string      `json:"name"`
	HasContent bool        `json:"has_content"`
	Cities     []cityView  `json:"cities"`
}

type cityView struct {
	Code       region.Code    `json:"code"`
	Name       string         `json:"name"`
	Centroid   geo.Coordinate `json:"centroid"`
	HasContent bool           `json:"has_content"`
}

// handleRegions returns the full catalog annotated with current availability,
// so a client can render the country and province views from one call.
func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	avail, err := s.gateway.Availability(r.Context())
	if err != nil {
		s.logger.Warn("availability fetch failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "content service unavailable")
		return
	}

	resp := regionsResponse{Provinces: make([]provinceView, 0, len(region.Provinces()))}
	for _, p := range region.Provinces() {
		pv := provinceView{
			Code:       p,
			Name:       region.ProvinceName(p),
			HasContent: avail.HasProvince(p),
		}
		for _, e := range region.ForProvince(p) {
			pv.Cities = append(pv.Cities, cityView{
				Code:       e.City,
				Name:       region.CityName(e.City),
				Centroid:   e.Centroid,
				HasContent: avail.HasCity(p, e.City),
			})
		}
		resp.Provinces = append(resp.Provinces, pv)
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- helpers ---

func sessionView(sess *session.Session) sessionResponse {
	return sessionResponse{
		ID:        sess.ID,
		Selection: sess.Browser().Selection(),
		Advisory:  advisoryCities(sess.Browser().Advisory()),
	}
}

func advisoryCities(codes []region.Code) []advisoryCity {
	if len(codes) == 0 {
		return nil
	}
	cities := make([]advisoryCity, len(codes))
	for i, c := range codes {
		cities[i] = advisoryCity{Code: c, Name: region.CityName(c)}
	}
	return cities
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
