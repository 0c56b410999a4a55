package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/klazomenai/landing-service/pkg/auth"
	"github.com/klazomenai/landing-service/pkg/field"
	"github.com/klazomenai/landing-service/pkg/metrics"
	"github.com/klazomenai/landing-service/pkg/page"
	"github.com/klazomenai/landing-service/pkg/storage"
	"github.com/klazomenai/landing-service/pkg/telemetry"
	"github.com/klazomenai/landing-service/pkg/view"
	"github.com/klazomenai/landing-service/web"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Server represents the HTTP server of the landing page
type Server struct {
	tokens           *auth.TokenService
	store            storage.Store
	renderer         *page.Renderer
	generator        view.Generator
	viewTTL          time.Duration
	locks            viewLocks
	router           *mux.Router
	metricsCollector *metrics.Collector
}

// FieldResponse is the JSON form of an activated view
type FieldResponse struct {
	ViewID    string           `json:"view_id"`
	Ready     bool             `json:"ready"`
	Stars     []field.Star     `json:"stars"`
	Particles []field.Particle `json:"particles"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

const (
	storeTimeout = 2 * time.Second
	layersPath   = "/views/{token}/layers"
)

// errViewNotFound marks a token whose view expired or never existed
var errViewNotFound = errors.New("view not found")

// NewServer creates a new landing server
func NewServer(tokens *auth.TokenService, store storage.Store, renderer *page.Renderer, viewTTL time.Duration) *Server {
	s := &Server{
		tokens:           tokens,
		store:            store,
		renderer:         renderer,
		generator:        field.NewGenerator(nil),
		viewTTL:          viewTTL,
		router:           mux.NewRouter(),
		metricsCollector: metrics.NewCollector(store),
	}

	static, err := fs.Sub(web.StaticFiles, "static")
	if err != nil {
		// The embed directive guarantees the directory exists
		panic(err)
	}

	s.router.Use(requestID, securityHeaders, accessLog)

	// Setup routes
	s.router.HandleFunc("/", s.Landing).Methods("GET")
	s.router.HandleFunc(layersPath, s.Layers).Methods("GET").Name("layers")
	s.router.HandleFunc("/api/views/{token}/field", s.Field).Methods("GET")
	s.router.HandleFunc(page.ChatPath, s.Chat).Methods("GET", "HEAD")
	s.router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(static)))).Methods("GET", "HEAD")
	s.router.HandleFunc("/health", s.Health).Methods("GET")
	s.router.HandleFunc("/healthz", s.Health).Methods("GET")
	s.router.Handle("/metrics", s.metricsHandler()).Methods("GET")

	return s
}

// Landing mounts a fresh view and renders the initial pass with the gate closed.
// ?render=full activates the view immediately and renders its layers inline.
func (s *Server) Landing(w http.ResponseWriter, r *http.Request) {
	ctx, span := telemetry.Tracer().Start(r.Context(), "landing.mount")
	defer span.End()

	v := view.Mount(uuid.NewString())
	span.SetAttributes(attribute.String("view.id", v.ID))

	activated := false
	if r.URL.Query().Get("render") == "full" {
		activated = v.Activate(s.generator)
	}

	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if err := s.store.SaveView(storeCtx, v.Snapshot(), s.viewTTL); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store view")
		s.sendError(w, http.StatusInternalServerError, "Failed to store view", err.Error())
		return
	}

	token, err := s.tokens.Issue(v.ID, s.viewTTL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "issue token")
		s.sendError(w, http.StatusInternalServerError, "Failed to issue mount token", err.Error())
		return
	}

	layersURL, err := s.router.Get("layers").URL("token", token)
	if err != nil {
		s.sendError(w, http.StatusInternalServerError, "Failed to build layers URL", err.Error())
		return
	}

	var buf bytes.Buffer
	if err := s.renderer.Landing(&buf, v, layersURL.String()); err != nil {
		span.RecordError(err)
		s.sendError(w, http.StatusInternalServerError, "Failed to render landing page", err.Error())
		return
	}

	metrics.ViewsMountedTotal.Inc()
	if activated {
		metrics.RecordActivation(len(v.Stars()), len(v.Particles()))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// Layers runs the client-capable pass and returns the marker layers as HTML
func (s *Server) Layers(w http.ResponseWriter, r *http.Request) {
	v, ok := s.activateFromRequest(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := s.renderer.Layers(&buf, v); err != nil {
		s.sendError(w, http.StatusInternalServerError, "Failed to render layers", err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// Field runs the client-capable pass and returns both collections as JSON
func (s *Server) Field(w http.ResponseWriter, r *http.Request) {
	v, ok := s.activateFromRequest(w, r)
	if !ok {
		return
	}

	resp := FieldResponse{
		ViewID:    v.ID,
		Ready:     v.Ready(),
		Stars:     v.Stars(),
		Particles: v.Particles(),
	}

	w.Header().Set("Cache-Control", "no-store")
	s.sendJSON(w, http.StatusOK, resp)
}

// Chat renders the secondary view the call-to-action links to
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.renderer.Chat(&buf); err != nil {
		s.sendError(w, http.StatusInternalServerError, "Failed to render chat page", err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// Health handles health check requests
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	if err := s.store.Health(ctx); err != nil {
		s.sendError(w, http.StatusServiceUnavailable, "View store unhealthy", err.Error())
		return
	}

	resp := map[string]string{
		"status": "healthy",
		"store":  "connected",
	}
	s.sendJSON(w, http.StatusOK, resp)
}

// activateFromRequest verifies the mount token, loads the view and opens its
// gate. It writes the error response itself and reports false on failure.
func (s *Server) activateFromRequest(w http.ResponseWriter, r *http.Request) (*view.View, bool) {
	ctx, span := telemetry.Tracer().Start(r.Context(), "landing.activate")
	defer span.End()

	viewID, err := s.tokens.Verify(mux.Vars(r)["token"])
	if err != nil {
		metrics.LayerRequestsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		span.SetStatus(codes.Error, "invalid token")
		s.sendError(w, http.StatusUnauthorized, "Invalid mount token", "")
		return nil, false
	}
	span.SetAttributes(attribute.String("view.id", viewID))

	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	v, generated, err := s.activateView(storeCtx, viewID)
	switch {
	case errors.Is(err, errViewNotFound):
		metrics.LayerRequestsTotal.WithLabelValues(metrics.OutcomeNotFound).Inc()
		s.sendError(w, http.StatusNotFound, "View not found", "The view expired or was never mounted")
		return nil, false
	case err != nil:
		metrics.LayerRequestsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "activate view")
		s.sendError(w, http.StatusInternalServerError, "Failed to activate view", err.Error())
		return nil, false
	}

	outcome := metrics.OutcomeReplayed
	if generated {
		outcome = metrics.OutcomeGenerated
	}
	metrics.LayerRequestsTotal.WithLabelValues(outcome).Inc()
	span.SetAttributes(attribute.Bool("view.generated", generated))

	return v, true
}

// activateView loads a stored view, opens its gate if still closed and
// stores the result. Already-activated views are returned unchanged.
func (s *Server) activateView(ctx context.Context, viewID string) (*view.View, bool, error) {
	unlock := s.locks.lock(viewID)
	defer unlock()

	snap, err := s.store.GetView(ctx, viewID)
	if err != nil {
		return nil, false, err
	}
	if snap == nil {
		return nil, false, errViewNotFound
	}

	v, err := view.Restore(*snap)
	if err != nil {
		log.Printf("Discarding view %s: %v", viewID, err)
		if delErr := s.store.DeleteView(ctx, viewID); delErr != nil {
			log.Printf("Warning: Failed to delete corrupt view %s: %v", viewID, delErr)
		}
		return nil, false, err
	}

	if !v.Activate(s.generator) {
		return v, false, nil
	}

	// Keep the remaining lifetime close to the original mount TTL
	ttl := s.viewTTL - time.Since(v.MountedAt)
	if ttl <= 0 {
		ttl = time.Second
	}
	if err := s.store.SaveView(ctx, v.Snapshot(), ttl); err != nil {
		return nil, false, err
	}
	metrics.RecordActivation(len(v.Stars()), len(v.Particles()))

	return v, true, nil
}

// Router returns the HTTP router
func (s *Server) Router() *mux.Router {
	return s.router
}

// metricsHandler returns an HTTP handler for Prometheus metrics
// It updates metrics from storage on each scrape to ensure fresh data
func (s *Server) metricsHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.metricsCollector.UpdateMetrics()
		promhttp.Handler().ServeHTTP(w, r)
	})
}

// Helper methods
func (s *Server) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) sendError(w http.ResponseWriter, status int, error, message string) {
	resp := ErrorResponse{
		Error:   error,
		Message: message,
	}
	s.sendJSON(w, status, resp)
}
