package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gyaneshwarpardhi/wtgraph/internal/config"
	"github.com/gyaneshwarpardhi/wtgraph/internal/engine"
	"github.com/gyaneshwarpardhi/wtgraph/internal/export"
	"github.com/gyaneshwarpardhi/wtgraph/internal/facts"
	"github.com/gyaneshwarpardhi/wtgraph/internal/filter"
	"github.com/gyaneshwarpardhi/wtgraph/internal/metrics"
	"github.com/gyaneshwarpardhi/wtgraph/internal/pipeline"
	"github.com/gyaneshwarpardhi/wtgraph/internal/query"
	"github.com/gyaneshwarpardhi/wtgraph/internal/wtg"
)

const maxQueryBody = 1 << 20

// Handler holds all HTTP handler dependencies.
type Handler struct {
	eng       *engine.Engine
	loader    *facts.Loader
	exporters *export.Registry
	logger    *slog.Logger
	mux       *http.ServeMux
}

// New creates an HTTP handler and registers all routes. Query routes are
// rate limited per client address when rl.Enabled is set.
func New(logger *slog.Logger, eng *engine.Engine, loader *facts.Loader, exporters *export.Registry, rl config.RateLimitConf) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{eng: eng, loader: loader, exporters: exporters, logger: logger, mux: http.NewServeMux()}

	limit := func(next http.HandlerFunc) http.Handler { return next }
	if rl.Enabled {
		limiter := newClientLimiter(rl.RPS, rl.Burst)
		limit = func(next http.HandlerFunc) http.Handler { return limiter.middleware(next) }
	}

	h.mux.HandleFunc("GET /v1/apps", h.listApps)
	h.mux.HandleFunc("GET /v1/apps/{app}", h.getApp)
	h.mux.HandleFunc("GET /v1/apps/{app}/nodes", h.listNodes)
	h.mux.HandleFunc("GET /v1/apps/{app}/edges", h.listEdges)
	h.mux.HandleFunc("GET /v1/apps/{app}/components", h.listComponents)
	h.mux.HandleFunc("GET /v1/apps/{app}/export/{format}", h.exportGraph)
	h.mux.Handle("POST /v1/apps/{app}/explore", limit(h.runQuery(query.KindExplore)))
	h.mux.Handle("POST /v1/apps/{app}/shortest", limit(h.runQuery(query.KindShortest)))
	h.mux.Handle("POST /v1/apps/{app}/stack", limit(h.runQuery(query.KindStack)))
	h.mux.HandleFunc("POST /v1/reload", h.reload)
	h.mux.HandleFunc("GET /healthz", h.healthz)
	h.mux.HandleFunc("GET /readyz", h.readyz)
	h.mux.Handle("GET /metrics", promhttp.Handler())

	return loggingMiddleware(logger, h.mux)
}

type appSummary struct {
	App     string          `json:"app"`
	BuiltAt time.Time       `json:"built_at"`
	Stats   wtg.Stats       `json:"stats"`
	Report  pipeline.Report `json:"report"`
}

func summarize(s *engine.Snapshot) appSummary {
	return appSummary{App: s.App, BuiltAt: s.BuiltAt, Stats: s.Graph.Stats(), Report: s.Report}
}

// snapshot resolves the {app} path value, writing a 404 when it is unknown.
func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) (*engine.Snapshot, bool) {
	app := r.PathValue("app")
	s, ok := h.eng.Snapshot(app)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown app %q", app))
	}
	return s, ok
}

// GET /v1/apps: loaded apps and their stats.
func (h *Handler) listApps(w http.ResponseWriter, r *http.Request) {
	out := []appSummary{}
	for _, name := range h.eng.Apps() {
		if s, ok := h.eng.Snapshot(name); ok {
			out = append(out, summarize(s))
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// GET /v1/apps/{app}: build report of one app.
func (h *Handler) getApp(w http.ResponseWriter, r *http.Request) {
	s, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, summarize(s))
}

// GET /v1/apps/{app}/nodes
func (h *Handler) listNodes(w http.ResponseWriter, r *http.Request) {
	s, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	nodes := s.Graph.Nodes()
	out := make([]query.NodeView, len(nodes))
	for i, n := range nodes {
		out[i] = query.NewNodeView(n)
	}
	writeJSON(w, http.StatusOK, out)
}

// GET /v1/apps/{app}/edges?filter=...: installed edges, optionally filtered.
func (h *Handler) listEdges(w http.ResponseWriter, r *http.Request) {
	s, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	pred, err := filter.Compile(r.URL.Query().Get("filter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	out := []query.EdgeView{}
	for _, e := range s.Graph.Edges() {
		if pred.Match(e) {
			out = append(out, query.NewEdgeView(e))
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// GET /v1/apps/{app}/components
func (h *Handler) listComponents(w http.ResponseWriter, r *http.Request) {
	s, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, query.Components(s.Graph))
}

// GET /v1/apps/{app}/export/{format}
func (h *Handler) exportGraph(w http.ResponseWriter, r *http.Request) {
	s, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	x, err := h.exporters.Get(r.PathValue("format"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.Header().Set("Content-Type", x.ContentType())
	if err := x.Export(w, s.App, s.Graph); err != nil {
		h.logger.Error("export failed", "app", s.App, "format", x.Format(), "err", err)
	}
}

// POST /v1/apps/{app}/{kind}: synchronous path query.
func (h *Handler) runQuery(kind query.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q query.Query
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQueryBody)).Decode(&q); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
			return
		}
		q.App = r.PathValue("app")
		q.Kind = kind
		if q.ID == "" {
			q.ID = uuid.New().String()
		}
		q.ReceivedAt = time.Now()

		res, err := h.eng.Run(r.Context(), &q)
		if err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, query.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrUnknownApp):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrQueueFull):
		return http.StatusTooManyRequests
	case errors.Is(err, engine.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// POST /v1/reload: re-read every fact file; rebuilt graphs are swapped in
// by the loader's change callbacks.
func (h *Handler) reload(w http.ResponseWriter, r *http.Request) {
	apps, err := h.loader.Reload()
	reloaded := make([]string, 0, len(apps))
	for _, a := range apps {
		reloaded = append(reloaded, a.App)
	}
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"reloaded": reloaded,
			"error":    err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reloaded": reloaded,
	})
}

// GET /healthz: always 200 (liveness probe).
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /readyz: 503 until a graph is loaded or while the query queue is >80% full.
func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	util := h.eng.QueueUtilization()
	metrics.QueueUtilization.Set(util)
	apps := h.eng.Apps()
	if len(apps) == 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "no graphs loaded",
		})
		return
	}
	if util > 0.8 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":            "overloaded",
			"queue_utilization": util,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":            "ready",
		"apps":              apps,
		"queue_utilization": util,
	})
}
