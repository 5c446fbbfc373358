// Package handler exposes the attribute-source management API and the
// asynchronous data channel over HTTP.
package handler

//go:generate mockgen -source=handler.go -destination=mocks/handler-mocks.go -package=mocks Service,CallbackURLs

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"asnode/internal/as/models"
	"asnode/internal/platform/middleware"
	dErrors "asnode/pkg/domain-errors"
	"asnode/pkg/platform/httputil"
)

// Service is the slice of the pipeline the API drives.
type Service interface {
	UpsertService(ctx context.Context, reg models.ServiceRegistration) error
	GetServiceDetail(ctx context.Context, serviceID string) (*models.ServiceDetail, error)
	ProcessDataForRP(ctx context.Context, data json.RawMessage, target models.RelayTarget) error
}

// CallbackURLs reads and persists the node's callback configuration.
type CallbackURLs interface {
	Get() models.CallbackURLs
	Set(ctx context.Context, urls models.CallbackURLs) error
}

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Handler serves the node API.
type Handler struct {
	svc            Service
	urls           CallbackURLs
	logger         *slog.Logger
	adminTokenHash string
	httpMetrics    middleware.LatencyObserver
	gatherer       prometheus.Gatherer
	checks         map[string]HealthCheck
}

// Option configures a Handler.
type Option func(*Handler)

// WithAdminTokenHash guards the /as routes with a bcrypt-hashed token.
func WithAdminTokenHash(hash string) Option {
	return func(h *Handler) {
		h.adminTokenHash = hash
	}
}

func WithHTTPMetrics(obs middleware.LatencyObserver) Option {
	return func(h *Handler) {
		h.httpMetrics = obs
	}
}

// WithGatherer serves g on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(h *Handler) {
		h.gatherer = g
	}
}

// WithHealthCheck adds a named dependency to /healthz.
func WithHealthCheck(name string, check HealthCheck) Option {
	return func(h *Handler) {
		h.checks[name] = check
	}
}

func New(svc Service, urls CallbackURLs, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		svc:    svc,
		urls:   urls,
		logger: logger,
		checks: make(map[string]HealthCheck),
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts every route on r.
func (h *Handler) Register(r chi.Router) {
	r.Use(middleware.Recovery(h.logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(h.logger))
	r.Use(middleware.Latency(h.httpMetrics, routePattern))

	r.Get("/healthz", h.handleHealth)
	if h.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/as", func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireAdminToken(h.adminTokenHash, h.logger))
		r.Post("/service/{service_id}", h.handleUpsertService)
		r.Get("/service/{service_id}", h.handleGetService)
		r.Post("/callback", h.handleSetCallback)
		r.Get("/callback", h.handleGetCallback)
		r.Post("/data/{request_id}/{service_id}", h.handleData)
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

type upsertServiceRequest struct {
	MinIAL *float64 `json:"min_ial"`
	MinAAL *float64 `json:"min_aal"`
	URL    string   `json:"url"`
}

func (h *Handler) handleUpsertService(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	serviceID := chi.URLParam(r, "service_id")

	var req upsertServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid upsert service request",
			"http_request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	err := h.svc.UpsertService(ctx, models.ServiceRegistration{
		ServiceID: serviceID,
		MinIAL:    req.MinIAL,
		MinAAL:    req.MinAAL,
		URL:       req.URL,
	})
	if err != nil {
		h.writeServiceError(ctx, w, "failed to upsert service", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetService(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	serviceID := chi.URLParam(r, "service_id")

	detail, err := h.svc.GetServiceDetail(ctx, serviceID)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to get service", err)
		return
	}
	if detail == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "service not registered"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, detail)
}

func (h *Handler) handleSetCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.CallbackURLs
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := h.urls.Set(ctx, req); err != nil {
		h.writeServiceError(ctx, w, "failed to set callback urls", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetCallback(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.urls.Get())
}

type dataRequest struct {
	Data json.RawMessage `json:"data"`
}

// handleData relays data the attribute source produced after answering an
// earlier callback with 204.
func (h *Handler) handleData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	target := models.RelayTarget{
		RequestID: chi.URLParam(r, "request_id"),
		ServiceID: chi.URLParam(r, "service_id"),
	}

	var req dataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if len(req.Data) == 0 || string(req.Data) == "null" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeMissingArguments, "data is required"))
		return
	}

	if err := h.svc.ProcessDataForRP(ctx, req.Data, target); err != nil {
		h.writeServiceError(ctx, w, "failed to relay data", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	body := map[string]string{"status": "ok"}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body[name] = err.Error()
			continue
		}
		body[name] = "ok"
	}
	httputil.WriteJSON(w, status, body)
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	if dErrors.IsClientError(err) || dErrors.HasCode(err, dErrors.CodeNotFound) {
		h.logger.WarnContext(ctx, msg,
			"http_request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
	} else {
		h.logger.ErrorContext(ctx, msg,
			"http_request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}
