package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"

	"github.com/siliconsage/build-engine/internal/engine"
	"github.com/siliconsage/build-engine/internal/normalizer"
	"github.com/siliconsage/build-engine/internal/ratelimit"
	"github.com/siliconsage/build-engine/internal/services"
)

// RouterOptions configures the HTTP boundary.
type RouterOptions struct {
	Logger         *slog.Logger
	Service        *services.AnalysisService
	Limiter        ratelimit.Limiter
	AllowedOrigins []string
	MaxBodyBytes   int64
	Version        string
}

// HealthResponse is served by the liveness and readiness routes.
type HealthResponse struct {
	Status       string `json:"status"`
	EngineLoaded bool   `json:"engine_loaded"`
	Version      string `json:"version"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

type httpHandler struct {
	logger       *slog.Logger
	service      *services.AnalysisService
	maxBodyBytes int64
	version      string
}

// NewRouter builds the chi router serving the analysis HTTP API.
func NewRouter(opts RouterOptions) http.Handler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	h := &httpHandler{
		logger:       opts.Logger,
		service:      opts.Service,
		maxBodyBytes: opts.MaxBodyBytes,
		version:      opts.Version,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(opts.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", h.health)
	r.Get("/health", h.health)
	r.Get("/ready", h.ready)

	r.Group(func(r chi.Router) {
		r.Use(ratelimit.Middleware(opts.Limiter, opts.Logger))
		r.Post("/predict/fps", h.analyze)
		r.Post("/analyze", h.analyze)
		r.Post("/analyze/value-tier", h.valueTier)
		r.Get("/ecosystem/compare", h.compare)
	})

	return r
}

func (h *httpHandler) health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, HealthResponse{
		Status:       "healthy",
		EngineLoaded: h.service != nil && h.service.Ready(),
		Version:      h.version,
	})
}

func (h *httpHandler) ready(w http.ResponseWriter, r *http.Request) {
	if h.service == nil || !h.service.Ready() {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, HealthResponse{Status: "unavailable", Version: h.version})
		return
	}
	render.JSON(w, r, HealthResponse{Status: "ready", EngineLoaded: true, Version: h.version})
}

func (h *httpHandler) analyze(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		h.fail(w, r, http.StatusServiceUnavailable, ErrorResponse{Error: services.ErrNotReady.Error()})
		return
	}

	raw, err := h.decodeBody(w, r)
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Field: "body"})
		return
	}

	result, err := h.service.Analyze(r.Context(), raw)
	if err != nil {
		h.analysisError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

func (h *httpHandler) valueTier(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		h.fail(w, r, http.StatusServiceUnavailable, ErrorResponse{Error: services.ErrNotReady.Error()})
		return
	}

	raw, err := h.decodeBody(w, r)
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Field: "body"})
		return
	}

	result, err := h.service.ValueTier(r.Context(), raw)
	if err != nil {
		h.analysisError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

func (h *httpHandler) compare(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		h.fail(w, r, http.StatusServiceUnavailable, ErrorResponse{Error: services.ErrNotReady.Error()})
		return
	}

	query := r.URL.Query()
	price, err := strconv.ParseFloat(query.Get("build_price"), 64)
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, ErrorResponse{Error: "build_price must be a number", Field: "build_price"})
		return
	}
	fps, err := strconv.ParseFloat(query.Get("build_fps_1080p"), 64)
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, ErrorResponse{Error: "build_fps_1080p must be a number", Field: "build_fps_1080p"})
		return
	}

	result, err := h.service.Compare(r.Context(), price, fps)
	if err != nil {
		h.analysisError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

// decodeBody reads a JSON object, bounded by maxBodyBytes.
func (h *httpHandler) decodeBody(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errors.New("request body too large")
		}
		return nil, errors.New("request body must be a JSON object")
	}
	if raw == nil {
		return nil, errors.New("request body must be a JSON object")
	}
	return raw, nil
}

func (h *httpHandler) analysisError(w http.ResponseWriter, r *http.Request, err error) {
	var fieldErr *normalizer.FieldError
	switch {
	case errors.As(err, &fieldErr):
		h.fail(w, r, http.StatusBadRequest, ErrorResponse{Error: fieldErr.Error(), Field: fieldErr.Field})
	case errors.Is(err, services.ErrNotReady):
		h.fail(w, r, http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
	case errors.Is(err, engine.ErrInvariant):
		h.logger.Error("analysis invariant violated",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.Any("error", err))
		h.fail(w, r, http.StatusInternalServerError, ErrorResponse{Error: "analysis failed"})
	default:
		h.logger.Error("analysis failed",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.Any("error", err))
		h.fail(w, r, http.StatusInternalServerError, ErrorResponse{Error: "analysis failed"})
	}
}

func (h *httpHandler) fail(w http.ResponseWriter, r *http.Request, code int, body ErrorResponse) {
	render.Status(r, code)
	render.JSON(w, r, body)
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Debug("http request",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Int("status", ww.Status()),
					slog.Duration("duration", time.Since(start)),
					slog.String("request_id", middleware.GetReqID(r.Context())))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
