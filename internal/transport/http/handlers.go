package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/joshdurbin/hashlink/internal/domain"
	"github.com/joshdurbin/hashlink/internal/service"
)

// maxBodyBytes bounds a POST /shorten body; URLs are capped well below it
const maxBodyBytes = 64 << 10

// Handler holds the HTTP handlers for the URL shortener
type Handler struct {
	shortener service.Shortener
	baseURL   string
	logger    *zap.Logger
}

// NewHandler creates a new HTTP handler. Short URLs are built as baseURL + "/" + code.
func NewHandler(shortener service.Shortener, baseURL string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		shortener: shortener,
		baseURL:   strings.TrimRight(baseURL, "/"),
		logger:    logger,
	}
}

// Ping handles GET /ping
func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("pong"))
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.shortener.Ping(r.Context()); err != nil {
		h.logger.Error("health check failed", zap.Error(err))
		h.writeJSON(w, http.StatusServiceUnavailable, domain.ErrorResponse{Error: "Database unavailable"})
		return
	}
	h.writeJSON(w, http.StatusOK, domain.HealthResponse{Status: "ok"})
}

// Shorten handles POST /shorten
func (h *Handler) Shorten(w http.ResponseWriter, r *http.Request) {
	var req domain.ShortenRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.logger.Debug("invalid JSON in shorten request", zap.Error(err))
		h.writeJSON(w, http.StatusBadRequest, domain.ErrorResponse{Error: "Invalid JSON"})
		return
	}

	result, err := h.shortener.Shorten(r.Context(), req.URL)
	if err != nil {
		h.writeError(w, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	h.writeJSON(w, status, domain.ShortenResponse{
		ShortCode:   result.Mapping.ShortCode,
		ShortURL:    h.baseURL + "/" + result.Mapping.ShortCode,
		OriginalURL: result.Mapping.OriginalURL,
	})
}

// Redirect handles GET /{code}
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	shortCode := r.PathValue("code")

	originalURL, err := h.shortener.Resolve(r.Context(), shortCode)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.logger.Debug("redirecting", zap.String("short_code", shortCode), zap.String("url", originalURL))
	http.Redirect(w, r, originalURL, http.StatusPermanentRedirect)
}

// Info handles GET /api/urls/{code}
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	mapping, err := h.shortener.Lookup(r.Context(), r.PathValue("code"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, mapping)
}

// writeError maps a service error to its status code and public message
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status, message := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.Error(err))
	}
	h.writeJSON(w, status, domain.ErrorResponse{Error: message})
}

// StatusFor returns the HTTP status and client-facing message for err
func StatusFor(err error) (int, string) {
	var vErr *domain.ValidationError
	var sErr *domain.StoreError

	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest, vErr.Reason
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "Short code not found"
	case errors.As(err, &sErr):
		return http.StatusInternalServerError, "Database error"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Warn("failed to encode response", zap.Error(err))
	}
}
