package audit

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/craftline-erp/craftline/internal/platform/httpx"
)

// Handler manages audit trail HTTP endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler creates a new handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.recent)
	r.Get("/{entity}/{entityID}", h.trail)
}

func (h *Handler) recent(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.Recent(r.Context(), queryLimit(r))
	if err != nil {
		h.logger.Error("list audit entries", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) trail(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.Trail(r.Context(), chi.URLParam(r, "entity"), chi.URLParam(r, "entityID"), queryLimit(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func queryLimit(r *http.Request) int {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return limit
}
