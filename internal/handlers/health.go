package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jwebster45206/mystery-engine/internal/storage"
)

// HealthHandler reports service liveness and storage reachability.
type HealthHandler struct {
	store  storage.Store
	logger *slog.Logger
}

func NewHealthHandler(store storage.Store, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{store: store, logger: logger}
}

type healthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	resp := healthResponse{Status: "ok", Storage: "ok"}
	status := http.StatusOK
	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.Error("storage ping failed", "error", err)
		resp.Status = "degraded"
		resp.Storage = "unreachable"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
