package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jwebster45206/mystery-engine/internal/game"
)

// CasesHandler serves GET /v1/cases: the loaded case catalog.
type CasesHandler struct {
	manager *game.Manager
	logger  *slog.Logger
}

func NewCasesHandler(manager *game.Manager, logger *slog.Logger) *CasesHandler {
	return &CasesHandler{manager: manager, logger: logger}
}

func (h *CasesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, h.manager.ListCases())
}
