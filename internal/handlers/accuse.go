package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/mystery-engine/internal/game"
)

// AccuseHandler serves POST /v1/accuse: the player's formal accusation.
type AccuseHandler struct {
	manager *game.Manager
	logger  *slog.Logger
}

func NewAccuseHandler(manager *game.Manager, logger *slog.Logger) *AccuseHandler {
	return &AccuseHandler{manager: manager, logger: logger}
}

func (h *AccuseHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req game.AccuseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.manager.Accuse(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, game.ErrGameNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, game.ErrGameSolved):
			writeError(w, http.StatusConflict, err.Error())
		default:
			h.logger.Error("accusation failed", "game_id", req.GameID, "error", err)
			writeError(w, http.StatusInternalServerError, "accusation failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}
