package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/mystery-engine/internal/game"
	"github.com/jwebster45206/mystery-engine/pkg/chat"
)

// ChatHandler serves POST /v1/chat: one player turn.
type ChatHandler struct {
	manager *game.Manager
	logger  *slog.Logger
}

func NewChatHandler(manager *game.Manager, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{manager: manager, logger: logger}
}

func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req chat.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.manager.Chat(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, game.ErrGameNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, game.ErrGameSolved):
			writeError(w, http.StatusConflict, err.Error())
		default:
			h.logger.Error("chat turn failed", "game_id", req.GameID, "error", err)
			writeError(w, http.StatusInternalServerError, "chat turn failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
