package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jwebster45206/mystery-engine/internal/game"
)

// GameHandler serves game lifecycle requests:
//
//	POST /v1/games       create a game for a case
//	GET  /v1/games       list game summaries
//	GET  /v1/games/{id}  fetch the latest committed state
type GameHandler struct {
	manager *game.Manager
	logger  *slog.Logger
}

func NewGameHandler(manager *game.Manager, logger *slog.Logger) *GameHandler {
	return &GameHandler{manager: manager, logger: logger}
}

type createGameRequest struct {
	CaseID string `json:"case_id"`
}

func (h *GameHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/games")
	id = strings.Trim(id, "/")

	switch {
	case r.Method == http.MethodPost && id == "":
		h.create(w, r)
	case r.Method == http.MethodGet && id == "":
		h.list(w, r)
	case r.Method == http.MethodGet:
		h.get(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *GameHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CaseID == "" {
		writeError(w, http.StatusBadRequest, "case_id is required")
		return
	}

	gs, err := h.manager.NewGame(r.Context(), req.CaseID)
	if err != nil {
		if errors.Is(err, game.ErrCaseNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.Error("failed to create game", "case_id", req.CaseID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create game")
		return
	}
	writeJSON(w, http.StatusCreated, gs)
}

func (h *GameHandler) list(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.manager.ListGames(r.Context())
	if err != nil {
		h.logger.Error("failed to list games", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list games")
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *GameHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	gameID, err := uuid.Parse(id)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}

	gs, err := h.manager.GetState(r.Context(), gameID)
	if err != nil {
		if errors.Is(err, game.ErrGameNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.Error("failed to load game", "game_id", gameID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load game")
		return
	}
	writeJSON(w, http.StatusOK, gs)
}
