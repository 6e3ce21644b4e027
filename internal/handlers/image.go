package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jwebster45206/mystery-engine/internal/game"
	"github.com/jwebster45206/mystery-engine/internal/services"
)

// ImageHandler serves GET /v1/image: a generated scene illustration.
// The prompt is assembled from the game's case atmosphere plus the
// requested location or NPC, so the same scene renders the same image
// via the cache.
type ImageHandler struct {
	manager *game.Manager
	images  services.ImageService
	logger  *slog.Logger
}

func NewImageHandler(manager *game.Manager, images services.ImageService, logger *slog.Logger) *ImageHandler {
	return &ImageHandler{manager: manager, images: images, logger: logger}
}

func (h *ImageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	gameID, err := uuid.Parse(r.URL.Query().Get("game_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid game_id")
		return
	}

	gs, err := h.manager.GetState(r.Context(), gameID)
	if err != nil {
		if errors.Is(err, game.ErrGameNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load game")
		return
	}

	def, err := h.manager.Case(gs.CaseID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load case")
		return
	}

	parts := []string{def.Setting, def.Atmosphere}
	if locID := r.URL.Query().Get("location_id"); locID != "" {
		loc, ok := gs.Location(locID)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown location_id")
			return
		}
		parts = append(parts, loc.Description)
	}
	if npcID := r.URL.Query().Get("npc_id"); npcID != "" {
		npc, ok := gs.NPC(npcID)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown npc_id")
			return
		}
		parts = append(parts, fmt.Sprintf("%s, %s", npc.Name, npc.Role))
	}
	if scene := r.URL.Query().Get("scene"); scene != "" {
		parts = append(parts, scene)
	}
	prompt := strings.Join(parts, ", ") + ", noir illustration, moody lighting"

	data, err := h.images.GenerateImage(r.Context(), prompt)
	if err != nil {
		h.logger.Error("image generation failed", "game_id", gameID, "error", err)
		writeError(w, http.StatusBadGateway, "image generation failed")
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := w.Write(data); err != nil {
		h.logger.Error("failed to write image response", "error", err)
	}
}
