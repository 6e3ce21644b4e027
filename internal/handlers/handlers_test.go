package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/mystery-engine/internal/game"
	"github.com/jwebster45206/mystery-engine/internal/services"
	"github.com/jwebster45206/mystery-engine/internal/storage"
	"github.com/jwebster45206/mystery-engine/pkg/casefile"
	"github.com/jwebster45206/mystery-engine/pkg/chat"
	"github.com/jwebster45206/mystery-engine/pkg/state"
)

func handlerFixture(mock *services.MockLLMService) *game.Manager {
	def := &casefile.CaseDefinition{
		ID:       "the-locked-gallery",
		Title:    "The Locked Gallery",
		Synopsis: "A Vermeer vanishes.",
		Setting:  "A 1951 gallery",
		Solution: "Edith Calloway cut the painting free.",
		NPCs: []casefile.NPC{
			{ID: "edith", Name: "Edith Calloway", Role: "Restorer", LocationID: "main-gallery", TrustLevel: 50, Mood: "composed"},
		},
		Locations: []casefile.Location{{ID: "main-gallery", Name: "Main Gallery"}},
		Clues:     []casefile.Clue{{ID: "cut-frame", Name: "Cut Frame", SourceID: "main-gallery"}},
	}
	cases := map[string]*casefile.CaseDefinition{def.ID: def}
	return game.NewManager(cases, storage.NewMemoryStore(), mock, slog.Default())
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	return v
}

func TestGameHandler_Create(t *testing.T) {
	h := NewGameHandler(handlerFixture(services.NewMockLLMService()), slog.Default())

	t.Run("created", func(t *testing.T) {
		w := postJSON(t, h, "/v1/games", map[string]string{"case_id": "the-locked-gallery"})
		require.Equal(t, http.StatusCreated, w.Code)

		gs := decodeBody[state.GameState](t, w)
		assert.Equal(t, "the-locked-gallery", gs.CaseID)
		assert.NotEqual(t, uuid.Nil, gs.ID)
		assert.Equal(t, 0, gs.Turn)
	})

	t.Run("unknown case", func(t *testing.T) {
		w := postJSON(t, h, "/v1/games", map[string]string{"case_id": "no-such-case"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("missing case_id", func(t *testing.T) {
		w := postJSON(t, h, "/v1/games", map[string]string{})
		require.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeBody[ErrorResponse](t, w)
		assert.Contains(t, resp.Error, "case_id is required")
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/games", bytes.NewReader([]byte("{not json")))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGameHandler_Get(t *testing.T) {
	manager := handlerFixture(services.NewMockLLMService())
	h := NewGameHandler(manager, slog.Default())

	gs, err := manager.NewGame(context.Background(), "the-locked-gallery")
	require.NoError(t, err)

	t.Run("found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/games/"+gs.ID.String(), nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		loaded := decodeBody[state.GameState](t, w)
		assert.Equal(t, gs.ID, loaded.ID)
	})

	t.Run("invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/games/not-a-uuid", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/games/"+uuid.NewString(), nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestGameHandler_List(t *testing.T) {
	manager := handlerFixture(services.NewMockLLMService())
	h := NewGameHandler(manager, slog.Default())

	_, err := manager.NewGame(context.Background(), "the-locked-gallery")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/games", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	summaries := decodeBody[[]game.GameSummary](t, w)
	assert.Len(t, summaries, 1)
}

func TestGameHandler_MethodNotAllowed(t *testing.T) {
	h := NewGameHandler(handlerFixture(services.NewMockLLMService()), slog.Default())
	req := httptest.NewRequest(http.MethodDelete, "/v1/games", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestChatHandler(t *testing.T) {
	mock := services.NewMockLLMService()
	mock.Responses = []string{`<dialogue>I was restoring the frame all evening.</dialogue>
<state_changes>{"trust_change":{"edith":1}}</state_changes>`}
	manager := handlerFixture(mock)
	h := NewChatHandler(manager, slog.Default())

	gs, err := manager.NewGame(context.Background(), "the-locked-gallery")
	require.NoError(t, err)

	t.Run("turn", func(t *testing.T) {
		w := postJSON(t, h, "/v1/chat", chat.Request{
			GameID:  gs.ID,
			Message: "Where were you last night?",
		})
		require.Equal(t, http.StatusOK, w.Code)

		resp := decodeBody[chat.Response](t, w)
		assert.Equal(t, "I was restoring the frame all evening.", resp.Dialogue)
		assert.Equal(t, "edith", resp.Message.NPCID)
	})

	t.Run("missing message", func(t *testing.T) {
		w := postJSON(t, h, "/v1/chat", chat.Request{GameID: gs.ID})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown game", func(t *testing.T) {
		w := postJSON(t, h, "/v1/chat", chat.Request{GameID: uuid.New(), Message: "hello"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("get rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/chat", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

func TestAccuseHandler(t *testing.T) {
	manager := handlerFixture(services.NewMockLLMService())
	h := NewAccuseHandler(manager, slog.Default())

	gs, err := manager.NewGame(context.Background(), "the-locked-gallery")
	require.NoError(t, err)

	t.Run("missing suspect", func(t *testing.T) {
		w := postJSON(t, h, "/v1/accuse", game.AccuseRequest{GameID: gs.ID})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("wrong suspect fails", func(t *testing.T) {
		w := postJSON(t, h, "/v1/accuse", game.AccuseRequest{GameID: gs.ID, SuspectNPCID: "phantom"})
		require.Equal(t, http.StatusOK, w.Code)
		result := decodeBody[game.AccuseResult](t, w)
		assert.False(t, result.Success)
	})

	t.Run("correct suspect solves", func(t *testing.T) {
		w := postJSON(t, h, "/v1/accuse", game.AccuseRequest{GameID: gs.ID, SuspectNPCID: "edith"})
		require.Equal(t, http.StatusOK, w.Code)
		result := decodeBody[game.AccuseResult](t, w)
		assert.True(t, result.Success)
	})

	t.Run("solved game conflicts", func(t *testing.T) {
		w := postJSON(t, h, "/v1/accuse", game.AccuseRequest{GameID: gs.ID, SuspectNPCID: "edith"})
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestCasesHandler(t *testing.T) {
	h := NewCasesHandler(handlerFixture(services.NewMockLLMService()), slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/v1/cases", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	summaries := decodeBody[[]game.CaseSummary](t, w)
	require.Len(t, summaries, 1)
	assert.Equal(t, "the-locked-gallery", summaries[0].ID)
	assert.False(t, summaries[0].Emergent)
}

type failingStore struct {
	storage.Store
}

func (f *failingStore) Ping(ctx context.Context) error {
	return errors.New("connection refused")
}

func TestHealthHandler(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		h := NewHealthHandler(storage.NewMemoryStore(), slog.Default())
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeBody[map[string]string](t, w)
		assert.Equal(t, "ok", resp["status"])
		assert.Equal(t, "ok", resp["storage"])
	})

	t.Run("degraded", func(t *testing.T) {
		h := NewHealthHandler(&failingStore{Store: storage.NewMemoryStore()}, slog.Default())
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		require.Equal(t, http.StatusServiceUnavailable, w.Code)
		resp := decodeBody[map[string]string](t, w)
		assert.Equal(t, "degraded", resp["status"])
		assert.Equal(t, "unreachable", resp["storage"])
	})
}
