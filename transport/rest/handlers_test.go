package rest

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/notify"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/repository"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	broadcaster := notify.NewBroadcaster(logger)
	sessions := service.NewSessionService(logger, entity.X, repository.NewMemorySessionRepository(), service.NewBotService(), broadcaster)

	return NewRouter(logger, sessions, broadcaster)
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	return rr
}

func decodeSession(t *testing.T, rr *httptest.ResponseRecorder) sessionResponse {
	t.Helper()

	var resp sessionResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))

	return resp
}

func startSession(t *testing.T, h http.Handler) sessionResponse {
	t.Helper()

	rr := do(t, h, http.MethodPost, "/sessions")
	require.Equal(t, http.StatusCreated, rr.Code)

	return decodeSession(t, rr)
}

func TestPing(t *testing.T) {
	rr := do(t, newTestRouter(t), http.MethodGet, "/ping")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "pong", rr.Body.String())
}

func TestStartAndGetSession(t *testing.T) {
	h := newTestRouter(t)

	// When: a session is started
	created := startSession(t, h)

	// Then: it waits for the player on an empty board
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, entity.StatePlayerTurn, created.State)
	assert.Equal(t, entity.InProgress, created.Outcome)
	assert.Equal(t, entity.X, created.HumanMark)
	assert.Equal(t, entity.O, created.AIMark)

	// And: it can be read back
	rr := do(t, h, http.MethodGet, "/sessions/"+created.ID)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, created, decodeSession(t, rr))
}

func TestActivateCell(t *testing.T) {
	t.Run("Human move is answered by the AI", func(t *testing.T) {
		h := newTestRouter(t)
		created := startSession(t, h)

		// When: the human plays the center
		rr := do(t, h, http.MethodPost, "/sessions/"+created.ID+"/cells/4")

		// Then: both moves are on the board
		require.Equal(t, http.StatusOK, rr.Code)
		resp := decodeSession(t, rr)
		assert.Equal(t, entity.X, resp.Board[4])
		assert.Len(t, resp.Board.EmptyCells(), 7)
		assert.Equal(t, entity.StatePlayerTurn, resp.State)
	})

	t.Run("Occupied cell conflicts", func(t *testing.T) {
		h := newTestRouter(t)
		created := startSession(t, h)
		require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/sessions/"+created.ID+"/cells/4").Code)

		rr := do(t, h, http.MethodPost, "/sessions/"+created.ID+"/cells/4")

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Contains(t, rr.Body.String(), "occupied")
	})

	t.Run("Out of range cell is a bad request", func(t *testing.T) {
		h := newTestRouter(t)
		created := startSession(t, h)

		assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/sessions/"+created.ID+"/cells/9").Code)
		assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/sessions/"+created.ID+"/cells/abc").Code)
	})

	t.Run("Unknown session is not found", func(t *testing.T) {
		h := newTestRouter(t)

		rr := do(t, h, http.MethodPost, "/sessions/missing/cells/0")

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestRestartAndEnd(t *testing.T) {
	h := newTestRouter(t)
	created := startSession(t, h)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/sessions/"+created.ID+"/cells/4").Code)

	// When: the session is restarted
	rr := do(t, h, http.MethodPost, "/sessions/"+created.ID+"/restart")

	// Then: the board is empty again
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, entity.Board{}, decodeSession(t, rr).Board)

	// When: the session is ended
	require.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/sessions/"+created.ID).Code)

	// Then: it is gone
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/sessions/"+created.ID).Code)
}

func readEvent(t *testing.T, reader *bufio.Reader) entity.StateChange {
	t.Helper()

	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)

		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}

		var change entity.StateChange
		require.NoError(t, json.Unmarshal([]byte(data), &change))

		return change
	}
}

func TestStreamEvents(t *testing.T) {
	h := newTestRouter(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	created := startSession(t, h)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Given: a client streaming the session's events
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/sessions/"+created.ID+"/events", nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)

	// Then: the current state comes first
	initial := readEvent(t, reader)
	assert.Equal(t, created.ID, initial.SessionID)
	assert.Equal(t, entity.StatePlayerTurn, initial.State)

	// When: the human plays
	move, err := http.NewRequestWithContext(ctx, http.MethodPost, srv.URL+"/sessions/"+created.ID+"/cells/4", nil)
	require.NoError(t, err)
	moveResp, err := srv.Client().Do(move)
	require.NoError(t, err)
	require.NoError(t, moveResp.Body.Close())
	require.Equal(t, http.StatusOK, moveResp.StatusCode)

	// Then: the human half-move and the AI answer are streamed in order
	human := readEvent(t, reader)
	assert.Equal(t, entity.X, human.Mover)
	assert.Equal(t, 4, human.Cell)

	ai := readEvent(t, reader)
	assert.Equal(t, entity.O, ai.Mover)
	assert.Equal(t, entity.StatePlayerTurn, ai.State)
}

func TestStreamEvents_UnknownSession(t *testing.T) {
	rr := do(t, newTestRouter(t), http.MethodGet, "/sessions/missing/events")

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
