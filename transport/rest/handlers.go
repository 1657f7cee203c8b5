package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
)

var heartbeatInterval = 15 * time.Second

type sessionService interface {
	Start(ctx context.Context) (*entity.Session, error)
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	OnCellActivated(ctx context.Context, id string, cell int) (*entity.Session, error)
	Restart(ctx context.Context, id string) (*entity.Session, error)
	End(ctx context.Context, id string) error
}

type eventSource interface {
	Subscribe(ctx context.Context, sessionID string) (<-chan entity.StateChange, error)
}

type handlers struct {
	logger *slog.Logger

	sessions sessionService
	events   eventSource
}

type sessionResponse struct {
	ID        string         `json:"id"`
	Board     entity.Board   `json:"board"`
	HumanMark entity.Mark    `json:"human_mark"`
	AIMark    entity.Mark    `json:"ai_mark"`
	State     entity.State   `json:"state"`
	Outcome   entity.Outcome `json:"outcome"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func newSessionResponse(session *entity.Session) sessionResponse {
	return sessionResponse{
		ID:        session.ID,
		Board:     session.Board,
		HumanMark: session.HumanMark,
		AIMark:    session.AIMark,
		State:     session.State,
		Outcome:   session.Outcome(),
	}
}

func (that *handlers) start(w http.ResponseWriter, r *http.Request) {
	session, err := that.sessions.Start(r.Context())
	if err != nil {
		that.writeError(w, "start", err)
		return
	}

	that.writeJSON(w, http.StatusCreated, newSessionResponse(session))
}

func (that *handlers) get(w http.ResponseWriter, r *http.Request) {
	session, err := that.sessions.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, "get", err)
		return
	}

	that.writeJSON(w, http.StatusOK, newSessionResponse(session))
}

func (that *handlers) end(w http.ResponseWriter, r *http.Request) {
	if err := that.sessions.End(r.Context(), chi.URLParam(r, "id")); err != nil {
		that.writeError(w, "end", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *handlers) activateCell(w http.ResponseWriter, r *http.Request) {
	cell, err := strconv.Atoi(chi.URLParam(r, "cell"))
	if err != nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "cell must be an integer"})
		return
	}

	session, err := that.sessions.OnCellActivated(r.Context(), chi.URLParam(r, "id"), cell)
	if err != nil {
		that.writeError(w, "activateCell", err)
		return
	}

	that.writeJSON(w, http.StatusOK, newSessionResponse(session))
}

func (that *handlers) restart(w http.ResponseWriter, r *http.Request) {
	session, err := that.sessions.Restart(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, "restart", err)
		return
	}

	that.writeJSON(w, http.StatusOK, newSessionResponse(session))
}

// stream sends the current state, then every change, as server-sent events.
func (that *handlers) stream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	flusher, ok := w.(http.Flusher)
	if !ok {
		that.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "streaming unsupported"})
		return
	}

	// subscribe first so nothing between the snapshot and the stream is lost
	changes, err := that.events.Subscribe(ctx, id)
	if err != nil {
		that.writeError(w, "stream", err)
		return
	}

	session, err := that.sessions.GetByID(ctx, id)
	if err != nil {
		that.writeError(w, "stream", err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if err = writeEvent(w, session.Snapshot(entity.Empty, -1)); err != nil {
		return
	}
	flusher.Flush()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err = io.WriteString(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case change, ok := <-changes:
			if !ok {
				return
			}

			if err = writeEvent(w, &change); err != nil {
				that.logger.Debug("event stream closed", "sessionID", id, "error", err)
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w io.Writer, change *entity.StateChange) error {
	data, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to marshal state change: %w", err)
	}

	if _, err = fmt.Fprintf(w, "event: state\ndata: %s\n\n", data); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	return nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrInvalidCell):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrInvalidMove),
		errors.Is(err, apperror.ErrGameFinished),
		errors.Is(err, apperror.ErrNotYourTurn),
		errors.Is(err, apperror.ErrSessionConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (that *handlers) writeError(w http.ResponseWriter, method string, err error) {
	status := statusFor(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "method", method, "error", err)
		message = http.StatusText(status)
	}

	that.writeJSON(w, status, errorResponse{Error: message})
}

func (that *handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
