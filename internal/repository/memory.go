package repository

import (
	"context"
	"fmt"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
)

type memorySession struct {
	sessions *xsync.MapOf[string, entity.Session]
}

// NewMemorySessionRepository keeps sessions in process. Values are copied in
// and out, so callers never share a session with the store.
func NewMemorySessionRepository() SessionRepository {
	return &memorySession{
		sessions: xsync.NewMapOf[string, entity.Session](),
	}
}

func (that *memorySession) Save(_ context.Context, session *entity.Session) error {
	var err error

	that.sessions.Compute(session.ID, func(current entity.Session, loaded bool) (entity.Session, bool) {
		if err = checkVersion(session, current, loaded); err != nil {
			return current, !loaded
		}

		next := *session
		next.Version++

		return next, false
	})

	if err != nil {
		return err
	}

	session.Version++

	return nil
}

func (that *memorySession) GetByID(_ context.Context, id string) (*entity.Session, error) {
	session, ok := that.sessions.Load(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, id)
	}

	return &session, nil
}

func (that *memorySession) DeleteByID(_ context.Context, id string) error {
	if _, ok := that.sessions.LoadAndDelete(id); !ok {
		return fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, id)
	}

	return nil
}
