package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
)

type SessionService interface {
	Start(ctx context.Context) (*entity.Session, error)
	GetByID(ctx context.Context, id string) (*entity.Session, error)

	OnCellActivated(ctx context.Context, id string, cell int) (*entity.Session, error)
	Restart(ctx context.Context, id string) (*entity.Session, error)

	End(ctx context.Context, id string) error
}

type sessionRepo interface {
	Save(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

type stateListener interface {
	OnStateChanged(ctx context.Context, change *entity.StateChange)
}

type sessionService struct {
	logger *slog.Logger

	humanMark entity.Mark

	sessionRepo sessionRepo
	botService  BotService
	listener    stateListener

	// locks serializes read, change and save per session id.
	locks *xsync.MapOf[string, *sync.Mutex]
}

func NewSessionService(logger *slog.Logger, humanMark entity.Mark, sessionRepo sessionRepo, botService BotService, listener stateListener) SessionService {
	return &sessionService{
		logger:      logger.With("component", "session-service"),
		humanMark:   humanMark,
		sessionRepo: sessionRepo,
		botService:  botService,
		listener:    listener,
		locks:       xsync.NewMapOf[string, *sync.Mutex](),
	}
}

// lock holds the session's mutex until the returned func is called.
func (that *sessionService) lock(id string) func() {
	mu, _ := that.locks.LoadOrCompute(id, func() *sync.Mutex {
		return &sync.Mutex{}
	})
	mu.Lock()

	return mu.Unlock
}

func (that *sessionService) Start(ctx context.Context) (*entity.Session, error) {
	session, err := entity.NewSession(uuid.NewString(), that.humanMark)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	changes := []*entity.StateChange{session.Snapshot(entity.Empty, -1)}

	aiChanges, err := that.playAI(session)
	if err != nil {
		return nil, err
	}

	if err = that.save(ctx, session, append(changes, aiChanges...)); err != nil {
		return nil, err
	}

	that.logger.Info("session started", "sessionID", session.ID, "humanMark", session.HumanMark.String())

	return session, nil
}

func (that *sessionService) GetByID(ctx context.Context, id string) (*entity.Session, error) {
	session, err := that.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

// OnCellActivated applies the human move at cell and, while the game is still
// in progress, answers with the AI move. A rejected move leaves the session unchanged.
func (that *sessionService) OnCellActivated(ctx context.Context, id string, cell int) (*entity.Session, error) {
	log := that.logger.With("method", "OnCellActivated", "sessionID", id, "cell", cell)

	defer that.lock(id)()

	session, err := that.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err = session.ApplyHumanMove(cell); err != nil {
		log.Debug("move rejected", "error", err)
		return session, fmt.Errorf("failed to make turn: %w", err)
	}

	changes := []*entity.StateChange{session.Snapshot(session.HumanMark, cell)}

	aiChanges, err := that.playAI(session)
	if err != nil {
		return nil, err
	}

	if err = that.save(ctx, session, append(changes, aiChanges...)); err != nil {
		return nil, err
	}

	if session.IsFinished() {
		log.Info("game finished", "state", session.State)
	}

	return session, nil
}

func (that *sessionService) Restart(ctx context.Context, id string) (*entity.Session, error) {
	defer that.lock(id)()

	session, err := that.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	session.Restart()

	changes := []*entity.StateChange{session.Snapshot(entity.Empty, -1)}

	aiChanges, err := that.playAI(session)
	if err != nil {
		return nil, err
	}

	if err = that.save(ctx, session, append(changes, aiChanges...)); err != nil {
		return nil, err
	}

	that.logger.Info("session restarted", "sessionID", id)

	return session, nil
}

func (that *sessionService) End(ctx context.Context, id string) error {
	defer that.lock(id)()
	defer that.locks.Delete(id)

	if err := that.sessionRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	that.logger.Info("session ended", "sessionID", id)

	return nil
}

// playAI makes the AI move when the session is waiting for it.
func (that *sessionService) playAI(session *entity.Session) ([]*entity.StateChange, error) {
	if session.State != entity.StateAITurn {
		return nil, nil
	}

	cell, err := that.botService.MakeTurn(session)
	if err != nil {
		return nil, fmt.Errorf("failed to make AI turn: %w", err)
	}

	that.logger.Debug("AI moved", "sessionID", session.ID, "cell", cell)

	return []*entity.StateChange{session.Snapshot(session.AIMark, cell)}, nil
}

func (that *sessionService) save(ctx context.Context, session *entity.Session, changes []*entity.StateChange) error {
	if err := that.sessionRepo.Save(ctx, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	for _, change := range changes {
		that.listener.OnStateChanged(ctx, change)
	}

	return nil
}
