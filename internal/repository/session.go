package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
)

const sessionKeyPrefix = "session:"

// SessionRepository - Save only succeeds when session.Version matches the stored
// version, and bumps it on success. New sessions start at version 0.
type SessionRepository interface {
	Save(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

type dbSession struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionRepository stores sessions as JSON. Every save refreshes the ttl; zero disables expiry.
func NewSessionRepository(client *redis.Client, ttl time.Duration) SessionRepository {
	return &dbSession{
		client: client,
		ttl:    ttl,
	}
}

func (that *dbSession) Save(ctx context.Context, session *entity.Session) error {
	key := sessionKeyPrefix + session.ID

	next := *session
	next.Version++

	sessionJSON, err := json.Marshal(&next)
	if err != nil {
		return fmt.Errorf("could not marshal session: %w", err)
	}

	err = that.client.Watch(ctx, func(tx *redis.Tx) error {
		current, loaded, err := readSession(ctx, tx, key)
		if err != nil {
			return err
		}

		if err = checkVersion(session, current, loaded); err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, sessionJSON, that.ttl)
			return nil
		})

		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("%w: %s", apperror.ErrSessionConflict, session.ID)
	}

	if err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}

	session.Version = next.Version

	return nil
}

func readSession(ctx context.Context, tx *redis.Tx, key string) (entity.Session, bool, error) {
	var session entity.Session

	response, err := tx.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return session, false, nil
	}

	if err != nil {
		return session, false, fmt.Errorf("failed to get session: %w", err)
	}

	if err = json.Unmarshal(response, &session); err != nil {
		return session, false, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return session, true, nil
}

// checkVersion - a session read at version N may only replace version N. A
// missing session may only be created at version 0.
func checkVersion(session *entity.Session, current entity.Session, loaded bool) error {
	if !loaded {
		if session.Version != 0 {
			return fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, session.ID)
		}

		return nil
	}

	if current.Version != session.Version {
		return fmt.Errorf("%w: %s has version %d, saving from %d",
			apperror.ErrSessionConflict, session.ID, current.Version, session.Version)
	}

	return nil
}

func (that *dbSession) GetByID(ctx context.Context, id string) (*entity.Session, error) {
	response, err := that.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, id)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get session by id: %w", err)
	}

	var session entity.Session
	if err = json.Unmarshal(response, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}

func (that *dbSession) DeleteByID(ctx context.Context, id string) error {
	deleted, err := that.client.Del(ctx, sessionKeyPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session by id: %w", err)
	}

	if deleted == 0 {
		return fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, id)
	}

	return nil
}
