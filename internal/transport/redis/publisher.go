package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
)

// Publisher sends state changes over Redis pub/sub so that any instance
// sharing the Redis server can stream them.
type Publisher struct {
	logger *slog.Logger
	client *redis.Client
}

func NewPublisher(logger *slog.Logger, client *redis.Client) *Publisher {
	return &Publisher{
		logger: logger.With("component", "redis-publisher"),
		client: client,
	}
}

func channelName(sessionID string) string {
	return "session:" + sessionID + ":state"
}

// OnStateChanged - publishes the change as JSON. Failures are logged, the game goes on.
func (that *Publisher) OnStateChanged(ctx context.Context, change *entity.StateChange) {
	log := that.logger.With("method", "OnStateChanged", "sessionID", change.SessionID)

	changeJSON, err := json.Marshal(change)
	if err != nil {
		log.Error("failed to marshal state change", "error", err)
		return
	}

	if err = that.client.Publish(ctx, channelName(change.SessionID), changeJSON).Err(); err != nil {
		log.Error("failed to publish state change", "error", err)
	}
}

// Subscribe streams the changes of a session until ctx is done, then closes the channel.
func (that *Publisher) Subscribe(ctx context.Context, sessionID string) (<-chan entity.StateChange, error) {
	pubsub := that.client.Subscribe(ctx, channelName(sessionID))

	// wait for the subscription to be confirmed so no publish is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to session %s: %w", sessionID, err)
	}

	changes := make(chan entity.StateChange)

	go func() {
		defer close(changes)
		defer pubsub.Close()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}

				var change entity.StateChange
				if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
					that.logger.Error("failed to unmarshal state change", "sessionID", sessionID, "error", err)
					continue
				}

				select {
				case changes <- change:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return changes, nil
}
