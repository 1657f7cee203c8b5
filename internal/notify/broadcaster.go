// Package notify fans state changes out to the parties watching a session.
package notify

import (
	"context"
	"log/slog"
	"slices"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
)

const subscriberBuffer = 16

type Listener interface {
	OnStateChanged(ctx context.Context, change *entity.StateChange)
}

// Multi calls every listener in order.
type Multi []Listener

func (that Multi) OnStateChanged(ctx context.Context, change *entity.StateChange) {
	for _, listener := range that {
		listener.OnStateChanged(ctx, change)
	}
}

type subscriber struct {
	id uint64
	ch chan entity.StateChange
}

// Broadcaster delivers state changes to in-process subscribers of a session.
type Broadcaster struct {
	logger *slog.Logger

	nextID      atomic.Uint64
	subscribers *xsync.MapOf[string, []*subscriber]
}

func NewBroadcaster(logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		logger:      logger.With("component", "broadcaster"),
		subscribers: xsync.NewMapOf[string, []*subscriber](),
	}
}

// Subscribe registers for changes of a session until ctx is done. The channel
// is never closed; readers stop on ctx.Done.
func (that *Broadcaster) Subscribe(ctx context.Context, sessionID string) (<-chan entity.StateChange, error) {
	sub := &subscriber{
		id: that.nextID.Add(1),
		ch: make(chan entity.StateChange, subscriberBuffer),
	}

	that.subscribers.Compute(sessionID, func(current []*subscriber, _ bool) ([]*subscriber, bool) {
		return append(slices.Clone(current), sub), false
	})

	go func() {
		<-ctx.Done()
		that.unsubscribe(sessionID, sub.id)
	}()

	return sub.ch, nil
}

func (that *Broadcaster) unsubscribe(sessionID string, id uint64) {
	that.subscribers.Compute(sessionID, func(current []*subscriber, _ bool) ([]*subscriber, bool) {
		rest := slices.DeleteFunc(slices.Clone(current), func(sub *subscriber) bool {
			return sub.id == id
		})
		return rest, len(rest) == 0
	})
}

// Subscribers returns the number of live subscriptions for a session.
func (that *Broadcaster) Subscribers(sessionID string) int {
	subs, _ := that.subscribers.Load(sessionID)
	return len(subs)
}

// OnStateChanged never blocks: a subscriber with a full buffer misses the change.
func (that *Broadcaster) OnStateChanged(_ context.Context, change *entity.StateChange) {
	subs, ok := that.subscribers.Load(change.SessionID)
	if !ok {
		return
	}

	for _, sub := range subs {
		select {
		case sub.ch <- *change:
		default:
			that.logger.Warn("subscriber is too slow, dropping state change", "sessionID", change.SessionID, "subscriber", sub.id)
		}
	}
}
