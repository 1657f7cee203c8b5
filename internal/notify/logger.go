package notify

import (
	"context"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
)

// Logger records every state change at debug level.
type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger.With("component", "state-log")}
}

func (that *Logger) OnStateChanged(ctx context.Context, change *entity.StateChange) {
	that.logger.DebugContext(ctx, "state changed",
		"sessionID", change.SessionID,
		"state", change.State,
		"outcome", change.Outcome.String(),
		"mover", change.Mover.String(),
		"cell", change.Cell,
	)
}
