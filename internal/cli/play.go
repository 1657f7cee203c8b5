// Package cli plays a session from a terminal: one line per command.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/render"
)

const help = "enter a cell 0-8, r to restart, q to quit"

type sessionService interface {
	Start(ctx context.Context) (*entity.Session, error)
	OnCellActivated(ctx context.Context, id string, cell int) (*entity.Session, error)
	Restart(ctx context.Context, id string) (*entity.Session, error)
	End(ctx context.Context, id string) error
}

type Player struct {
	logger   *slog.Logger
	sessions sessionService
	renderer *render.Renderer
}

func NewPlayer(logger *slog.Logger, sessions sessionService, renderer *render.Renderer) *Player {
	return &Player{
		logger:   logger.With("component", "cli"),
		sessions: sessions,
		renderer: renderer,
	}
}

// Run plays until "q", end of input or ctx is done, whichever comes first.
func (that *Player) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	session, err := that.sessions.Start(ctx)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	defer func() {
		if err := that.sessions.End(context.WithoutCancel(ctx), session.ID); err != nil {
			that.logger.Warn("failed to end session", "sessionID", session.ID, "error", err)
		}
	}()

	fmt.Fprintf(out, "%s\n%s\n> ", that.renderer.Session(session), help)

	lines, readErr := readLines(ctx, in)

	for {
		var (
			command string
			ok      bool
		)

		select {
		case <-ctx.Done():
			return nil
		case command, ok = <-lines:
		}

		if !ok {
			select {
			case err = <-readErr:
				if err != nil {
					return fmt.Errorf("failed to read input: %w", err)
				}
			default:
			}

			return nil
		}

		command = strings.TrimSpace(command)

		switch command {
		case "q", "quit":
			return nil
		case "":
			fmt.Fprint(out, "> ")
			continue
		case "r", "restart":
			session, err = that.restart(ctx, session)
		default:
			session, err = that.move(ctx, session, command)
		}

		if err != nil {
			if !isUserError(err) {
				return err
			}
			fmt.Fprintf(out, "%v\n> ", err)
			continue
		}

		fmt.Fprint(out, that.renderer.Session(session))
		if session.IsFinished() {
			fmt.Fprintln(out, "r to restart, q to quit")
		}
		fmt.Fprint(out, "> ")
	}
}

// readLines scans in on its own goroutine so that Run can stop on ctx while a
// read is pending. The goroutine stays blocked in Read until in returns.
func readLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}

		readErr <- scanner.Err()
	}()

	return lines, readErr
}

func (that *Player) move(ctx context.Context, session *entity.Session, command string) (*entity.Session, error) {
	cell, err := strconv.Atoi(command)
	if err != nil {
		return session, fmt.Errorf("%w: %q is not a cell (%s)", apperror.ErrInvalidMove, command, help)
	}

	updated, err := that.sessions.OnCellActivated(ctx, session.ID, cell)
	if err != nil {
		return session, err
	}

	return updated, nil
}

func (that *Player) restart(ctx context.Context, session *entity.Session) (*entity.Session, error) {
	updated, err := that.sessions.Restart(ctx, session.ID)
	if err != nil {
		return session, err
	}

	return updated, nil
}

func isUserError(err error) bool {
	return errors.Is(err, apperror.ErrInvalidMove) ||
		errors.Is(err, apperror.ErrGameFinished) ||
		errors.Is(err, apperror.ErrNotYourTurn) ||
		errors.Is(err, apperror.ErrSessionConflict)
}
