package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
)

type State string

const (
	StatePlayerTurn State = "player_turn"
	StateAITurn     State = "ai_turn"
	StateXWon       State = "x_won"
	StateOWon       State = "o_won"
	StateDraw       State = "draw"
)

// Session is one human-vs-AI game. The Board is the only source of truth for cell contents.
type Session struct {
	ID        string `json:"id"`
	Board     Board  `json:"board"`
	HumanMark Mark   `json:"human_mark"`
	AIMark    Mark   `json:"ai_mark"`
	State     State  `json:"state"`
	// Version counts saves; a save must start from the stored version.
	Version int `json:"version"`
}

// NewSession creates a session with a cleared board. X always moves first, so
// when the AI owns X the session starts in StateAITurn.
func NewSession(id string, humanMark Mark) (*Session, error) {
	if !humanMark.IsSide() {
		return nil, fmt.Errorf("%w: human mark %d", ErrInvalidMark, humanMark)
	}

	session := &Session{
		ID:        id,
		HumanMark: humanMark,
		AIMark:    humanMark.Opponent(),
	}
	session.Restart()

	return session, nil
}

func (that *Session) Outcome() Outcome {
	return that.Board.Outcome()
}

func (that *Session) IsFinished() bool {
	switch that.State {
	case StateXWon, StateOWon, StateDraw:
		return true
	default:
		return false
	}
}

// Restart clears the board and hands the first move to whoever owns X.
func (that *Session) Restart() {
	that.Board.Clear()

	if that.HumanMark == X {
		that.State = StatePlayerTurn
	} else {
		that.State = StateAITurn
	}
}

// ApplyHumanMove places the human's mark and advances the state machine.
func (that *Session) ApplyHumanMove(cell int) error {
	if err := that.confirmTurn(StatePlayerTurn); err != nil {
		return err
	}

	if err := that.Board.Place(cell, that.HumanMark); err != nil {
		return err
	}

	that.advance(StateAITurn)

	return nil
}

// ApplyAIMove places the AI's mark and advances the state machine.
func (that *Session) ApplyAIMove(cell int) error {
	if err := that.confirmTurn(StateAITurn); err != nil {
		return err
	}

	if err := that.Board.Place(cell, that.AIMark); err != nil {
		return err
	}

	that.advance(StatePlayerTurn)

	return nil
}

func (that *Session) confirmTurn(expected State) error {
	if that.IsFinished() {
		return apperror.ErrGameFinished
	}

	if that.State != expected {
		return fmt.Errorf("%w: state %s", apperror.ErrNotYourTurn, that.State)
	}

	return nil
}

func (that *Session) advance(next State) {
	switch that.Outcome() {
	case XWins:
		that.State = StateXWon
	case OWins:
		that.State = StateOWon
	case Draw:
		that.State = StateDraw
	default:
		that.State = next
	}
}
