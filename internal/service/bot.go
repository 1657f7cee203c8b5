package service

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/tictactoe"
)

type BotService interface {
	MakeTurn(session *entity.Session) (int, error)
}

type botService struct{}

func NewBotService() BotService {
	return &botService{}
}

// MakeTurn - searches the best cell for the AI and applies it to the session.
func (that *botService) MakeTurn(session *entity.Session) (int, error) {
	cell, err := tictactoe.BestMove(&session.Board, session.AIMark)
	if err != nil {
		return -1, fmt.Errorf("failed to find bot move: %w", err)
	}

	if err = session.ApplyAIMove(cell); err != nil {
		return -1, fmt.Errorf("bot failed to make turn: %w", err)
	}

	return cell, nil
}
