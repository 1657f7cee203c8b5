package service

import (
	"testing"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBotService_MakeTurn(t *testing.T) {
	t.Run("Blocks the human's winning line", func(t *testing.T) {
		// Given: X threatens 3,4,5 and the AI is to move
		session, err := entity.NewSession("123", entity.X)
		require.NoError(t, err)
		session.Board, err = entity.ParseBoard([entity.BoardSize]string{"O", "", "", "", "X", "X", "", "", "O"})
		require.NoError(t, err)
		session.State = entity.StateAITurn

		// When: the bot makes its turn
		cell, err := NewBotService().MakeTurn(session)

		// Then: it blocks at 3 and hands the turn back
		require.NoError(t, err)
		assert.Equal(t, 3, cell)
		assert.Equal(t, entity.O, session.Board[3])
		assert.Equal(t, entity.StatePlayerTurn, session.State)
	})

	t.Run("Error on full board", func(t *testing.T) {
		// Given: a drawn board that still claims to wait for the AI
		session, err := entity.NewSession("123", entity.X)
		require.NoError(t, err)
		session.Board, err = entity.ParseBoard([entity.BoardSize]string{"X", "O", "X", "X", "O", "O", "O", "X", "X"})
		require.NoError(t, err)
		session.State = entity.StateAITurn

		// When: the bot makes its turn
		_, err = NewBotService().MakeTurn(session)

		// Then: ErrNoLegalMove is returned
		require.ErrorIs(t, err, apperror.ErrNoLegalMove)
	})

	t.Run("Error when it is not the AI's turn", func(t *testing.T) {
		// Given: a new session waiting for the human
		session, err := entity.NewSession("123", entity.X)
		require.NoError(t, err)

		// When: the bot tries to move
		_, err = NewBotService().MakeTurn(session)

		// Then: ErrNotYourTurn is returned and the board is untouched
		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		assert.Equal(t, entity.Board{}, session.Board)
	})
}
