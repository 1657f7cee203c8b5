package entity

import (
	"testing"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession(t *testing.T) {
	t.Run("Human as X starts on the player's turn", func(t *testing.T) {
		// When: a session is created with the human owning X
		session, err := NewSession("123", X)
		require.NoError(t, err)

		// Then: the session matches the expected initial state
		expected := &Session{
			ID:        "123",
			HumanMark: X,
			AIMark:    O,
			State:     StatePlayerTurn,
		}
		require.Equal(t, expected, session)
	})

	t.Run("Human as O hands the first move to the AI", func(t *testing.T) {
		// When: a session is created with the human owning O
		session, err := NewSession("123", O)
		require.NoError(t, err)

		// Then: the AI owns X and moves first
		assert.Equal(t, X, session.AIMark)
		assert.Equal(t, StateAITurn, session.State)
	})

	t.Run("Error on empty human mark", func(t *testing.T) {
		_, err := NewSession("123", Empty)

		require.ErrorIs(t, err, ErrInvalidMark)
	})
}

func TestSession_StateMachine(t *testing.T) {
	t.Run("Human move hands the turn to the AI and back", func(t *testing.T) {
		// Given: a new session
		session, err := NewSession("123", X)
		require.NoError(t, err)

		// When: the human plays the center
		require.NoError(t, session.ApplyHumanMove(4))

		// Then: it is the AI's turn
		assert.Equal(t, StateAITurn, session.State)

		// When: the AI answers in the corner
		require.NoError(t, session.ApplyAIMove(0))

		// Then: it is the player's turn again
		assert.Equal(t, StatePlayerTurn, session.State)
		assert.Equal(t, Board{O, Empty, Empty, Empty, X}, session.Board)
	})

	t.Run("Error on playing out of turn", func(t *testing.T) {
		// Given: a session waiting for the AI
		session, err := NewSession("123", X)
		require.NoError(t, err)
		require.NoError(t, session.ApplyHumanMove(4))

		// When: the human tries to move again
		err = session.ApplyHumanMove(0)

		// Then: ErrNotYourTurn is returned and the board is unchanged
		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		assert.Equal(t, Board{Empty, Empty, Empty, Empty, X}, session.Board)
	})

	t.Run("Occupied cell leaves the state untouched", func(t *testing.T) {
		// Given: a session where the AI holds cell 0
		session, err := NewSession("123", X)
		require.NoError(t, err)
		require.NoError(t, session.ApplyHumanMove(4))
		require.NoError(t, session.ApplyAIMove(0))

		// When: the human clicks cell 0
		err = session.ApplyHumanMove(0)

		// Then: the move is rejected and it is still the player's turn
		require.ErrorIs(t, err, apperror.ErrInvalidMove)
		assert.Equal(t, StatePlayerTurn, session.State)
	})

	t.Run("Winning move ends the game", func(t *testing.T) {
		// Given: X one move away from the top row
		session, err := NewSession("123", X)
		require.NoError(t, err)
		session.Board = mustParseBoard(t, [BoardSize]string{"X", "X", "", "", "O", "O", "", "", ""})

		// When: the human completes the row
		require.NoError(t, session.ApplyHumanMove(2))

		// Then: X has won and further moves fail
		assert.Equal(t, StateXWon, session.State)
		assert.True(t, session.IsFinished())
		assert.ErrorIs(t, session.ApplyHumanMove(3), apperror.ErrGameFinished)
		assert.ErrorIs(t, session.ApplyAIMove(3), apperror.ErrGameFinished)
	})

	t.Run("Filling the last cell draws", func(t *testing.T) {
		// Given: a board with one free cell and no line possible
		session, err := NewSession("123", X)
		require.NoError(t, err)
		session.Board = mustParseBoard(t, [BoardSize]string{"X", "O", "X", "X", "O", "O", "O", "X", ""})

		// When: the human fills it
		require.NoError(t, session.ApplyHumanMove(8))

		// Then: the game is a draw
		assert.Equal(t, StateDraw, session.State)
		assert.Equal(t, Draw, session.Outcome())
	})

	t.Run("AI win ends the game", func(t *testing.T) {
		// Given: O one move away from the middle row, AI to move
		session, err := NewSession("123", X)
		require.NoError(t, err)
		session.Board = mustParseBoard(t, [BoardSize]string{"X", "X", "", "O", "O", "", "X", "", ""})
		session.State = StateAITurn

		// When: the AI completes the row
		require.NoError(t, session.ApplyAIMove(5))

		// Then: O has won
		assert.Equal(t, StateOWon, session.State)
	})
}

func TestSession_Restart(t *testing.T) {
	// Given: a finished session
	session, err := NewSession("123", X)
	require.NoError(t, err)
	session.Board = mustParseBoard(t, [BoardSize]string{"X", "X", "X", "O", "O", "", "", "", ""})
	session.State = StateXWon

	// When: it is restarted
	session.Restart()

	// Then: the board is cleared and the player moves first
	assert.Equal(t, Board{}, session.Board)
	assert.Equal(t, StatePlayerTurn, session.State)
	assert.False(t, session.IsFinished())
}
