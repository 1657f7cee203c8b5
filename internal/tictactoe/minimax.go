// Package tictactoe selects moves with an exhaustive minimax search.
package tictactoe

import (
	"fmt"
	"math"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
)

const winScore = 10

// searchOrder - center, corners, edges. Ties go to the first cell in this order.
var searchOrder = [entity.BoardSize]int{4, 0, 2, 6, 8, 1, 3, 5, 7}

// BestMove returns the cell that maximizes the final score for side. Every
// placement made during the search is undone before returning.
func BestMove(board *entity.Board, side entity.Mark) (int, error) {
	if !side.IsSide() {
		return -1, fmt.Errorf("%w: side %d", entity.ErrInvalidMark, side)
	}

	if board.IsFull() {
		return -1, fmt.Errorf("%w: board is full", apperror.ErrNoLegalMove)
	}

	if winner := board.Winner(); winner != entity.Empty {
		return -1, fmt.Errorf("%w: %s has already won", apperror.ErrNoLegalMove, winner)
	}

	s := searcher{board: board, self: side}

	bestScore := math.MinInt
	bestMove := -1

	for _, cell := range searchOrder {
		if board[cell] != entity.Empty {
			continue
		}

		board[cell] = side
		score := s.score(0, false)
		board.Undo(cell)

		if score > bestScore {
			bestScore = score
			bestMove = cell
		}
	}

	return bestMove, nil
}

type searcher struct {
	board *entity.Board
	self  entity.Mark
}

// score evaluates the board from self's point of view. Faster wins and slower
// losses score better.
func (that *searcher) score(depth int, maximizing bool) int {
	switch that.board.Winner() {
	case that.self:
		return winScore - depth
	case that.self.Opponent():
		return depth - winScore
	}

	if that.board.IsFull() {
		return 0
	}

	mark := that.self
	best := math.MinInt
	if !maximizing {
		mark = that.self.Opponent()
		best = math.MaxInt
	}

	for _, cell := range searchOrder {
		if that.board[cell] != entity.Empty {
			continue
		}

		that.board[cell] = mark
		score := that.score(depth+1, !maximizing)
		that.board.Undo(cell)

		if maximizing {
			best = max(best, score)
		} else {
			best = min(best, score)
		}
	}

	return best
}
