package entity

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
)

// Mark is the content of a single cell.
type Mark uint8

const (
	Empty Mark = iota
	X
	O
)

const BoardSize = 9

var (
	ErrInvalidCell  = fmt.Errorf("%w: invalid cell index", apperror.ErrInvalidMove)
	ErrCellOccupied = fmt.Errorf("%w: cell is already occupied", apperror.ErrInvalidMove)
	ErrInvalidMark  = fmt.Errorf("%w: invalid mark", apperror.ErrInvalidMove)

	// WinLines - rows, columns, then diagonals.
	WinLines = [8][3]int{
		{0, 1, 2},
		{3, 4, 5},
		{6, 7, 8},
		{0, 3, 6},
		{1, 4, 7},
		{2, 5, 8},
		{0, 4, 8},
		{2, 4, 6},
	}
)

func (that Mark) String() string {
	switch that {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return ""
	}
}

// Opponent returns the other side, or Empty for Empty.
func (that Mark) Opponent() Mark {
	switch that {
	case X:
		return O
	case O:
		return X
	default:
		return Empty
	}
}

// IsSide reports whether the mark belongs to a player.
func (that Mark) IsSide() bool {
	return that == X || that == O
}

func (that Mark) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *Mark) UnmarshalText(text []byte) error {
	mark, err := ParseMark(string(text))
	if err != nil {
		return err
	}

	*that = mark

	return nil
}

// ParseMark - converts "X", "O" or "" into a Mark.
func ParseMark(s string) (Mark, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "X":
		return X, nil
	case "O":
		return O, nil
	case "":
		return Empty, nil
	default:
		return Empty, fmt.Errorf("%w: %q", ErrInvalidMark, s)
	}
}

// Board - 3x3 grid stored row-major.
type Board [BoardSize]Mark

// ParseBoard builds a board from textual cells ("X", "O" or "").
func ParseBoard(cells [BoardSize]string) (Board, error) {
	var board Board

	for i, cell := range cells {
		mark, err := ParseMark(cell)
		if err != nil {
			return Board{}, fmt.Errorf("cell %d: %w", i, err)
		}
		board[i] = mark
	}

	return board, nil
}

// Place - puts side into the cell at index.
func (that *Board) Place(index int, side Mark) error {
	if index < 0 || index >= BoardSize {
		return fmt.Errorf("%w: cell %d", ErrInvalidCell, index)
	}

	if !side.IsSide() {
		return fmt.Errorf("%w: %d", ErrInvalidMark, side)
	}

	if that[index] != Empty {
		return fmt.Errorf("%w: cell %d", ErrCellOccupied, index)
	}

	that[index] = side

	return nil
}

// Undo - restores the cell at index to Empty.
func (that *Board) Undo(index int) {
	if index >= 0 && index < BoardSize {
		that[index] = Empty
	}
}

func (that *Board) IsFull() bool {
	for _, cell := range that {
		if cell == Empty {
			return false
		}
	}

	return true
}

// Winner returns the side holding a complete line, or Empty.
func (that *Board) Winner() Mark {
	for _, line := range WinLines {
		a, b, c := that[line[0]], that[line[1]], that[line[2]]
		if a != Empty && a == b && b == c {
			return a
		}
	}

	return Empty
}

func (that *Board) Outcome() Outcome {
	switch that.Winner() {
	case X:
		return XWins
	case O:
		return OWins
	}

	if that.IsFull() {
		return Draw
	}

	return InProgress
}

func (that *Board) Clear() {
	for i := range that {
		that[i] = Empty
	}
}

// EmptyCells returns the indices of free cells in ascending order.
func (that *Board) EmptyCells() []int {
	cells := make([]int, 0, BoardSize)
	for i, cell := range that {
		if cell == Empty {
			cells = append(cells, i)
		}
	}

	return cells
}

func (that *Board) String() string {
	var s strings.Builder

	for row := range 3 {
		if row > 0 {
			s.WriteByte('\n')
		}

		for col := range 3 {
			if col > 0 {
				s.WriteByte('|')
			}

			cell := that[row*3+col]
			if cell == Empty {
				s.WriteByte('.')
				continue
			}
			s.WriteString(cell.String())
		}
	}

	return s.String()
}
