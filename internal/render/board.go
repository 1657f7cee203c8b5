// Package render draws sessions for a terminal. It keeps no state of its own:
// everything shown is read from the session passed in.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/muesli/termenv"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
)

const rowSeparator = "---+---+---"

type Renderer struct {
	out *termenv.Output
}

func New(out *termenv.Output) *Renderer {
	return &Renderer{out: out}
}

// Board draws the grid; free cells show their index.
func (that *Renderer) Board(board *entity.Board) string {
	var s strings.Builder

	for row := range 3 {
		if row > 0 {
			s.WriteString("\n" + rowSeparator + "\n")
		}

		for col := range 3 {
			if col > 0 {
				s.WriteByte('|')
			}

			index := row*3 + col
			s.WriteString(" " + that.cell(board[index], index) + " ")
		}
	}

	return s.String()
}

func (that *Renderer) cell(mark entity.Mark, index int) string {
	switch mark {
	case entity.X:
		return that.out.String("X").Foreground(that.out.Color("1")).Bold().String()
	case entity.O:
		return that.out.String("O").Foreground(that.out.Color("4")).Bold().String()
	default:
		return that.out.String(strconv.Itoa(index)).Faint().String()
	}
}

// Status is the line shown under the board.
func (that *Renderer) Status(session *entity.Session) string {
	switch session.State {
	case entity.StateXWon:
		return that.out.String("Player X Wins!").Bold().String()
	case entity.StateOWon:
		return that.out.String("Player O Wins!").Bold().String()
	case entity.StateDraw:
		return that.out.String("It's a Draw!").Bold().String()
	case entity.StateAITurn:
		return fmt.Sprintf("%s Turn", session.AIMark)
	default:
		return fmt.Sprintf("%s Turn", session.HumanMark)
	}
}

// Session draws the board followed by the status line.
func (that *Renderer) Session(session *entity.Session) string {
	return that.Board(&session.Board) + "\n\n" + that.Status(session) + "\n"
}
