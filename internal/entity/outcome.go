package entity

import (
	"errors"
	"fmt"
)

var ErrUnknownOutcome = errors.New("unknown outcome")

// Outcome is derived from a Board, never stored on it.
type Outcome uint8

const (
	InProgress Outcome = iota
	XWins
	OWins
	Draw
)

func (that Outcome) String() string {
	switch that {
	case InProgress:
		return "in_progress"
	case XWins:
		return "x_wins"
	case OWins:
		return "o_wins"
	case Draw:
		return "draw"
	default:
		return "unknown"
	}
}

func (that Outcome) IsTerminal() bool {
	return that != InProgress
}

// WinsFor returns the outcome in which side has won.
func WinsFor(side Mark) Outcome {
	if side == O {
		return OWins
	}

	return XWins
}

func (that Outcome) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *Outcome) UnmarshalText(text []byte) error {
	switch string(text) {
	case "in_progress":
		*that = InProgress
	case "x_wins":
		*that = XWins
	case "o_wins":
		*that = OWins
	case "draw":
		*that = Draw
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOutcome, text)
	}

	return nil
}
