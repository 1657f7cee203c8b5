package entity

// StateChange is emitted after every half-move and after a restart.
type StateChange struct {
	SessionID string  `json:"session_id"`
	Board     Board   `json:"board"`
	Outcome   Outcome `json:"outcome"`
	State     State   `json:"state"`
	// Mover is Empty and Cell is -1 when the change is a restart.
	Mover Mark `json:"mover"`
	Cell  int  `json:"cell"`
}

// Snapshot captures the session after a move by mover at cell.
func (that *Session) Snapshot(mover Mark, cell int) *StateChange {
	return &StateChange{
		SessionID: that.ID,
		Board:     that.Board,
		Outcome:   that.Outcome(),
		State:     that.State,
		Mover:     mover,
		Cell:      cell,
	}
}
