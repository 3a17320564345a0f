// internal/models/player.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// SpectatorSeat marks a participant that watches without a seat at the table.
const SpectatorSeat = -1

// Player is one websocket participant in a game session.
type Player struct {
	ID        uuid.UUID `json:"id"`   // Connection-scoped identifier.
	Name      string    `json:"name"` // Name requested on connect; may differ from the seat name until bound.
	Seat      int       `json:"seat"` // Engine seat index, or SpectatorSeat.
	Connected bool      `json:"connected"`
	JoinedAt  time.Time `json:"joinedAt"`
}

// NewPlayer returns a connected participant with a fresh id and no seat.
func NewPlayer(name string) *Player {
	return &Player{
		ID:        uuid.New(),
		Name:      name,
		Seat:      SpectatorSeat,
		Connected: true,
		JoinedAt:  time.Now(),
	}
}

// IsSpectator reports whether the participant has no seat.
func (p *Player) IsSpectator() bool { return p.Seat == SpectatorSeat }
