// internal/game/sync_state.go
package game

import (
	"github.com/google/uuid"
	"github.com/torxx666/skob26/engine"
)

// PlayerState is one seat in a Snapshot. Hands are not hidden: every
// participant sees the whole table.
type PlayerState struct {
	Seat          int           `json:"seat"`
	Name          string        `json:"name"`
	IsAI          bool          `json:"is_ai"`
	Connected     bool          `json:"connected"` // A participant currently holds the seat.
	Hand          []engine.Card `json:"hand"`
	Captured      []engine.Card `json:"captured_cards"`
	Chkoubas      int           `json:"chkoubas"`
	Score         int           `json:"score"` // Cumulative.
	IsCurrentTurn bool          `json:"is_current_turn"`
}

// Snapshot is the full state of a session at one sequence number. Field
// names follow the browser client's snake_case state object.
type Snapshot struct {
	GameID        uuid.UUID           `json:"game_id"`
	Session       string              `json:"session"`
	Seq           uint64              `json:"seq"`
	Round         int                 `json:"round"`
	Deck          []engine.Card       `json:"deck"`
	DeckCount     int                 `json:"deck_count"`
	Table         []engine.Card       `json:"table"`
	Players       []PlayerState       `json:"players"`
	CurrentPlayer int                 `json:"current_player_index"`
	LastCapture   *int                `json:"last_capture_player_index"` // Nil until someone captures this round.
	RoundFinished bool                `json:"round_finished"`
	GameOver      bool                `json:"game_over"`
	Winners       []string            `json:"winners,omitempty"`
	Scores        map[string]int      `json:"scores"`
	TargetScore   int                 `json:"target_score"`
	LastRound     *engine.RoundResult `json:"last_round,omitempty"`
	Discarded     []engine.Card       `json:"discarded"`
	AwaitingAck   bool                `json:"awaiting_ack"`   // A computer move waits for ANIMATION_COMPLETE.
	RefillPending bool                `json:"refill_pending"` // Hands are empty and a refill is scheduled.
	Spectators    int                 `json:"spectators"`
}

// GetSnapshot returns the current state. It shares no memory with the game.
func (g *ChkoubaGame) GetSnapshot() Snapshot {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.snapshot()
}

func (g *ChkoubaGame) snapshotPtr() *Snapshot {
	s := g.snapshot()
	return &s
}

// snapshot builds a Snapshot from the engine state.
// Assumes lock is held by caller.
func (g *ChkoubaGame) snapshot() Snapshot {
	e := g.Engine
	s := Snapshot{
		GameID:        g.ID,
		Session:       g.Key,
		Seq:           g.seq,
		Round:         e.Round,
		Deck:          copyCards(e.Deck),
		DeckCount:     len(e.Deck),
		Table:         copyCards(e.Table),
		Players:       make([]PlayerState, len(e.Players)),
		CurrentPlayer: e.CurrentPlayer,
		RoundFinished: e.RoundFinished,
		GameOver:      e.GameOver,
		Scores:        g.totals(),
		TargetScore:   e.Rules.Target(),
		Discarded:     copyCards(e.Discarded),
		AwaitingAck:   g.awaitingAck,
		RefillPending: e.NeedsRefill(),
	}
	if e.LastCapture != engine.NoPlayer {
		lc := e.LastCapture
		s.LastCapture = &lc
	}
	if e.LastRound != nil {
		lr := *e.LastRound
		lr.Scores = append([]engine.RoundScore(nil), e.LastRound.Scores...)
		lr.Discarded = copyCards(e.LastRound.Discarded)
		s.LastRound = &lr
	}
	if e.GameOver {
		s.Winners = e.Leaders()
	}
	for i, p := range e.Players {
		s.Players[i] = PlayerState{
			Seat:          i,
			Name:          p.Name,
			IsAI:          p.IsAI,
			Connected:     g.seatHeld(i),
			Hand:          copyCards(p.Hand),
			Captured:      copyCards(p.Captured),
			Chkoubas:      p.Chkoubas,
			Score:         e.Scores[p.Name],
			IsCurrentTurn: i == e.CurrentPlayer && !e.RoundFinished,
		}
	}
	for _, p := range g.Players {
		if p.IsSpectator() {
			s.Spectators++
		}
	}
	return s
}

// Summary describes a session for the lobby listing.
type Summary struct {
	Session      string    `json:"session"`
	GameID       uuid.UUID `json:"game_id"`
	Players      []string  `json:"players"`
	Participants int       `json:"participants"`
	Round        int       `json:"round"`
	GameOver     bool      `json:"game_over"`
}

// GetSummary returns the lobby view of the session.
func (g *ChkoubaGame) GetSummary() Summary {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	names := make([]string, len(g.Engine.Players))
	for i, p := range g.Engine.Players {
		names[i] = p.Name
	}
	return Summary{
		Session:      g.Key,
		GameID:       g.ID,
		Players:      names,
		Participants: len(g.Players),
		Round:        g.Engine.Round,
		GameOver:     g.Engine.GameOver,
	}
}

// copyCards returns a copy of cards that is never nil.
func copyCards(cards []engine.Card) []engine.Card {
	out := make([]engine.Card, len(cards))
	copy(out, cards)
	return out
}
