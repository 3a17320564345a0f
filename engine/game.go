// Package engine implements the Chkouba card game rules.
//
// A GameState is a plain, single-owner value: it is not safe for concurrent
// mutation, and callers that share one across goroutines must serialize
// access themselves. Every rule lives here; the engine performs no I/O.
package engine

import (
	"fmt"
	"math/rand/v2"
)

// NoPlayer marks the absence of a player index (e.g. no capture yet this round).
const NoPlayer = -1

// GameState holds the complete state of one Chkouba game.
type GameState struct {
	Deck          []Card         `json:"deck"` // draw from the end
	Table         []Card         `json:"table"`
	Players       []Player       `json:"players"`
	CurrentPlayer int            `json:"current_player_index"`
	LastCapture   int            `json:"last_capture_player_index"` // NoPlayer until someone captures this round
	RoundFinished bool           `json:"round_finished"`
	GameOver      bool           `json:"game_over"`
	Scores        map[string]int `json:"scores"` // cumulative, by player name
	Round         int            `json:"round"`
	Starter       int            `json:"starter"`
	// Discarded holds round-end leftovers when nobody captured during the round.
	Discarded []Card       `json:"discarded"`
	LastRound *RoundResult `json:"last_round,omitempty"`
	Rules     Rules        `json:"-"`

	src *rand.PCG
}

// ---------------------------------------------------------------------------
// Deck
// ---------------------------------------------------------------------------

// OrderedDeck returns the 40 cards sorted by suit then value.
func OrderedDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for s := Suit(0); s < NumSuits; s++ {
		for v := uint8(MinValue); v <= MaxValue; v++ {
			deck = append(deck, NewCard(s, v))
		}
	}
	return deck
}

// NewDeck returns all 40 cards in uniformly random order.
func NewDeck(r *rand.Rand) []Card {
	deck := OrderedDeck()
	// Fisher-Yates shuffle.
	for i := len(deck) - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
	return deck
}

// ---------------------------------------------------------------------------
// NewGame and round setup
// ---------------------------------------------------------------------------

// NewGame seats the human players in order followed by aiCount computer
// players named "AI 1", "AI 2", ... and deals the first round.
func NewGame(seed uint64, rules Rules, humans []string, aiCount int) (*GameState, error) {
	total := len(humans) + aiCount
	if aiCount < 0 || total < MinPlayers || total > MaxPlayers {
		return nil, fmt.Errorf("%w: %d humans + %d AI (want %d-%d seats)", ErrPlayerCount, len(humans), aiCount, MinPlayers, MaxPlayers)
	}

	g := &GameState{
		Rules:       rules,
		Scores:      make(map[string]int, total),
		LastCapture: NoPlayer,
		src:         rand.NewPCG(seed, seed^0x9e3779b97f4a7c15),
	}
	for _, name := range humans {
		g.Players = append(g.Players, Player{Name: name})
	}
	for i := 1; i <= aiCount; i++ {
		g.Players = append(g.Players, Player{Name: fmt.Sprintf("AI %d", i), IsAI: true})
	}
	for _, p := range g.Players {
		if p.Name == "" {
			return nil, fmt.Errorf("%w: empty name", ErrDuplicateName)
		}
		if _, dup := g.Scores[p.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, p.Name)
		}
		g.Scores[p.Name] = 0
	}

	if err := g.StartRound(); err != nil {
		return nil, err
	}
	return g, nil
}

// rng returns a generator over the game's seeded source.
func (g *GameState) rng() *rand.Rand {
	if g.src == nil {
		g.src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return rand.New(g.src)
}

// StartRound shuffles a fresh deck, lays the opening table and deals every hand.
// The opening table is redealt from a reshuffled deck while three or more of
// its cards share a value.
func (g *GameState) StartRound() error {
	if g.GameOver {
		return ErrGameOver
	}
	if g.Round > 0 && !g.RoundFinished {
		return ErrRoundInProgress
	}

	for {
		g.Deck = NewDeck(g.rng())
		g.Table = g.draw(TableDeal)
		if !hasTriple(g.Table) {
			break
		}
	}

	for i := range g.Players {
		g.Players[i].Hand = nil
		g.Players[i].Captured = nil
		g.Players[i].Chkoubas = 0
	}
	g.dealHands()

	g.Round++
	if g.Rules.RotateStarter && g.Round > 1 {
		g.Starter = (g.Starter + 1) % len(g.Players)
	}
	g.CurrentPlayer = g.Starter
	g.LastCapture = NoPlayer
	g.Discarded = nil
	g.RoundFinished = false
	return nil
}

// draw pops n cards from the end of the deck.
func (g *GameState) draw(n int) []Card {
	if n > len(g.Deck) {
		n = len(g.Deck)
	}
	out := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		last := len(g.Deck) - 1
		out = append(out, g.Deck[last])
		g.Deck = g.Deck[:last]
	}
	return out
}

// dealHands deals HandDeal cards to every player in seat order.
func (g *GameState) dealHands() {
	for i := range g.Players {
		g.Players[i].Hand = g.draw(HandDeal)
	}
}

// hasTriple reports whether three or more cards share one value.
func hasTriple(cards []Card) bool {
	var counts [MaxValue + 1]int
	for _, c := range cards {
		counts[c.Value()]++
		if counts[c.Value()] >= 3 {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Query methods
// ---------------------------------------------------------------------------

// NumPlayers returns the number of seats.
func (g *GameState) NumPlayers() int { return len(g.Players) }

// Current returns the player whose turn it is.
func (g *GameState) Current() *Player { return &g.Players[g.CurrentPlayer] }

// CurrentIsAI reports whether the current seat is computer-controlled.
func (g *GameState) CurrentIsAI() bool { return g.Players[g.CurrentPlayer].IsAI }

// HandsEmpty reports whether every player's hand is empty.
func (g *GameState) HandsEmpty() bool {
	for _, p := range g.Players {
		if len(p.Hand) > 0 {
			return false
		}
	}
	return true
}

// NeedsRefill reports whether a deferred refill is waiting to be applied.
func (g *GameState) NeedsRefill() bool {
	return !g.RoundFinished && g.HandsEmpty() && len(g.Deck) > 0
}

// AwaitingPlay reports whether the current player is expected to play a card.
func (g *GameState) AwaitingPlay() bool {
	return !g.RoundFinished && !g.GameOver && len(g.Players[g.CurrentPlayer].Hand) > 0
}

// PlayerIndex returns the seat of the named player, or NoPlayer.
func (g *GameState) PlayerIndex(name string) int {
	for i, p := range g.Players {
		if p.Name == name {
			return i
		}
	}
	return NoPlayer
}

// CardCount returns the number of cards across every zone. It is DeckSize
// whenever the state is consistent.
func (g *GameState) CardCount() int {
	n := len(g.Deck) + len(g.Table) + len(g.Discarded)
	for _, p := range g.Players {
		n += len(p.Hand) + len(p.Captured)
	}
	return n
}

// RenamePlayer renames a human seat, carrying its cumulative score.
func (g *GameState) RenamePlayer(idx int, name string) error {
	if idx < 0 || idx >= len(g.Players) {
		return fmt.Errorf("%w: seat %d", ErrUnknownActor, idx)
	}
	if g.Players[idx].IsAI {
		return fmt.Errorf("%w: seat %d is computer-controlled", ErrUnknownActor, idx)
	}
	old := g.Players[idx].Name
	if old == name {
		return nil
	}
	if name == "" || g.PlayerIndex(name) != NoPlayer {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	g.Players[idx].Name = name
	g.Scores[name] = g.Scores[old]
	delete(g.Scores, old)
	return nil
}

// ---------------------------------------------------------------------------
// Clone
// ---------------------------------------------------------------------------

// Clone returns a deep copy sharing no slices or maps with g. The copy's
// random source continues from the same point as g's.
func (g *GameState) Clone() *GameState {
	c := *g
	c.Deck = cloneCards(g.Deck)
	c.Table = cloneCards(g.Table)
	c.Discarded = cloneCards(g.Discarded)
	c.Players = make([]Player, len(g.Players))
	for i, p := range g.Players {
		p.Hand = cloneCards(p.Hand)
		p.Captured = cloneCards(p.Captured)
		c.Players[i] = p
	}
	c.Scores = make(map[string]int, len(g.Scores))
	for k, v := range g.Scores {
		c.Scores[k] = v
	}
	if g.LastRound != nil {
		lr := g.LastRound.clone()
		c.LastRound = &lr
	}
	if g.src != nil {
		src := *g.src
		c.src = &src
	}
	return &c
}

func cloneCards(cards []Card) []Card {
	if cards == nil {
		return nil
	}
	out := make([]Card, len(cards))
	copy(out, cards)
	return out
}
