package engine

import "fmt"

// Outcome describes what a single Play did.
type Outcome struct {
	Player   int    `json:"player"`
	Card     Card   `json:"card"`
	Captured []Card `json:"captured,omitempty"` // table cards taken; empty on a drop
	Chkouba  bool   `json:"chkouba"`
	Refilled bool   `json:"refilled"`
	// RefillPending is set when hands emptied with cards left in the deck and
	// Rules.DeferRefill is on; the caller must call Refill.
	RefillPending bool         `json:"refill_pending"`
	RoundEnded    bool         `json:"round_ended"`
	Round         *RoundResult `json:"round,omitempty"`
}

// Dropped reports whether the card went to the table.
func (o Outcome) Dropped() bool { return len(o.Captured) == 0 }

// Play has actor play cardID. With a nil option, or when the card offers no
// capture, the card is dropped face-up on the table; capturing is never
// mandatory. Otherwise *option indexes the list returned by Captures.
//
// On error the state is unchanged.
func (g *GameState) Play(actor int, cardID string, option *int) (Outcome, error) {
	if g.GameOver {
		return Outcome{}, ErrGameOver
	}
	if g.RoundFinished {
		return Outcome{}, ErrRoundFinished
	}
	if actor < 0 || actor >= len(g.Players) {
		return Outcome{}, fmt.Errorf("%w: seat %d", ErrUnknownActor, actor)
	}
	if g.NeedsRefill() {
		return Outcome{}, ErrRefillPending
	}
	if actor != g.CurrentPlayer {
		return Outcome{}, fmt.Errorf("%w: seat %d played, seat %d to act", ErrActionOutOfTurn, actor, g.CurrentPlayer)
	}

	p := &g.Players[actor]
	hi := p.handIndex(cardID)
	if hi < 0 {
		return Outcome{}, fmt.Errorf("%w: %s does not hold %q", ErrCardNotInHand, p.Name, cardID)
	}
	card := p.Hand[hi]

	options := Captures(g.Table, card)
	var chosen []Card
	if option != nil && len(options) > 0 {
		if *option < 0 || *option >= len(options) {
			return Outcome{}, fmt.Errorf("%w: %d of %d options for %s", ErrInvalidCaptureOption, *option, len(options), card)
		}
		chosen = options[*option]
	}

	out := Outcome{Player: actor, Card: card}
	lastCard := len(g.Deck) == 0 && g.cardsInHands() == 1

	if chosen != nil {
		p.Captured = append(p.Captured, card)
		p.Captured = append(p.Captured, chosen...)
		g.Table = removeCards(g.Table, chosen)
		if len(g.Table) == 0 && !lastCard {
			p.Chkoubas++
			out.Chkouba = true
		}
		g.LastCapture = actor
		out.Captured = cloneCards(chosen)
	} else {
		g.Table = append(g.Table, card)
	}

	p.Hand = append(p.Hand[:hi:hi], p.Hand[hi+1:]...)
	g.nextTurn(&out)
	return out, nil
}

// nextTurn advances the current seat and handles hand exhaustion.
func (g *GameState) nextTurn(out *Outcome) {
	g.CurrentPlayer = (g.CurrentPlayer + 1) % len(g.Players)

	if !g.HandsEmpty() {
		return
	}
	if len(g.Deck) > 0 {
		if g.Rules.DeferRefill {
			out.RefillPending = true
			return
		}
		g.dealHands()
		out.Refilled = true
		return
	}
	res := g.endRound()
	out.RoundEnded = true
	out.Round = &res
}

// Refill deals a fresh hand to every player after a deferred refill.
func (g *GameState) Refill() error {
	if !g.NeedsRefill() {
		return ErrNoRefillNeeded
	}
	g.dealHands()
	return nil
}

// endRound gives the table to the last capturer, scores the round and
// updates cumulative totals. Leftovers with no capturer are discarded.
func (g *GameState) endRound() RoundResult {
	var discarded []Card
	if g.LastCapture != NoPlayer {
		lc := &g.Players[g.LastCapture]
		lc.Captured = append(lc.Captured, g.Table...)
	} else {
		discarded = cloneCards(g.Table)
		g.Discarded = append(g.Discarded, g.Table...)
	}
	g.Table = nil
	g.RoundFinished = true

	res := RoundResult{
		Round:       g.Round,
		Scores:      ScoreRound(g.Players),
		LastCapture: g.LastCapture,
		Discarded:   discarded,
	}
	g.applyRoundScores(res.Scores)
	res.GameOver = g.GameOver
	g.LastRound = &res
	return res
}

// cardsInHands counts the cards held across all hands.
func (g *GameState) cardsInHands() int {
	n := 0
	for _, p := range g.Players {
		n += len(p.Hand)
	}
	return n
}

// removeCards returns cards without any of the cards in drop.
func removeCards(cards, drop []Card) []Card {
	out := cards[:0:0]
	for _, c := range cards {
		if !containsCard(drop, c) {
			out = append(out, c)
		}
	}
	return out
}
