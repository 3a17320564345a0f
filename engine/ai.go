package engine

// Heuristic weights.
const (
	weightSebaaDinari = 100
	weightDiamond     = 10
)

// Move is a card to play and, for a capture, the index into its Captures list.
type Move struct {
	Card   Card `json:"card"`
	Option *int `json:"option,omitempty"`
}

// CardID returns the id of the card to play.
func (m Move) CardID() string { return m.Card.ID() }

// IsCapture reports whether the move takes cards from the table.
func (m Move) IsCapture() bool { return m.Option != nil }

// BestMove picks a single-ply greedy move for hand against table.
//
// Each (card, option) pair with a capture scores +100 when the seven of
// diamonds is involved, +10 per diamond among the option and the played card,
// and +1 per card taken including the played card. The first pair with the
// strictly highest score wins, in hand order then option order. Without any
// capture the first lowest-valued card is dropped. The result depends only on
// hand and table.
func BestMove(hand, table []Card) Move {
	if len(hand) == 0 {
		return Move{Card: NoCard}
	}

	best := -1
	var move Move
	for _, card := range hand {
		for idx, opt := range Captures(table, card) {
			score := scoreCapture(card, opt)
			if score > best {
				best = score
				i := idx
				move = Move{Card: card, Option: &i}
			}
		}
	}
	if best >= 0 {
		return move
	}

	low := hand[0]
	for _, c := range hand[1:] {
		if c.Value() < low.Value() {
			low = c
		}
	}
	return Move{Card: low}
}

// scoreCapture rates taking opt with card.
func scoreCapture(card Card, opt []Card) int {
	score := 0
	if card == SebaaDinari || containsCard(opt, SebaaDinari) {
		score += weightSebaaDinari
	}
	diamonds := countWhere(opt, Card.IsDiamond)
	if card.IsDiamond() {
		diamonds++
	}
	score += diamonds * weightDiamond
	score += len(opt) + 1
	return score
}

// AIMove returns the heuristic move for the current player.
func (g *GameState) AIMove() (Move, error) {
	if g.GameOver {
		return Move{}, ErrGameOver
	}
	if g.RoundFinished {
		return Move{}, ErrRoundFinished
	}
	if g.NeedsRefill() {
		return Move{}, ErrRefillPending
	}
	p := g.Current()
	return BestMove(p.Hand, g.Table), nil
}

// PlayAI applies the heuristic move for the current player.
func (g *GameState) PlayAI() (Move, Outcome, error) {
	m, err := g.AIMove()
	if err != nil {
		return Move{}, Outcome{}, err
	}
	out, err := g.Play(g.CurrentPlayer, m.CardID(), m.Option)
	return m, out, err
}
