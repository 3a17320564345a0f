package engine

// PrimieraOrder is the value priority used to award the Primiera point.
var PrimieraOrder = [...]uint8{7, 6, 5, 4, 3, 2, 1, 10, 9, 8}

// RoundScore is one player's points for a finished round, by category.
type RoundScore struct {
	Name        string `json:"name"`
	Carta       int    `json:"carta"`
	Dinari      int    `json:"dinari"`
	SebaaDinari int    `json:"sebaa_dinari"`
	Primiera    int    `json:"primiera"`
	Chkoubas    int    `json:"chkoubas"`
}

// Total returns the round points across all categories.
func (s RoundScore) Total() int {
	return s.Carta + s.Dinari + s.SebaaDinari + s.Primiera + s.Chkoubas
}

// RoundResult summarizes a finished round.
type RoundResult struct {
	Round       int          `json:"round"`
	Scores      []RoundScore `json:"scores"` // indexed by seat
	LastCapture int          `json:"last_capture_player_index"`
	Discarded   []Card       `json:"discarded,omitempty"`
	GameOver    bool         `json:"game_over"`
}

func (r RoundResult) clone() RoundResult {
	c := r
	c.Scores = append([]RoundScore(nil), r.Scores...)
	c.Discarded = cloneCards(r.Discarded)
	return c
}

// ScoreRound computes every category over the players' captured piles.
// Comparisons are defined over any number of players.
func ScoreRound(players []Player) []RoundScore {
	n := len(players)
	scores := make([]RoundScore, n)
	for i, p := range players {
		scores[i].Name = p.Name
		scores[i].Chkoubas = p.Chkoubas
	}
	if n == 0 {
		return scores
	}

	counts := make([]int, n)

	// Carta: most captured cards.
	for i, p := range players {
		counts[i] = len(p.Captured)
	}
	if w := strictMax(counts); w != NoPlayer {
		scores[w].Carta = 1
	}

	// Dinari: most diamonds.
	for i, p := range players {
		counts[i] = countWhere(p.Captured, Card.IsDiamond)
	}
	if w := strictMax(counts); w != NoPlayer {
		scores[w].Dinari = 1
	}

	// Sebaa Dinari: holder of the seven of diamonds.
	for i, p := range players {
		if containsCard(p.Captured, SebaaDinari) {
			scores[i].SebaaDinari = 1
			break
		}
	}

	// Primiera: first value in priority order with a unique leader.
	for _, v := range PrimieraOrder {
		for i, p := range players {
			counts[i] = countWhere(p.Captured, func(c Card) bool { return c.Value() == v })
		}
		if w := strictMax(counts); w != NoPlayer {
			scores[w].Primiera = 1
			break
		}
	}

	return scores
}

// strictMax returns the index holding the unique maximum, or NoPlayer on a tie.
func strictMax(counts []int) int {
	best, bestIdx, tied := -1, NoPlayer, false
	for i, c := range counts {
		switch {
		case c > best:
			best, bestIdx, tied = c, i, false
		case c == best:
			tied = true
		}
	}
	if tied {
		return NoPlayer
	}
	return bestIdx
}

// applyRoundScores adds round points to the cumulative totals and sets
// GameOver once any total reaches the target. GameOver never clears here.
func (g *GameState) applyRoundScores(scores []RoundScore) {
	for i, s := range scores {
		g.Scores[g.Players[i].Name] += s.Total()
	}
	target := g.Rules.Target()
	for _, total := range g.Scores {
		if total >= target {
			g.GameOver = true
		}
	}
}

// Leaders returns the names holding the highest cumulative score.
func (g *GameState) Leaders() []string {
	best := -1
	var names []string
	for _, p := range g.Players {
		s := g.Scores[p.Name]
		switch {
		case s > best:
			best = s
			names = []string{p.Name}
		case s == best:
			names = append(names, p.Name)
		}
	}
	return names
}
