package engine

// Captures returns the legal capture options for playing card onto table.
//
// If any table card has the played value, the result is exactly one
// single-card option per such card, in table order; sums are never offered
// alongside a direct match. Otherwise every subset of two or more table cards
// summing to the played value is returned, ordered by subset size and then
// lexicographically by table position, so an index identifies one option.
// An empty result means the card can only be dropped.
func Captures(table []Card, card Card) [][]Card {
	var options [][]Card
	for _, c := range table {
		if c.Value() == card.Value() {
			options = append(options, []Card{c})
		}
	}
	if len(options) > 0 {
		return options
	}

	target := int(card.Value())
	idx := make([]int, 0, len(table))
	for size := 2; size <= len(table); size++ {
		options = appendSums(options, table, idx, 0, size, target)
	}
	return options
}

// appendSums walks the size-k index combinations of table in lexicographic
// order starting at start, appending those whose values total remaining.
func appendSums(options [][]Card, table []Card, chosen []int, start, k, remaining int) [][]Card {
	if k == 0 {
		if remaining == 0 {
			opt := make([]Card, len(chosen))
			for i, ti := range chosen {
				opt[i] = table[ti]
			}
			options = append(options, opt)
		}
		return options
	}
	for i := start; i <= len(table)-k; i++ {
		v := int(table[i].Value())
		if v > remaining {
			continue
		}
		options = appendSums(options, table, append(chosen, i), i+1, k-1, remaining-v)
	}
	return options
}

// CanCapture reports whether playing card onto table offers at least one capture.
func CanCapture(table []Card, card Card) bool {
	return len(Captures(table, card)) > 0
}

// CaptureOptions returns the options for the current player playing cardID,
// or ErrCardNotInHand.
func (g *GameState) CaptureOptions(cardID string) ([][]Card, error) {
	p := g.Current()
	i := p.handIndex(cardID)
	if i < 0 {
		return nil, ErrCardNotInHand
	}
	return Captures(g.Table, p.Hand[i]), nil
}
