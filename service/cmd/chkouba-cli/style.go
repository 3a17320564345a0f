package main

import (
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/torxx666/skob26/engine"
)

var suitNames = map[engine.Suit]string{
	engine.SuitDiamonds: "♦",
	engine.SuitHearts:   "♥",
	engine.SuitSpades:   "♠",
	engine.SuitClubs:    "♣",
}

var faceNames = map[uint8]string{1: "A", 8: "Q", 9: "J", 10: "K"}

// cardLabel renders a card as value and suit symbol, red for the red suits.
func cardLabel(c engine.Card) string {
	v, ok := faceNames[c.Value()]
	if !ok {
		v = strconv.Itoa(int(c.Value()))
	}
	s := v + suitNames[c.Suit()]
	if c.Suit() == engine.SuitDiamonds || c.Suit() == engine.SuitHearts {
		return pterm.LightRed(s)
	}
	return s
}

func cardsLabel(cards []engine.Card) string {
	if len(cards) == 0 {
		return "-"
	}
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = cardLabel(c)
	}
	return strings.Join(parts, " ")
}

// printState shows the table and every seat, the current seat first.
func printState(g *engine.GameState) {
	pbox := pterm.DefaultBox.WithHorizontalPadding(2)

	var seats []pterm.Panel
	for i := range g.Players {
		p := &g.Players[i]
		var body string
		if p.IsAI {
			body = pterm.Sprintfln("Hand: %d cards", len(p.Hand))
		} else {
			body = pterm.Sprintfln("Hand: %s", cardsLabel(p.Hand))
		}
		body += pterm.Sprintfln("Captured: %d", len(p.Captured))
		body += pterm.Sprintf("Chkoubas: %d  Score: %d", p.Chkoubas, g.Scores[p.Name])
		title := p.Name
		if i == g.CurrentPlayer {
			title = pterm.LightGreen(p.Name)
		}
		seats = append(seats, pterm.Panel{Data: pbox.WithTitle(title).Sprint(body)})
	}

	table := pterm.Panel{Data: pbox.WithTitle(pterm.LightYellow("|TABLE|")).WithTitleTopCenter().
		Sprintf("%s\n\nRound %d, %d cards left", cardsLabel(g.Table), g.Round, len(g.Deck))}

	pterm.DefaultPanel.WithPanels([][]pterm.Panel{{table}, seats}).Render()
}

// roundPanel tabulates the last round's points per category.
func roundPanel(g *engine.GameState) pterm.Panel {
	data := pterm.TableData{{"Player", "Carta", "Dinari", "7♦", "Primiera", "Chkoubas", "Round", "Total"}}
	if g.LastRound != nil {
		for _, s := range g.LastRound.Scores {
			data = append(data, []string{
				s.Name,
				pterm.Sprint(s.Carta),
				pterm.Sprint(s.Dinari),
				pterm.Sprint(s.SebaaDinari),
				pterm.Sprint(s.Primiera),
				pterm.Sprint(s.Chkoubas),
				pterm.Sprint(s.Total()),
				pterm.Sprint(g.Scores[s.Name]),
			})
		}
	}
	table, _ := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	return pterm.Panel{Data: pterm.DefaultBox.WithTitle(pterm.LightGreen("|ROUND OVER|")).WithTitleTopCenter().Sprint(table)}
}
