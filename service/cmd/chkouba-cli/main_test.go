package main

import (
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/torxx666/skob26/engine"
)

func TestLabels(t *testing.T) {
	pterm.DisableColor()
	defer pterm.EnableColor()

	assert.Equal(t, "7♦", cardLabel(engine.SebaaDinari))
	assert.Equal(t, "A♠", cardLabel(engine.NewCard(engine.SuitSpades, 1)))
	assert.Equal(t, "K♣", cardLabel(engine.NewCard(engine.SuitClubs, 10)))
	assert.Equal(t, "-", cardsLabel(nil))

	captures := [][]engine.Card{
		{engine.NewCard(engine.SuitHearts, 5)},
		{engine.NewCard(engine.SuitHearts, 2), engine.NewCard(engine.SuitClubs, 3)},
	}
	labels := captureLabels(captures)
	assert.Equal(t, []string{"1: 5♥", "2: 2♥ 3♣", "Drop it on the table"}, labels)
	assert.Equal(t, 1, indexOf(labels, "2: 2♥ 3♣"))
	assert.Equal(t, 3, indexOf(labels, "missing"))
}

func TestDescribe(t *testing.T) {
	pterm.DisableColor()
	defer pterm.EnableColor()

	five := engine.NewCard(engine.SuitSpades, 5)
	assert.Equal(t, "You dropped 5♠", describe("You", five, engine.Outcome{Card: five}))

	out := engine.Outcome{
		Card:     five,
		Captured: []engine.Card{engine.NewCard(engine.SuitClubs, 5)},
		Chkouba:  true,
	}
	assert.Equal(t, "AI 1 took 5♣ with 5♠ CHKOUBA!", describe("AI 1", five, out))
}
