package engine

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Suit is one of the four Chkouba suits.
type Suit uint8

// Suit constants, packed into the upper 4 bits of Card.
const (
	SuitDiamonds Suit = 0 // Dinari
	SuitHearts   Suit = 1
	SuitSpades   Suit = 2
	SuitClubs    Suit = 3
)

// NumSuits is the number of suits in the deck.
const NumSuits = 4

// Deck geometry.
const (
	MinValue  = 1
	MaxValue  = 10
	DeckSize  = NumSuits * MaxValue // 40
	TableDeal = 4
	HandDeal  = 3
)

var suitLetters = [NumSuits]byte{'D', 'H', 'S', 'C'}

// String returns the single-letter suit code used in card ids.
func (s Suit) String() string {
	if int(s) >= NumSuits {
		return "?"
	}
	return string(suitLetters[s])
}

// ParseSuit converts a suit letter back to a Suit.
func ParseSuit(b byte) (Suit, bool) {
	for i, l := range suitLetters {
		if l == b {
			return Suit(i), true
		}
	}
	return 0, false
}

// Card is a packed uint8: upper 4 bits = suit, lower 4 bits = value (1..10).
type Card uint8

// NoCard represents the absence of a card.
const NoCard Card = 0xFF

// SebaaDinari is the seven of diamonds, worth its own scoring point.
var SebaaDinari = NewCard(SuitDiamonds, 7)

// NewCard constructs a Card from suit and value.
func NewCard(suit Suit, value uint8) Card {
	return Card((uint8(suit) << 4) | (value & 0x0F))
}

// Suit returns the suit bits (upper 4).
func (c Card) Suit() Suit { return Suit(uint8(c) >> 4) }

// Value returns the face value (lower 4).
func (c Card) Value() uint8 { return uint8(c) & 0x0F }

// IsDiamond reports whether the card belongs to the Dinari suit.
func (c Card) IsDiamond() bool { return c.Suit() == SuitDiamonds }

// Valid reports whether the card is one of the 40 deck cards.
func (c Card) Valid() bool {
	return int(c.Suit()) < NumSuits && c.Value() >= MinValue && c.Value() <= MaxValue
}

// ID returns the value-then-suit identifier, e.g. "7D" or "10C".
func (c Card) ID() string {
	return strconv.Itoa(int(c.Value())) + c.Suit().String()
}

func (c Card) String() string { return c.ID() }

// ParseCard parses an id produced by Card.ID.
func ParseCard(id string) (Card, error) {
	if len(id) < 2 || len(id) > 3 {
		return NoCard, fmt.Errorf("malformed card id %q", id)
	}
	suit, ok := ParseSuit(id[len(id)-1])
	if !ok {
		return NoCard, fmt.Errorf("unknown suit in card id %q", id)
	}
	v, err := strconv.Atoi(id[:len(id)-1])
	if err != nil || v < MinValue || v > MaxValue {
		return NoCard, fmt.Errorf("bad value in card id %q", id)
	}
	return NewCard(suit, uint8(v)), nil
}

type cardJSON struct {
	ID    string `json:"id"`
	Suit  string `json:"suit"`
	Value int    `json:"value"`
}

// MarshalJSON encodes the card as {"id","suit","value"} for clients.
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(cardJSON{ID: c.ID(), Suit: c.Suit().String(), Value: int(c.Value())})
}

// UnmarshalJSON accepts the object form written by MarshalJSON; only the id is authoritative.
func (c *Card) UnmarshalJSON(data []byte) error {
	var cj cardJSON
	if err := json.Unmarshal(data, &cj); err != nil {
		return err
	}
	parsed, err := ParseCard(cj.ID)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Player holds one seat's hand, captured pile and chkouba counter.
type Player struct {
	Name     string `json:"name"`
	Hand     []Card `json:"hand"`
	Captured []Card `json:"captured_cards"`
	Chkoubas int    `json:"chkoubas"`
	IsAI     bool   `json:"is_ai"`
}

// handIndex returns the position of the card with the given id, or -1.
func (p *Player) handIndex(cardID string) int {
	for i, c := range p.Hand {
		if c.ID() == cardID {
			return i
		}
	}
	return -1
}

// HasCard reports whether the card id is in the player's hand.
func (p *Player) HasCard(cardID string) bool { return p.handIndex(cardID) >= 0 }

// countWhere counts the cards in cards matching pred.
func countWhere(cards []Card, pred func(Card) bool) int {
	n := 0
	for _, c := range cards {
		if pred(c) {
			n++
		}
	}
	return n
}

// containsCard reports whether c is in cards.
func containsCard(cards []Card, c Card) bool {
	for _, x := range cards {
		if x == c {
			return true
		}
	}
	return false
}
