package engine

import (
	"encoding/json"
	"testing"
)

// mustCard parses a card id or fails the test.
func mustCard(t *testing.T, id string) Card {
	t.Helper()
	c, err := ParseCard(id)
	if err != nil {
		t.Fatalf("ParseCard(%q): %v", id, err)
	}
	return c
}

// cards parses a list of card ids.
func cards(t *testing.T, ids ...string) []Card {
	t.Helper()
	out := make([]Card, len(ids))
	for i, id := range ids {
		out[i] = mustCard(t, id)
	}
	return out
}

// TestCardSuitValue verifies Suit/Value roundtrip for every card in the deck.
func TestCardSuitValue(t *testing.T) {
	for s := Suit(0); s < NumSuits; s++ {
		for v := uint8(MinValue); v <= MaxValue; v++ {
			c := NewCard(s, v)
			if c.Suit() != s {
				t.Errorf("NewCard(%d,%d).Suit() = %d", s, v, c.Suit())
			}
			if c.Value() != v {
				t.Errorf("NewCard(%d,%d).Value() = %d", s, v, c.Value())
			}
			if !c.Valid() {
				t.Errorf("NewCard(%d,%d) not valid", s, v)
			}
		}
	}
	if NoCard.Valid() {
		t.Error("NoCard should not be valid")
	}
}

// TestCardID verifies the value-then-suit id format and its parser.
func TestCardID(t *testing.T) {
	tests := []struct {
		card Card
		want string
	}{
		{NewCard(SuitDiamonds, 7), "7D"},
		{NewCard(SuitHearts, 1), "1H"},
		{NewCard(SuitSpades, 10), "10S"},
		{NewCard(SuitClubs, 5), "5C"},
	}
	for _, tt := range tests {
		if got := tt.card.ID(); got != tt.want {
			t.Errorf("ID() = %q, want %q", got, tt.want)
		}
		back, err := ParseCard(tt.want)
		if err != nil {
			t.Errorf("ParseCard(%q): %v", tt.want, err)
			continue
		}
		if back != tt.card {
			t.Errorf("ParseCard(%q) = %v, want %v", tt.want, back, tt.card)
		}
	}
	if SebaaDinari.ID() != "7D" {
		t.Errorf("SebaaDinari = %s, want 7D", SebaaDinari)
	}
}

// TestParseCardRejects verifies malformed ids are refused.
func TestParseCardRejects(t *testing.T) {
	for _, id := range []string{"", "7", "7X", "0D", "11H", "AH", "100C"} {
		if _, err := ParseCard(id); err == nil {
			t.Errorf("ParseCard(%q): expected error", id)
		}
	}
}

// TestCardJSON verifies the client-facing encoding.
func TestCardJSON(t *testing.T) {
	data, err := json.Marshal(NewCard(SuitSpades, 10))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"id":"10S","suit":"S","value":10}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}

	var c Card
	if err := json.Unmarshal(data, &c); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if c != NewCard(SuitSpades, 10) {
		t.Errorf("Unmarshal = %v", c)
	}
}

// TestPlayerJSON verifies the state field names browser clients read.
func TestPlayerJSON(t *testing.T) {
	p := Player{Name: "A", Captured: cards(t, "3D"), IsAI: true}
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for _, key := range []string{"name", "hand", "captured_cards", "chkoubas", "is_ai"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("missing %q in %s", key, data)
		}
	}
}

// TestPlayerHasCard verifies hand lookup by id.
func TestPlayerHasCard(t *testing.T) {
	p := Player{Name: "A", Hand: cards(t, "3D", "10C")}
	if !p.HasCard("10C") {
		t.Error("expected 10C in hand")
	}
	if p.HasCard("3C") {
		t.Error("did not expect 3C in hand")
	}
}
