package engine

import (
	"testing"
)

// optionIDs renders options as id lists for comparison.
func optionIDs(options [][]Card) [][]string {
	out := make([][]string, len(options))
	for i, opt := range options {
		for _, c := range opt {
			out[i] = append(out[i], c.ID())
		}
	}
	return out
}

func equalOptions(a, b [][]string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}

// TestCaptures covers the direct-match priority and the sum rule.
func TestCaptures(t *testing.T) {
	tests := []struct {
		name   string
		table  []string
		played string
		want   [][]string
	}{
		{
			name:   "direct match beats an equal sum",
			table:  []string{"3D", "5S", "2C"},
			played: "5H",
			want:   [][]string{{"5S"}},
		},
		{
			name:   "sum when no direct match",
			table:  []string{"3D", "2C", "6S"},
			played: "5H",
			want:   [][]string{{"3D", "2C"}},
		},
		{
			name:   "one option per direct match in table order",
			table:  []string{"4C", "1D", "4H"},
			played: "4S",
			want:   [][]string{{"4C"}, {"4H"}},
		},
		{
			name:   "sums ordered by size then table order",
			table:  []string{"2D", "3D", "1C", "5C"},
			played: "6S",
			want:   [][]string{{"1C", "5C"}, {"2D", "3D", "1C"}},
		},
		{
			name:   "several pairs",
			table:  []string{"1D", "6H", "2S", "5C"},
			played: "7D",
			want:   [][]string{{"1D", "6H"}, {"2S", "5C"}},
		},
		{
			name:   "whole table",
			table:  []string{"1D", "2H", "3S", "4C"},
			played: "10D",
			want:   [][]string{{"1D", "2H", "3S", "4C"}},
		},
		{
			name:   "no capture",
			table:  []string{"8D", "9H"},
			played: "3S",
			want:   [][]string{},
		},
		{
			name:   "empty table",
			table:  nil,
			played: "3S",
			want:   [][]string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := optionIDs(Captures(cards(t, tt.table...), mustCard(t, tt.played)))
			if !equalOptions(got, tt.want) {
				t.Errorf("Captures(%v, %s) = %v, want %v", tt.table, tt.played, got, tt.want)
			}
		})
	}
}

// TestCapturesDoesNotMutateTable verifies the resolver is pure.
func TestCapturesDoesNotMutateTable(t *testing.T) {
	table := cards(t, "1D", "2H", "3S", "4C", "5D")
	before := append([]Card(nil), table...)
	_ = Captures(table, mustCard(t, "6C"))
	for i := range table {
		if table[i] != before[i] {
			t.Fatalf("table mutated at %d", i)
		}
	}
}

// TestCanCapture verifies the boolean shortcut.
func TestCanCapture(t *testing.T) {
	table := cards(t, "2D", "3H")
	if !CanCapture(table, mustCard(t, "5S")) {
		t.Error("5 should capture 2+3")
	}
	if CanCapture(table, mustCard(t, "4S")) {
		t.Error("4 should not capture")
	}
}

// TestCaptureOptions verifies lookup through the current player's hand.
func TestCaptureOptions(t *testing.T) {
	g := craftGame(cards(t, "5S"), cards(t, "5H", "9C"), cards(t, "1D"))
	opts, err := g.CaptureOptions("5H")
	if err != nil {
		t.Fatalf("CaptureOptions: %v", err)
	}
	if len(opts) != 1 {
		t.Errorf("len(opts) = %d, want 1", len(opts))
	}
	if _, err := g.CaptureOptions("1D"); err != ErrCardNotInHand {
		t.Errorf("err = %v, want ErrCardNotInHand", err)
	}
}
