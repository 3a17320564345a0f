// cmd/chkouba-cli/main.go
package main

import (
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"
	"github.com/torxx666/skob26/engine"
)

func main() {
	aiFlag := flag.Int("ai", 1, "number of computer opponents (1-3)")
	targetFlag := flag.Int("target", engine.DefaultTargetScore, "score that ends the game")
	seedFlag := flag.Uint64("seed", 0, "shuffle seed, 0 for a random one")
	pauseFlag := flag.Duration("pause", 700*time.Millisecond, "pause after each computer move")
	flag.Parse()

	title, err := pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("Chk", pterm.FgRed.ToStyle()),
		putils.LettersFromStringWithStyle("ouba", pterm.FgDarkGray.ToStyle()),
	).Srender()
	if err == nil {
		pterm.Print(title)
	}

	name, _ := pterm.DefaultInteractiveTextInput.WithDefaultText("Your name").WithDefaultValue("Player").Show()
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Player"
	}
	pterm.Println()

	seed := *seedFlag
	if seed == 0 {
		seed = rand.Uint64()
	}
	rules := engine.DefaultRules()
	rules.TargetScore = *targetFlag

	g, err := engine.NewGame(seed, rules, []string{name}, *aiFlag)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
	pterm.Info.Printfln("Seed %d, first to %d points", seed, rules.Target())

	if err := play(g, *pauseFlag); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

// play runs rounds until the game is over or the player quits.
func play(g *engine.GameState, pause time.Duration) error {
	for {
		for !g.RoundFinished {
			if g.NeedsRefill() {
				if err := g.Refill(); err != nil {
					return err
				}
				continue
			}
			if g.CurrentIsAI() {
				if err := computerTurn(g, pause); err != nil {
					return err
				}
				continue
			}
			quit, err := humanTurn(g)
			if err != nil {
				return err
			}
			if quit {
				pterm.Info.Println("Bye")
				return nil
			}
		}

		pterm.DefaultPanel.WithPanels([][]pterm.Panel{{roundPanel(g)}}).Render()
		if g.GameOver {
			pterm.Success.Printfln("Winner: %s", strings.Join(g.Leaders(), ", "))
			return nil
		}
		next, _ := pterm.DefaultInteractiveConfirm.WithDefaultText("Play the next round?").WithDefaultValue(true).Show()
		if !next {
			return nil
		}
		if err := g.StartRound(); err != nil {
			return err
		}
	}
}

func computerTurn(g *engine.GameState, pause time.Duration) error {
	seat := g.CurrentPlayer
	m, out, err := g.PlayAI()
	if err != nil {
		return err
	}
	pterm.Info.Println(describe(g.Players[seat].Name, m.Card, out))
	time.Sleep(pause)
	return nil
}

const quitOption = "Quit"

// humanTurn asks for a card and, when it can capture, for the capture to take.
func humanTurn(g *engine.GameState) (bool, error) {
	printState(g)
	seat := g.CurrentPlayer
	hand := g.Players[seat].Hand

	options := make([]string, 0, len(hand)+1)
	for _, c := range hand {
		options = append(options, cardLabel(c))
	}
	options = append(options, quitOption)
	choice, err := pterm.DefaultInteractiveSelect.WithDefaultText("Play a card").WithOptions(options).Show()
	if err != nil {
		return false, err
	}
	if choice == quitOption {
		return true, nil
	}
	card := hand[indexOf(options, choice)]

	captures, err := g.CaptureOptions(card.ID())
	if err != nil {
		return false, err
	}
	var option *int
	if len(captures) > 0 {
		labels := captureLabels(captures)
		picked, err := pterm.DefaultInteractiveSelect.WithDefaultText("Take").WithOptions(labels).Show()
		if err != nil {
			return false, err
		}
		if i := indexOf(labels, picked); i < len(captures) {
			option = &i
		}
	}

	out, err := g.Play(seat, card.ID(), option)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidCaptureOption) {
			pterm.Warning.Println(err)
			return false, nil
		}
		return false, err
	}
	pterm.Info.Println(describe("You", card, out))
	return false, nil
}

// captureLabels lists each capture followed by the option to drop instead.
func captureLabels(captures [][]engine.Card) []string {
	labels := make([]string, 0, len(captures)+1)
	for i, opt := range captures {
		labels = append(labels, fmt.Sprintf("%d: %s", i+1, cardsLabel(opt)))
	}
	return append(labels, "Drop it on the table")
}

func indexOf(options []string, choice string) int {
	for i, o := range options {
		if o == choice {
			return i
		}
	}
	return len(options)
}

// describe narrates one play.
func describe(who string, card engine.Card, out engine.Outcome) string {
	var b strings.Builder
	if out.Dropped() {
		fmt.Fprintf(&b, "%s dropped %s", who, cardLabel(card))
	} else {
		fmt.Fprintf(&b, "%s took %s with %s", who, cardsLabel(out.Captured), cardLabel(card))
	}
	if out.Chkouba {
		b.WriteString(" CHKOUBA!")
	}
	return b.String()
}
