package engine

// Player count bounds. 36 cards remain after the opening table, and every
// refill deals three cards to each seat, so only these counts divide evenly.
const (
	MinPlayers = 2
	MaxPlayers = 4
)

// DefaultTargetScore is the cumulative score that ends the game.
const DefaultTargetScore = 21

// Rules holds configurable game settings.
type Rules struct {
	// TargetScore ends the game once any cumulative score reaches it. 0 = DefaultTargetScore.
	TargetScore int
	// DeferRefill leaves empty hands unfilled after the last card of a deal is
	// played, so a caller can pace the refill and apply it with Refill.
	DeferRefill bool
	// RotateStarter makes the seat after the previous round's starter open each new round.
	RotateStarter bool
}

// DefaultRules returns the standard Chkouba rules.
func DefaultRules() Rules {
	return Rules{
		TargetScore:   DefaultTargetScore,
		DeferRefill:   false,
		RotateStarter: true,
	}
}

// Target returns the effective target, treating 0 as DefaultTargetScore.
func (r Rules) Target() int {
	if r.TargetScore <= 0 {
		return DefaultTargetScore
	}
	return r.TargetScore
}
