package engine

import "errors"

// Errors returned by GameState operations. None of them leave the state modified.
var (
	ErrUnknownActor         = errors.New("unknown actor")
	ErrActionOutOfTurn      = errors.New("action out of turn")
	ErrCardNotInHand        = errors.New("card not in hand")
	ErrInvalidCaptureOption = errors.New("invalid capture option")

	ErrRoundFinished   = errors.New("round is finished")
	ErrRoundInProgress = errors.New("round is still in progress")
	ErrRefillPending   = errors.New("hands are waiting to be refilled")
	ErrNoRefillNeeded  = errors.New("no refill needed")
	ErrGameOver        = errors.New("game is over")
	ErrPlayerCount     = errors.New("unsupported number of players")
	ErrDuplicateName   = errors.New("duplicate player name")
)
