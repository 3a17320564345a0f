// internal/game/actions.go
package game

import (
	"errors"

	"github.com/torxx666/skob26/engine"
)

// Errors raised by the coordinator on top of the engine's.
var (
	ErrNotYourSeat     = errors.New("seat is not controlled by this connection")
	ErrGameInProgress  = errors.New("game is still in progress")
	ErrGameClosed      = errors.New("game session is closed")
	ErrUnsupportedType = errors.New("unsupported action")
)

// Action is a client request handled by ChkoubaGame.HandleAction.
type Action interface {
	isAction()
}

// PlayCard plays a card from the sender's seat. A nil Option drops the card.
// Seat may be engine.NoPlayer to mean the sender's own seat.
type PlayCard struct {
	Seat   int
	CardID string
	Option *int
}

// GetState asks for a snapshot sent only to the requester.
type GetState struct{}

// AnimationComplete tells the coordinator that the client finished presenting
// the last update; a pending computer move may then be scheduled.
type AnimationComplete struct{}

// NextRound starts the next round after a finished, non-final round.
type NextRound struct{}

// Reset restarts the session with the same seats.
type Reset struct{}

// StartGame starts a fresh game once the current one is over.
type StartGame struct{}

func (PlayCard) isAction()          {}
func (GetState) isAction()          {}
func (AnimationComplete) isAction() {}
func (NextRound) isAction()         {}
func (Reset) isAction()             {}
func (StartGame) isAction()         {}

// ErrorCode maps an action error to the stable code sent to clients.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, engine.ErrUnknownActor):
		return "unknown_actor"
	case errors.Is(err, engine.ErrActionOutOfTurn):
		return "out_of_turn"
	case errors.Is(err, engine.ErrCardNotInHand):
		return "card_not_in_hand"
	case errors.Is(err, engine.ErrInvalidCaptureOption):
		return "invalid_capture_option"
	case errors.Is(err, engine.ErrRoundFinished):
		return "round_finished"
	case errors.Is(err, engine.ErrRoundInProgress):
		return "round_in_progress"
	case errors.Is(err, engine.ErrRefillPending):
		return "refill_pending"
	case errors.Is(err, engine.ErrGameOver):
		return "game_over"
	case errors.Is(err, ErrNotYourSeat):
		return "not_your_seat"
	case errors.Is(err, ErrGameInProgress):
		return "game_in_progress"
	case errors.Is(err, ErrGameClosed):
		return "game_closed"
	case errors.Is(err, ErrUnsupportedType):
		return "unsupported_action"
	default:
		return "internal"
	}
}
