// internal/game/engine_adapter.go
package game

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/torxx666/skob26/engine"
	"github.com/torxx666/skob26/service/internal/database"
	"github.com/torxx666/skob26/service/internal/models"
)

// HandleAction applies one client action. Rejections are reported to the
// sender as an error event and returned; they never change the game.
func (g *ChkoubaGame) HandleAction(playerID uuid.UUID, a Action) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.closed {
		return ErrGameClosed
	}
	p := g.getPlayerByID(playerID)
	if p == nil {
		return fmt.Errorf("%w: connection %s is not in session %q", engine.ErrUnknownActor, playerID, g.Key)
	}

	var err error
	switch act := a.(type) {
	case PlayCard:
		err = g.handlePlayCard(p, act)
	case GetState:
		g.fireEventToPlayer(p.ID, GameEvent{Type: EventUpdate, State: g.snapshotPtr()})
	case AnimationComplete:
		g.handleAnimationComplete()
	case NextRound:
		err = g.handleNextRound(p)
	case Reset:
		err = g.requireSeat(p)
		if err == nil {
			err = g.restart(p.ID, "game_reset")
		}
	case StartGame:
		err = g.handleStartGame(p)
	default:
		err = fmt.Errorf("%w: %T", ErrUnsupportedType, a)
	}

	if err != nil {
		g.Log.WithError(err).WithFields(logrus.Fields{
			"player": p.Name,
			"action": fmt.Sprintf("%T", a),
		}).Info("action rejected")
		g.fireEventToPlayer(p.ID, GameEvent{
			Type: EventError,
			Payload: map[string]interface{}{
				"code":    ErrorCode(err),
				"message": err.Error(),
			},
		})
	}
	return err
}

func (g *ChkoubaGame) requireSeat(p *models.Player) error {
	if p.IsSpectator() {
		return fmt.Errorf("%w: %s is spectating", ErrNotYourSeat, p.Name)
	}
	return nil
}

// handlePlayCard validates seat ownership and plays the card through the engine.
// Assumes lock is held by caller.
func (g *ChkoubaGame) handlePlayCard(p *models.Player, act PlayCard) error {
	if err := g.requireSeat(p); err != nil {
		return err
	}
	seat := act.Seat
	if seat == engine.NoPlayer {
		seat = p.Seat
	}
	if seat >= 0 && seat < g.Engine.NumPlayers() && seat != p.Seat {
		return fmt.Errorf("%w: %s holds seat %d, not %d", ErrNotYourSeat, p.Name, p.Seat, seat)
	}

	out, err := g.Engine.Play(seat, act.CardID, act.Option)
	if err != nil {
		return err
	}
	g.Log.WithFields(logrus.Fields{
		"player":  p.Name,
		"card":    act.CardID,
		"capture": !out.Dropped(),
	}).Debug("card played")
	g.afterPlay(p.ID, out)
	return nil
}

// afterPlay advances the sequence, decides what happens next and broadcasts.
// Assumes lock is held by caller.
func (g *ChkoubaGame) afterPlay(actorID uuid.UUID, out engine.Outcome) {
	g.seq++

	payload := map[string]interface{}{
		"seat":    out.Player,
		"card":    out.Card.ID(),
		"chkouba": out.Chkouba,
	}
	if !out.Dropped() {
		payload["captured"] = cardIDs(out.Captured)
	}
	g.logAction(actorID, "play_card", payload)

	switch {
	case out.RoundEnded:
		g.awaitingAck = false
	case out.RefillPending:
		g.awaitingAck = false
		g.schedule(g.Settings.RefillDelay, g.applyRefill)
	default:
		g.armAI()
	}
	g.broadcastUpdate()

	if out.RoundEnded && out.Round != nil {
		g.onRoundEnd(*out.Round)
	}
}

// armAI marks the session as waiting for an acknowledgment when a computer
// seat is to act. Assumes lock is held by caller.
func (g *ChkoubaGame) armAI() {
	g.awaitingAck = g.Engine.AwaitingPlay() && g.Engine.CurrentIsAI()
}

// handleAnimationComplete schedules the pending computer move. Only the
// first acknowledgment after an update counts.
// Assumes lock is held by caller.
func (g *ChkoubaGame) handleAnimationComplete() {
	if !g.awaitingAck {
		return
	}
	g.awaitingAck = false
	g.schedule(g.Settings.AIDelay, g.playAI)
}

// playAI plays the heuristic move for the current computer seat.
// Runs from a timer with the lock held.
func (g *ChkoubaGame) playAI() {
	if !g.Engine.AwaitingPlay() || !g.Engine.CurrentIsAI() {
		g.Log.WithField("seat", g.Engine.CurrentPlayer).Debug("computer move skipped, seat is not computer-controlled")
		return
	}
	move, out, err := g.Engine.PlayAI()
	if err != nil {
		g.Log.WithError(err).Error("computer move failed")
		return
	}
	g.Log.WithFields(logrus.Fields{
		"player":  g.Engine.Players[out.Player].Name,
		"card":    move.CardID(),
		"capture": move.IsCapture(),
	}).Debug("computer played")
	g.afterPlay(uuid.Nil, out)
}

// applyRefill deals the deferred hands.
// Runs from a timer with the lock held.
func (g *ChkoubaGame) applyRefill() {
	if err := g.Engine.Refill(); err != nil {
		g.Log.WithError(err).Warn("refill skipped")
		return
	}
	g.seq++
	g.logAction(uuid.Nil, "refill", map[string]interface{}{"deck": len(g.Engine.Deck)})
	g.armAI()
	g.broadcastUpdate()
}

// onRoundEnd records and announces a scored round.
// Assumes lock is held by caller.
func (g *ChkoubaGame) onRoundEnd(res engine.RoundResult) {
	totals := g.totals()
	g.logAction(uuid.Nil, "round_end", map[string]interface{}{
		"round":    res.Round,
		"totals":   totals,
		"gameOver": res.GameOver,
	})
	g.archiveRound(res, totals)
	g.Log.WithFields(logrus.Fields{"round": res.Round, "totals": totals}).Info("round scored")

	g.fireEvent(GameEvent{
		Type:    EventRoundEnd,
		Payload: map[string]interface{}{"round": res, "totals": totals},
	})
	if res.GameOver {
		winners := g.Engine.Leaders()
		g.Log.WithField("winners", winners).Info("game over")
		g.fireEvent(GameEvent{
			Type:    EventGameEnd,
			Payload: map[string]interface{}{"winners": winners, "totals": totals},
		})
	}
}

// archiveRound stores the round in Postgres, if configured.
// Assumes lock is held by caller.
func (g *ChkoubaGame) archiveRound(res engine.RoundResult, totals map[string]int) {
	if database.DB == nil {
		return
	}
	gameID, key, log := g.ID, g.Key, g.Log
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := database.StoreRoundResult(ctx, gameID, key, res, totals); err != nil {
			log.WithError(err).WithField("round", res.Round).Error("failed archiving round")
		}
	}()
}

// handleNextRound deals the next round of a running game.
// Assumes lock is held by caller.
func (g *ChkoubaGame) handleNextRound(p *models.Player) error {
	if err := g.requireSeat(p); err != nil {
		return err
	}
	if err := g.Engine.StartRound(); err != nil {
		return err
	}
	g.seq++
	g.logAction(p.ID, "round_start", map[string]interface{}{"round": g.Engine.Round})
	g.armAI()
	g.broadcastUpdate()
	return nil
}

// handleStartGame deals a new game once the current one is over.
// Assumes lock is held by caller.
func (g *ChkoubaGame) handleStartGame(p *models.Player) error {
	if err := g.requireSeat(p); err != nil {
		return err
	}
	if !g.Engine.GameOver {
		return ErrGameInProgress
	}
	return g.restart(p.ID, "game_restart")
}

// schedule runs fn after d with the lock held, unless the session was closed
// or its state changed in the meantime. At most one continuation is pending.
// Assumes lock is held by caller.
func (g *ChkoubaGame) schedule(d time.Duration, fn func()) {
	g.stopTimer()
	stamp := g.seq
	g.timer = time.AfterFunc(d, func() {
		g.Mu.Lock()
		defer g.Mu.Unlock()
		if g.closed || g.seq != stamp {
			g.Log.WithField("stamp", stamp).Debug("stale continuation discarded")
			return
		}
		g.timer = nil
		fn()
	})
}

// stopTimer cancels the pending continuation, if any.
// Assumes lock is held by caller.
func (g *ChkoubaGame) stopTimer() {
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
}

// totals copies the cumulative scores.
func (g *ChkoubaGame) totals() map[string]int {
	out := make(map[string]int, len(g.Engine.Scores))
	for k, v := range g.Engine.Scores {
		out[k] = v
	}
	return out
}

func cardIDs(cards []engine.Card) []string {
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.ID()
	}
	return ids
}
