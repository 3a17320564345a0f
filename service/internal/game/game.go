// internal/game/game.go
package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/torxx666/skob26/engine"
	"github.com/torxx666/skob26/service/internal/cache"
	"github.com/torxx666/skob26/service/internal/models"
)

// GameEventType represents the type of a game-related event broadcast via WebSockets.
type GameEventType string

// Constants defining the GameEvent types used for WebSocket communication.
const (
	EventInit        GameEventType = "INIT"         // Full state for a new connection or a restarted game.
	EventUpdate      GameEventType = "UPDATE"       // Full state after a mutation, or in reply to GET_STATE.
	EventError       GameEventType = "ERROR"        // Private: the sender's action was rejected.
	EventRoundEnd    GameEventType = "ROUND_END"    // Public: round summary with per-category points.
	EventGameEnd     GameEventType = "GAME_END"     // Public: final totals and winners.
	EventPlayerJoin  GameEventType = "PLAYER_JOIN"  // Public: a participant connected.
	EventPlayerLeave GameEventType = "PLAYER_LEAVE" // Public: a participant disconnected.
)

// Pacing defaults for computer moves and mid-round refills.
const (
	DefaultAIDelay     = 600 * time.Millisecond
	DefaultRefillDelay = 1500 * time.Millisecond
)

// EventUser identifies a participant within a GameEvent payload.
type EventUser struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Seat int       `json:"seat"`
}

// GameEvent is the standard structure for broadcasting game state changes.
type GameEvent struct {
	Type    GameEventType          `json:"type"`
	User    *EventUser             `json:"user,omitempty"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	State   *Snapshot              `json:"state,omitempty"`
}

// Settings configures a session's rules and pacing.
type Settings struct {
	Rules       engine.Rules
	AIDelay     time.Duration
	RefillDelay time.Duration
	// Seed returns the shuffle seed for each new game. Nil seeds from the clock.
	Seed func() uint64
}

// DefaultSettings returns standard rules and pacing.
func DefaultSettings() Settings {
	return Settings{
		Rules:       engine.DefaultRules(),
		AIDelay:     DefaultAIDelay,
		RefillDelay: DefaultRefillDelay,
	}
}

// ChkoubaGame coordinates one session: it owns the engine state, serializes
// actions, paces computer moves and fans state out to participants.
type ChkoubaGame struct {
	ID       uuid.UUID // Identifier of the current game; changes on every restart.
	Key      string    // Session key chosen by clients.
	AICount  int
	Settings Settings

	Engine  *engine.GameState
	Players []*models.Player // Connected participants, seated or spectating.

	// seq advances on every state change. Scheduled continuations carry the
	// value current when they were scheduled and do nothing if it moved on.
	seq         uint64
	actionIndex int
	awaitingAck bool // A computer seat is to act once a client acknowledges the last update.
	timer       *time.Timer
	closed      bool

	Mu sync.Mutex

	BroadcastFn         func(ev GameEvent)                     // Sends an event to all participants.
	BroadcastToPlayerFn func(playerID uuid.UUID, ev GameEvent) // Sends an event to one participant.

	Log logrus.FieldLogger
}

// NewChkoubaGame creates a session and deals its first game. A nil log
// falls back to the standard logger.
func NewChkoubaGame(key string, humans []string, aiCount int, s Settings, log logrus.FieldLogger) (*ChkoubaGame, error) {
	if log == nil {
		log = logrus.StandardLogger().WithField("game", key)
	}
	g := &ChkoubaGame{
		Key:      key,
		AICount:  aiCount,
		Settings: s,
		Log:      log,
	}
	if err := g.newEngine(humans); err != nil {
		return nil, err
	}
	return g, nil
}

// newEngine replaces the engine state with a fresh deal for humans plus the
// session's computer seats, invalidating anything scheduled.
// Assumes lock is held by caller.
func (g *ChkoubaGame) newEngine(humans []string) error {
	rules := g.Settings.Rules
	rules.DeferRefill = true

	seed := uint64(time.Now().UnixNano())
	if g.Settings.Seed != nil {
		seed = g.Settings.Seed()
	}
	eng, err := engine.NewGame(seed, rules, humans, g.AICount)
	if err != nil {
		return fmt.Errorf("new game for session %q: %w", g.Key, err)
	}

	g.stopTimer()
	g.ID = uuid.New()
	g.Engine = eng
	g.seq++
	g.armAI()
	g.logAction(uuid.Nil, "game_start", map[string]interface{}{
		"humans": humans,
		"ai":     g.AICount,
		"seed":   seed,
	})
	g.Log.WithField("gameId", g.ID).Info("game dealt")
	return nil
}

// humanNames returns the current names of the human seats, in seat order.
func (g *ChkoubaGame) humanNames() []string {
	var names []string
	for _, p := range g.Engine.Players {
		if !p.IsAI {
			names = append(names, p.Name)
		}
	}
	return names
}

// restart deals a new game with the same seats and sends everyone the init state.
// Assumes lock is held by caller.
func (g *ChkoubaGame) restart(actorID uuid.UUID, reason string) error {
	if err := g.newEngine(g.humanNames()); err != nil {
		return err
	}
	g.logAction(actorID, reason, nil)
	g.fireEvent(GameEvent{Type: EventInit, State: g.snapshotPtr()})
	return nil
}

// Join seats p and sends it the current state. A participant whose name
// matches a free human seat takes it; otherwise the first free human seat is
// renamed to p.Name. With no free seat p joins as a spectator. A game that is
// already over is replaced by a fresh one first.
func (g *ChkoubaGame) Join(p *models.Player) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.closed {
		return ErrGameClosed
	}
	if g.Engine.GameOver {
		if err := g.newEngine(g.humanNames()); err != nil {
			return err
		}
		g.fireEvent(GameEvent{Type: EventInit, State: g.snapshotPtr()})
	}

	renamed := g.bindSeat(p)
	p.Connected = true
	g.Players = append(g.Players, p)

	log := g.Log.WithFields(logrus.Fields{"player": p.Name, "seat": p.Seat})
	if renamed {
		log.Info("player took over a free seat")
	} else {
		log.Info("player joined")
	}
	g.logAction(p.ID, "player_join", map[string]interface{}{
		"name":    p.Name,
		"seat":    p.Seat,
		"renamed": renamed,
	})

	g.fireEventToPlayer(p.ID, GameEvent{Type: EventInit, User: eventUser(p), State: g.snapshotPtr()})
	g.fireEvent(GameEvent{Type: EventPlayerJoin, User: eventUser(p), State: g.snapshotPtr()})
	return nil
}

// bindSeat assigns p.Seat and reports whether a seat was renamed for it.
// Assumes lock is held by caller.
func (g *ChkoubaGame) bindSeat(p *models.Player) bool {
	p.Seat = models.SpectatorSeat
	if seat := g.Engine.PlayerIndex(p.Name); seat != engine.NoPlayer {
		if !g.Engine.Players[seat].IsAI && !g.seatHeld(seat) {
			p.Seat = seat
		}
		return false
	}
	for i, ep := range g.Engine.Players {
		if ep.IsAI || g.seatHeld(i) {
			continue
		}
		if err := g.Engine.RenamePlayer(i, p.Name); err != nil {
			g.Log.WithError(err).WithField("player", p.Name).Warn("could not rename seat")
			return false
		}
		p.Seat = i
		return true
	}
	return false
}

// seatHeld reports whether a connected participant occupies seat.
func (g *ChkoubaGame) seatHeld(seat int) bool {
	for _, p := range g.Players {
		if p.Seat == seat && p.Connected {
			return true
		}
	}
	return false
}

// Leave removes a participant. Its seat stays in the game and may be taken over.
func (g *ChkoubaGame) Leave(playerID uuid.UUID) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	for i, p := range g.Players {
		if p.ID != playerID {
			continue
		}
		p.Connected = false
		g.Players = append(g.Players[:i], g.Players[i+1:]...)
		g.Log.WithField("player", p.Name).Info("player left")
		g.logAction(p.ID, "player_leave", nil)
		g.fireEvent(GameEvent{Type: EventPlayerLeave, User: eventUser(p)})
		return
	}
	g.Log.WithField("playerId", playerID).Debug("leave for unknown participant ignored")
}

// Close stops the session. Pending continuations are dropped and further
// actions are refused.
func (g *ChkoubaGame) Close() {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	if g.closed {
		return
	}
	g.closed = true
	g.stopTimer()
	g.logAction(uuid.Nil, "session_closed", nil)
	g.Log.Info("session closed")
}

// Closed reports whether Close was called.
func (g *ChkoubaGame) Closed() bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.closed
}

// fireEvent broadcasts an event to all participants via the BroadcastFn callback.
// Assumes lock is held by caller.
func (g *ChkoubaGame) fireEvent(ev GameEvent) {
	if g.BroadcastFn != nil {
		g.BroadcastFn(ev)
	} else {
		g.Log.WithField("event", ev.Type).Debug("BroadcastFn is nil, event dropped")
	}
}

// fireEventToPlayer sends an event to one connected participant.
// Assumes lock is held by caller.
func (g *ChkoubaGame) fireEventToPlayer(playerID uuid.UUID, ev GameEvent) {
	if g.BroadcastToPlayerFn == nil {
		g.Log.WithField("event", ev.Type).Debug("BroadcastToPlayerFn is nil, event dropped")
		return
	}
	if p := g.getPlayerByID(playerID); p != nil && p.Connected {
		g.BroadcastToPlayerFn(playerID, ev)
	}
}

// broadcastUpdate sends the current state to everyone.
// Assumes lock is held by caller.
func (g *ChkoubaGame) broadcastUpdate() {
	g.fireEvent(GameEvent{Type: EventUpdate, State: g.snapshotPtr()})
}

func (g *ChkoubaGame) getPlayerByID(playerID uuid.UUID) *models.Player {
	for _, p := range g.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

func eventUser(p *models.Player) *EventUser {
	return &EventUser{ID: p.ID, Name: p.Name, Seat: p.Seat}
}

// logAction records an action in the Redis history stream, if configured.
// Assumes lock is held by caller.
func (g *ChkoubaGame) logAction(actorID uuid.UUID, actionType string, payload map[string]interface{}) {
	g.actionIndex++
	if payload == nil {
		payload = make(map[string]interface{})
	}
	if cache.Rdb == nil {
		return
	}
	record := cache.GameActionRecord{
		GameID:        g.ID,
		SessionKey:    g.Key,
		ActionIndex:   g.actionIndex,
		ActorUserID:   actorID,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}
	log := g.Log
	go func(rec cache.GameActionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.PublishGameAction(ctx, rec); err != nil {
			log.WithError(err).WithFields(logrus.Fields{
				"index":  rec.ActionIndex,
				"action": rec.ActionType,
			}).Error("failed publishing action")
		}
	}(record)
}
