// internal/session/store.go
package session

import (
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/torxx666/skob26/engine"
	"github.com/torxx666/skob26/service/internal/game"
	"github.com/torxx666/skob26/service/internal/models"
)

// Conn delivers events to one participant. Send must not block.
type Conn interface {
	ID() uuid.UUID
	Send(ev game.GameEvent) bool
}

// Session is one game plus the connections watching it.
type Session struct {
	Key  string
	Game *game.ChkoubaGame

	mu    sync.RWMutex
	conns map[uuid.UUID]Conn
	log   logrus.FieldLogger
}

func newSession(key string, g *game.ChkoubaGame, log logrus.FieldLogger) *Session {
	s := &Session{
		Key:   key,
		Game:  g,
		conns: make(map[uuid.UUID]Conn),
		log:   log,
	}
	g.BroadcastFn = s.broadcast
	g.BroadcastToPlayerFn = s.sendTo
	return s
}

func (s *Session) broadcast(ev game.GameEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, c := range s.conns {
		if !c.Send(ev) {
			s.log.WithFields(logrus.Fields{"conn": id, "event": ev.Type}).Warn("event dropped for slow connection")
		}
	}
}

func (s *Session) sendTo(playerID uuid.UUID, ev game.GameEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.conns[playerID]; ok && !c.Send(ev) {
		s.log.WithFields(logrus.Fields{"conn": playerID, "event": ev.Type}).Warn("event dropped for slow connection")
	}
}

func (s *Session) add(c Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[c.ID()] = c
}

// remove drops a connection and reports whether none remain.
func (s *Session) remove(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, id)
	return len(s.conns) == 0
}

// Connections returns the number of attached connections.
func (s *Session) Connections() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conns)
}

// JoinOptions shape a session when the join creates it. They are ignored
// for sessions that already exist.
type JoinOptions struct {
	Humans  int // Human seats, the joining player included. 0 means 1.
	AICount int // Computer seats. Negative means the store default.
}

// Store owns every live session. A session is created by the first join
// for its key and removed when its last connection leaves.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session

	Settings game.Settings
	AICount  int
	Log      logrus.FieldLogger
}

// NewStore returns an empty store creating games with settings and aiCount computer seats.
func NewStore(settings game.Settings, aiCount int, log logrus.FieldLogger) *Store {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{
		sessions: make(map[string]*Session),
		Settings: settings,
		AICount:  aiCount,
		Log:      log,
	}
}

// Join attaches c to the session key, creating it if needed, and seats p.
func (st *Store) Join(key string, p *models.Player, c Conn, opts JoinOptions) (*Session, error) {
	st.mu.Lock()
	sess, ok := st.sessions[key]
	if !ok {
		var err error
		sess, err = st.create(key, p.Name, opts)
		if err != nil {
			st.mu.Unlock()
			return nil, err
		}
		st.sessions[key] = sess
	}
	sess.add(c)
	st.mu.Unlock()

	if err := sess.Game.Join(p); err != nil {
		st.Leave(key, c.ID())
		return nil, err
	}
	return sess, nil
}

// create builds a session. Assumes st.mu is held.
func (st *Store) create(key, first string, opts JoinOptions) (*Session, error) {
	humans := opts.Humans
	if humans <= 0 {
		humans = 1
	}
	ai := opts.AICount
	if ai < 0 {
		ai = st.AICount
	}
	if humans+ai < engine.MinPlayers || humans+ai > engine.MaxPlayers {
		return nil, fmt.Errorf("%w: %d humans and %d computer seats", engine.ErrPlayerCount, humans, ai)
	}

	log := st.Log.WithField("game", key)
	g, err := game.NewChkoubaGame(key, seatNames(first, humans), ai, st.Settings, log)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{"humans": humans, "ai": ai}).Info("session created")
	return newSession(key, g, log), nil
}

// seatNames names the human seats: first, then placeholders for the others.
func seatNames(first string, humans int) []string {
	names := []string{first}
	for n := 2; len(names) < humans; n++ {
		name := "Player " + strconv.Itoa(n)
		if name != first {
			names = append(names, name)
		}
	}
	return names
}

// Leave detaches a connection. The last connection out closes the game.
func (st *Store) Leave(key string, connID uuid.UUID) {
	st.mu.Lock()
	sess, ok := st.sessions[key]
	if !ok {
		st.mu.Unlock()
		return
	}
	empty := sess.remove(connID)
	if empty {
		delete(st.sessions, key)
	}
	st.mu.Unlock()

	sess.Game.Leave(connID)
	if empty {
		sess.Game.Close()
		st.Log.WithField("game", key).Info("session removed")
	}
}

// Get returns the session for key, if any.
func (st *Store) Get(key string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	sess, ok := st.sessions[key]
	return sess, ok
}

// List summarizes every session, ordered by key.
func (st *Store) List() []game.Summary {
	st.mu.Lock()
	sessions := make([]*Session, 0, len(st.sessions))
	for _, s := range st.sessions {
		sessions = append(sessions, s)
	}
	st.mu.Unlock()

	out := make([]game.Summary, len(sessions))
	for i, s := range sessions {
		out[i] = s.Game.GetSummary()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Session < out[j].Session })
	return out
}

// Shutdown closes every game and forgets all sessions.
func (st *Store) Shutdown() {
	st.mu.Lock()
	sessions := st.sessions
	st.sessions = make(map[string]*Session)
	st.mu.Unlock()

	for _, s := range sessions {
		s.Game.Close()
	}
}
