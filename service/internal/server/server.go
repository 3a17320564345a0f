// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/torxx666/skob26/engine"
	"github.com/torxx666/skob26/service/internal/auth"
	"github.com/torxx666/skob26/service/internal/game"
	"github.com/torxx666/skob26/service/internal/models"
	"github.com/torxx666/skob26/service/internal/session"
)

const (
	defaultSendBuffer = 32
	writeTimeout      = 5 * time.Second
	maxMessageBytes   = 4096
)

var errBadRequest = errors.New("bad request")

// Server exposes sessions over HTTP and WebSocket.
type Server struct {
	Store          *session.Store
	Auth           *auth.Verifier
	Log            logrus.FieldLogger
	SendBuffer     int      // Per-connection outbound queue length.
	OriginPatterns []string // Extra origins accepted for cross-origin websocket clients.
}

// New returns a server over store. A nil verifier allows anonymous play.
func New(store *session.Store, verifier *auth.Verifier, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{
		Store:      store,
		Auth:       verifier,
		Log:        log,
		SendBuffer: defaultSendBuffer,
	}
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /games", s.handleGames)
	mux.HandleFunc("GET /ws/{gameID}/{player}", s.handleWS)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"sessions": len(s.Store.List()),
	})
}

func (s *Server) handleGames(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Store.List())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// handleWS upgrades the request and runs the connection until it closes.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(r.PathValue("gameID"))
	name := strings.TrimSpace(r.PathValue("player"))
	if key == "" || name == "" {
		http.Error(w, "game id and player name are required", http.StatusBadRequest)
		return
	}
	if err := s.Auth.Authorize(bearerToken(r), name); err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	opts, err := joinOptions(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: s.OriginPatterns})
	if err != nil {
		s.Log.WithError(err).Warn("websocket accept failed")
		return
	}
	conn.SetReadLimit(maxMessageBytes)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	p := models.NewPlayer(name)
	log := s.Log.WithFields(logrus.Fields{"game": key, "player": name, "conn": p.ID})
	cl := newClient(p.ID, conn, s.SendBuffer, cancel)
	go cl.writeLoop(ctx, log)

	sess, err := s.Store.Join(key, p, cl, opts)
	if err != nil {
		log.WithError(err).Warn("join refused")
		conn.Close(websocket.StatusPolicyViolation, truncateReason(err.Error()))
		return
	}
	defer s.Store.Leave(key, p.ID)
	log.Debug("connected")

	s.readLoop(ctx, conn, cl, sess, p.ID, log)
	conn.Close(websocket.StatusNormalClosure, "")
	log.Debug("disconnected")
}

// readLoop decodes client messages into actions until the connection ends.
func (s *Server) readLoop(ctx context.Context, conn *websocket.Conn, cl *client, sess *session.Session, playerID uuid.UUID, log logrus.FieldLogger) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				if ctx.Err() == nil {
					log.WithError(err).Info("read failed")
				}
			}
			return
		}

		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			cl.Send(badRequest(fmt.Errorf("%w: %v", errBadRequest, err)))
			continue
		}
		action, err := msg.action()
		if err != nil {
			cl.Send(badRequest(err))
			continue
		}
		// Rejections are already reported to the client as error events.
		_ = sess.Game.HandleAction(playerID, action)
	}
}

func badRequest(err error) game.GameEvent {
	return game.GameEvent{
		Type: game.EventError,
		Payload: map[string]interface{}{
			"code":    "bad_request",
			"message": err.Error(),
		},
	}
}

// inbound is a client message.
type inbound struct {
	Type        string `json:"type"`
	PlayerIndex *int   `json:"player_index,omitempty"`
	CardID      string `json:"card_id,omitempty"`
	ComboIndex  *int   `json:"combo_index,omitempty"`
}

func (m inbound) action() (game.Action, error) {
	switch strings.ToUpper(m.Type) {
	case "PLAY_CARD":
		if m.CardID == "" {
			return nil, fmt.Errorf("%w: card_id is required", errBadRequest)
		}
		seat := engine.NoPlayer
		if m.PlayerIndex != nil {
			seat = *m.PlayerIndex
		}
		return game.PlayCard{Seat: seat, CardID: m.CardID, Option: m.ComboIndex}, nil
	case "GET_STATE":
		return game.GetState{}, nil
	case "ANIMATION_COMPLETE":
		return game.AnimationComplete{}, nil
	case "NEXT_ROUND":
		return game.NextRound{}, nil
	case "RESET":
		return game.Reset{}, nil
	case "START_GAME":
		return game.StartGame{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown message type %q", errBadRequest, m.Type)
	}
}

// joinOptions reads the seat layout used when the join creates the session.
func joinOptions(r *http.Request) (session.JoinOptions, error) {
	opts := session.JoinOptions{AICount: -1}
	q := r.URL.Query()
	if v := q.Get("humans"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return opts, fmt.Errorf("invalid humans %q", v)
		}
		opts.Humans = n
	}
	if v := q.Get("ai"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, fmt.Errorf("invalid ai %q", v)
		}
		opts.AICount = n
	}
	return opts, nil
}

// bearerToken reads the player token from the Authorization header or the
// token query parameter; browsers cannot set headers on websocket requests.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// truncateReason fits a close reason into a control frame.
func truncateReason(s string) string {
	if len(s) > 120 {
		return s[:120]
	}
	return s
}

// client is one websocket connection attached to a session.
type client struct {
	id     uuid.UUID
	conn   *websocket.Conn
	send   chan game.GameEvent
	cancel context.CancelFunc
}

func newClient(id uuid.UUID, conn *websocket.Conn, buffer int, cancel context.CancelFunc) *client {
	if buffer <= 0 {
		buffer = defaultSendBuffer
	}
	return &client{id: id, conn: conn, send: make(chan game.GameEvent, buffer), cancel: cancel}
}

func (c *client) ID() uuid.UUID { return c.id }

// Send queues ev. A full queue disconnects the client.
func (c *client) Send(ev game.GameEvent) bool {
	select {
	case c.send <- ev:
		return true
	default:
		c.cancel()
		return false
	}
}

func (c *client) writeLoop(ctx context.Context, log logrus.FieldLogger) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-c.send:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(wctx, c.conn, ev)
			cancel()
			if err != nil {
				if ctx.Err() == nil {
					log.WithError(err).Info("write failed")
				}
				c.cancel()
				return
			}
		}
	}
}
