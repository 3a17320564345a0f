package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/torxx666/skob26/service/internal/auth"
	"github.com/torxx666/skob26/service/internal/game"
	"github.com/torxx666/skob26/service/internal/session"
)

func setupServer(t *testing.T, verifier *auth.Verifier) (*httptest.Server, *session.Store) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	settings := game.DefaultSettings()
	settings.AIDelay = time.Millisecond
	settings.RefillDelay = time.Millisecond
	store := session.NewStore(settings, 1, log)

	srv := httptest.NewServer(New(store, verifier, log).Routes())
	t.Cleanup(func() {
		srv.Close()
		store.Shutdown()
	})
	return srv, store
}

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

// readUntil reads events until one of type want arrives.
func readUntil(t *testing.T, conn *websocket.Conn, want game.GameEventType) game.GameEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		var ev game.GameEvent
		require.NoError(t, wsjson.Read(ctx, conn, &ev))
		if ev.Type == want {
			return ev
		}
	}
}

func send(t *testing.T, conn *websocket.Conn, msg interface{}) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, wsjson.Write(ctx, conn, msg))
}

func TestHealthz(t *testing.T) {
	srv, _ := setupServer(t, nil)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestConnectReceivesInit(t *testing.T) {
	srv, _ := setupServer(t, nil)
	conn := dial(t, srv, "/ws/room1/Alice")

	ev := readUntil(t, conn, game.EventInit)
	require.NotNil(t, ev.State)
	assert.Equal(t, "room1", ev.State.Session)
	assert.Equal(t, "Alice", ev.State.Players[0].Name)
	assert.Len(t, ev.State.Players[0].Hand, 3)
	assert.Equal(t, 0, ev.User.Seat)
}

func TestInitWireFormat(t *testing.T) {
	srv, _ := setupServer(t, nil)
	conn := dial(t, srv, "/ws/room1/Alice")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var msg struct {
		Type  string `json:"type"`
		State struct {
			CurrentPlayerIndex *int            `json:"current_player_index"`
			LastCapture        json.RawMessage `json:"last_capture_player_index"`
			RoundFinished      *bool           `json:"round_finished"`
			Players            []struct {
				Name          string            `json:"name"`
				IsAI          bool              `json:"is_ai"`
				CapturedCards []json.RawMessage `json:"captured_cards"`
				Hand          []struct {
					ID string `json:"id"`
				} `json:"hand"`
			} `json:"players"`
		} `json:"state"`
	}
	require.NoError(t, wsjson.Read(ctx, conn, &msg))

	assert.Equal(t, "INIT", msg.Type)
	require.NotNil(t, msg.State.CurrentPlayerIndex)
	assert.Equal(t, 0, *msg.State.CurrentPlayerIndex)
	assert.Equal(t, "null", string(msg.State.LastCapture))
	require.NotNil(t, msg.State.RoundFinished)
	assert.False(t, *msg.State.RoundFinished)
	require.Len(t, msg.State.Players, 2)
	assert.Equal(t, "Alice", msg.State.Players[0].Name)
	assert.True(t, msg.State.Players[1].IsAI)
	assert.NotNil(t, msg.State.Players[0].CapturedCards)
	assert.Len(t, msg.State.Players[0].Hand, 3)
}

func TestPlayCardOverWebsocket(t *testing.T) {
	srv, _ := setupServer(t, nil)
	conn := dial(t, srv, "/ws/room1/Alice")
	init := readUntil(t, conn, game.EventInit)

	send(t, conn, map[string]interface{}{
		"type":         "PLAY_CARD",
		"player_index": 0,
		"card_id":      init.State.Players[0].Hand[0].ID(),
	})
	ev := readUntil(t, conn, game.EventUpdate)
	assert.Equal(t, 1, ev.State.CurrentPlayer)
	assert.True(t, ev.State.AwaitingAck)

	send(t, conn, map[string]interface{}{"type": "ANIMATION_COMPLETE"})
	ev = readUntil(t, conn, game.EventUpdate)
	assert.Equal(t, 0, ev.State.CurrentPlayer, "computer replied after the ack")
}

func TestBadMessagesKeepConnection(t *testing.T) {
	srv, _ := setupServer(t, nil)
	conn := dial(t, srv, "/ws/room1/Alice")
	readUntil(t, conn, game.EventInit)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte("{not json")))
	ev := readUntil(t, conn, game.EventError)
	assert.Equal(t, "bad_request", ev.Payload["code"])

	send(t, conn, map[string]interface{}{"type": "DANCE"})
	ev = readUntil(t, conn, game.EventError)
	assert.Equal(t, "bad_request", ev.Payload["code"])

	send(t, conn, map[string]interface{}{"type": "PLAY_CARD", "card_id": "99Z"})
	ev = readUntil(t, conn, game.EventError)
	assert.Equal(t, "card_not_in_hand", ev.Payload["code"])

	send(t, conn, map[string]interface{}{"type": "get_state"})
	ev = readUntil(t, conn, game.EventUpdate)
	assert.NotNil(t, ev.State)
}

func TestGamesListingAndCleanup(t *testing.T) {
	srv, store := setupServer(t, nil)
	conn := dial(t, srv, "/ws/lobby/Alice?ai=2")
	readUntil(t, conn, game.EventInit)

	resp, err := http.Get(srv.URL + "/games")
	require.NoError(t, err)
	defer resp.Body.Close()
	var list []game.Summary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, "lobby", list[0].Session)
	assert.Equal(t, []string{"Alice", "AI 1", "AI 2"}, list[0].Players)

	conn.Close(websocket.StatusNormalClosure, "bye")
	require.Eventually(t, func() bool {
		_, ok := store.Get("lobby")
		return !ok
	}, 5*time.Second, 10*time.Millisecond)
}

func TestRejectsBadQuery(t *testing.T) {
	srv, _ := setupServer(t, nil)
	resp, err := http.Get(srv.URL + "/ws/room1/Alice?humans=zero")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTokenRequiredWhenConfigured(t *testing.T) {
	verifier := auth.NewVerifier("s3cret")
	srv, _ := setupServer(t, verifier)

	resp, err := http.Get(srv.URL + "/ws/room1/Alice")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token, err := verifier.Issue("Bob", time.Hour)
	require.NoError(t, err)
	resp, err = http.Get(srv.URL + "/ws/room1/Alice?token=" + token)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token, err = verifier.Issue("Alice", time.Hour)
	require.NoError(t, err)
	conn := dial(t, srv, "/ws/room1/Alice?token="+token)
	readUntil(t, conn, game.EventInit)
}

func TestInboundAction(t *testing.T) {
	seat := 2
	opt := 1
	a, err := inbound{Type: "play_card", PlayerIndex: &seat, CardID: "7D", ComboIndex: &opt}.action()
	require.NoError(t, err)
	assert.Equal(t, game.PlayCard{Seat: 2, CardID: "7D", Option: &opt}, a)

	a, err = inbound{Type: "PLAY_CARD", CardID: "7D"}.action()
	require.NoError(t, err)
	assert.Equal(t, -1, a.(game.PlayCard).Seat)

	_, err = inbound{Type: "PLAY_CARD"}.action()
	assert.ErrorIs(t, err, errBadRequest)

	for typ, want := range map[string]game.Action{
		"GET_STATE":          game.GetState{},
		"ANIMATION_COMPLETE": game.AnimationComplete{},
		"NEXT_ROUND":         game.NextRound{},
		"RESET":              game.Reset{},
		"START_GAME":         game.StartGame{},
	} {
		a, err := inbound{Type: typ}.action()
		require.NoError(t, err)
		assert.Equal(t, want, a)
	}
}
