package game

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, h *sessionHarness, idGen UniqueIdGenerator) string {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/ws", NewGameHandler(h.s, idGen).ConnectHandler)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dialClient(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func introduce(t *testing.T, conn *websocket.Conn, name string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, frameFor(t, EventNewUserRequest, name)))
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(time.Second * 2))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var envelope Envelope
	require.NoError(t, json.Unmarshal(data, &envelope))
	return envelope
}

func TestConnectHandler_JoinHandshake(t *testing.T) {
	h := startSession(t, SessionConfigs{})
	idGen := &MockUniqueIdGenerator{}
	idGen.On("Generate").Return("socket-123").Once()
	url := newTestServer(t, h, idGen)

	conn := dialClient(t, url)
	introduce(t, conn, "alice")

	envelope := readEnvelope(t, conn)
	require.Equal(t, EventNewSocketID, envelope.Type)
	var id string
	require.NoError(t, json.Unmarshal(envelope.Data, &id))
	assert.Equal(t, "socket-123", id)

	envelope = readEnvelope(t, conn)
	require.Equal(t, EventPlayersData, envelope.Type)
	var entries []ScoreboardEntry
	require.NoError(t, json.Unmarshal(envelope.Data, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, ScoreboardEntry{Rank: 1, Name: "alice", Points: 0}, entries[0])

	idGen.AssertExpectations(t)
}

func TestConnectHandler_RejectsBlankName(t *testing.T) {
	h := startSession(t, SessionConfigs{})
	url := newTestServer(t, h, NewIdGen())

	conn := dialClient(t, url)
	introduce(t, conn, "   ")

	conn.SetReadDeadline(time.Now().Add(time.Second * 2))
	_, _, err := conn.ReadMessage()
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, "blank-name", closeErr.Text)
}

func TestConnectHandler_FirstFrameMustIntroduce(t *testing.T) {
	h := startSession(t, SessionConfigs{})
	url := newTestServer(t, h, NewIdGen())

	conn := dialClient(t, url)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, frameFor(t, EventNewGuessRequest, "table")))

	conn.SetReadDeadline(time.Now().Add(time.Second * 2))
	_, _, err := conn.ReadMessage()
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, "expected new-user-request", closeErr.Text)
}

func TestConnectHandler_CapacityClosesWithReason(t *testing.T) {
	h := startSession(t, SessionConfigs{MaxPlayers: 1})
	url := newTestServer(t, h, NewIdGen())

	first := dialClient(t, url)
	introduce(t, first, "alice")
	require.Equal(t, EventNewSocketID, readEnvelope(t, first).Type)

	second := dialClient(t, url)
	introduce(t, second, "bob")

	second.SetReadDeadline(time.Now().Add(time.Second * 2))
	_, _, err := second.ReadMessage()
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, "session-full", closeErr.Text)
}

func TestConnectHandler_SecondClientStartsGame(t *testing.T) {
	h := startSession(t, SessionConfigs{Words: []string{"TABLE", "CHAIR"}})
	url := newTestServer(t, h, NewIdGen())

	alice := dialClient(t, url)
	introduce(t, alice, "alice")
	require.Equal(t, EventNewSocketID, readEnvelope(t, alice).Type)
	require.Equal(t, EventPlayersData, readEnvelope(t, alice).Type)

	bob := dialClient(t, url)
	introduce(t, bob, "bob")

	turnStarts := make([]TurnStart, 0, 2)
	for _, conn := range []*websocket.Conn{alice, bob} {
		for {
			envelope := readEnvelope(t, conn)
			if envelope.Type == EventNewTurnResponse {
				turnStarts = append(turnStarts, decodeTurnStart(t, envelope))
				break
			}
		}
	}

	require.Len(t, turnStarts, 2)
	words := []string{turnStarts[0].Word, turnStarts[1].Word}
	assert.True(t, (words[0] == "") != (words[1] == ""), "exactly one client must hold the word")
}
