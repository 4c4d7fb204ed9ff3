package game

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yahyatoraman/pictionary/internal/logger"
)

// How long a fresh connection gets to introduce itself with a
// new-user-request before it is dropped. A connection is not a participant
// until a display name arrives.
const joinDeadline = time.Minute

type GameHandler struct {
	session  *Session
	idGen    UniqueIdGenerator
	upgrader websocket.Upgrader
}

func NewGameHandler(session *Session, idGen UniqueIdGenerator) *GameHandler {
	return &GameHandler{
		session: session,
		idGen:   idGen,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// ConnectHandler upgrades the request and performs the join handshake: the
// first frame must be a new-user-request carrying the display name.
func (h *GameHandler) ConnectHandler(ctx *gin.Context) {
	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		logger.Warningf("ws upgrade failed: %v", err)
		return
	}
	socket := NewWebsocketConnection(conn)

	conn.SetReadDeadline(time.Now().Add(joinDeadline))
	data, err := socket.Read()
	if err != nil {
		socket.Close("")
		return
	}

	var envelope Envelope
	if err := json.Unmarshal(data, &envelope); err != nil || envelope.Type != EventNewUserRequest {
		socket.Close("expected new-user-request")
		return
	}
	var name string
	if err := json.Unmarshal(envelope.Data, &name); err != nil {
		socket.Close("expected new-user-request")
		return
	}

	player := NewPlayer(h.idGen.Generate(), name, socket, h.session)

	// The write pump must be draining before the join is processed: the
	// actor delivers the full canvas replay during the join, and a long
	// turn's history overruns the outbound buffer if nobody consumes it.
	go player.WritePump()

	if err := h.session.Join(player); err != nil {
		switch {
		case errors.Is(err, ErrSessionFull):
			player.release("session-full")
		case errors.Is(err, ErrBlankName):
			player.release("blank-name")
		default:
			player.release("unknown-error")
		}
		return
	}

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	player.ReadPump()
}
