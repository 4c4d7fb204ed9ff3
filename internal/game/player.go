package game

import (
	"encoding/json"

	"golang.org/x/time/rate"

	"github.com/yahyatoraman/pictionary/internal/logger"
)

// NetworkSession is the transport a player is reached over. The session
// actor never touches the websocket package directly.
type NetworkSession interface {
	Close(reason string)
	Write(data []byte) error
	Read() ([]byte, error)
	Ping() error
}

// Player is one registered participant. The session actor is the only
// goroutine that mutates score or closes the outbound channels; the read and
// write pumps run as the player's own goroutines.
type Player struct {
	id    string
	name  string
	score int

	socket  NetworkSession
	session *Session

	inbox    chan []byte
	pingChan chan struct{}

	// Freehand drawing generates a far higher event rate than chat, so
	// canvas traffic gets its own budget.
	chatLimiter *rate.Limiter
	drawLimiter *rate.Limiter
}

func NewPlayer(id, name string, socket NetworkSession, session *Session) *Player {
	return &Player{
		id:          id,
		name:        name,
		socket:      socket,
		session:     session,
		inbox:       make(chan []byte, 256),
		pingChan:    make(chan struct{}, 1),
		chatLimiter: rate.NewLimiter(5, 10),
		drawLimiter: rate.NewLimiter(200, 400),
	}
}

func (p *Player) Id() string   { return p.id }
func (p *Player) Name() string { return p.name }

// ReadPump decodes inbound frames and forwards them to the session actor.
// It exits on the first read error, which also covers the socket being
// closed by the actor on removal.
func (p *Player) ReadPump() {
	defer p.session.RemoveMe(p)

	for {
		data, err := p.socket.Read()
		if err != nil {
			return
		}

		var envelope Envelope
		if err := json.Unmarshal(data, &envelope); err != nil {
			logger.Warningf("player %s sent undecodable frame: %v", p.id, err)
			continue
		}

		limiter := p.chatLimiter
		if envelope.Type == EventDrawingRequest {
			limiter = p.drawLimiter
		}
		if !limiter.Allow() {
			continue
		}

		p.session.Send(ClientEventEnvelope{event: envelope, from: p})
	}
}

// WritePump drains the outbound channels onto the socket. It exits when the
// actor releases the player (channels closed) or on the first write error.
func (p *Player) WritePump() {
loop:
	for {
		select {
		case data, ok := <-p.inbox:
			if !ok {
				break loop
			}
			if err := p.socket.Write(data); err != nil {
				break loop
			}
		case _, ok := <-p.pingChan:
			if !ok {
				break loop
			}
			if err := p.socket.Ping(); err != nil {
				break loop
			}
		}
	}
}

// release is called exactly once, by the session actor after the player has
// left the registry, or by the connect handler when a join is refused.
// Closing the channels stops the write pump; closing the socket stops the
// read pump and carries the reason to the client.
func (p *Player) release(reason string) {
	close(p.inbox)
	close(p.pingChan)
	p.socket.Close(reason)
}
