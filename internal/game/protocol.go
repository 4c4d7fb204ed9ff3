package game

import "encoding/json"

// Wire event names. Request events originate from clients and are gated by
// the turn authority where noted; response events are emitted by the server.
const (
	// Join / identity
	EventNewUserRequest  = "new-user-request"  // payload: display name
	EventNewUserResponse = "new-user-response" // payload: display name, to others
	EventNewSocketID     = "new-socket-id"     // payload: connection id, to joiner

	// Canvas (drawer only)
	EventDrawingRequest      = "drawing-request"
	EventDrawingResponse     = "drawing-response"
	EventNewStyleRequest     = "new-style-request"
	EventNewStyleResponse    = "new-style-response"
	EventClearCanvasRequest  = "clear-canvas-request"
	EventClearCanvasResponse = "clear-canvas-response"

	// Chat / guessing
	EventNewGuessRequest  = "new-guess-request"  // payload: guess text
	EventNewGuessResponse = "new-guess-response" // payload: GuessNotice, to others
	EventCorrectAnswer    = "correct-answer"     // payload: CorrectAnswer

	// Timing
	EventTimeIsUpRequest  = "time-is-up-request"  // drawer only
	EventTimeIsUpResponse = "time-is-up-response" // payload: revealed word
	EventSetTimeInBetween = "set-time-in-between" // payload: elapsed units, to joiner

	// Turn rotation
	EventNewTurnResponse      = "new-turn-response" // payload: TurnStart
	EventResetLineWidthSlider = "reset-line-width-slider"
	EventPlayersData          = "players-data" // payload: []ScoreboardEntry

	// Lifecycle
	EventGameOver = "game-over"
)

// Envelope is the framing for every message on the wire.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Stroke is one accepted freehand segment, carrying enough rendering
// parameters to be replayed verbatim to a late joiner.
type Stroke struct {
	LineWidth   float64 `json:"lineWidth"`
	StrokeStyle string  `json:"strokeStyle"`
	FromX       float64 `json:"fromX"`
	FromY       float64 `json:"fromY"`
	ToX         float64 `json:"toX"`
	ToY         float64 `json:"toY"`
}

func (s Stroke) valid() bool {
	return s.LineWidth > 0 && s.StrokeStyle != ""
}

// GuessNotice relays a guess to the other participants as chat.
type GuessNotice struct {
	Name  string `json:"name"`
	Guess string `json:"guess"`
}

// CorrectAnswer announces the end of a turn by successful guess.
type CorrectAnswer struct {
	Word        string `json:"word"`
	GuesserName string `json:"guesserName"`
}

// TurnStart is sent at every turn boundary. The drawer receives the secret
// word, everyone else receives the drawer's display name.
type TurnStart struct {
	Word        string `json:"word,omitempty"`
	DrawingName string `json:"drawingName,omitempty"`
}

// ScoreboardEntry is one row of the score-sorted participant list.
type ScoreboardEntry struct {
	Rank   int    `json:"rank"`
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// marshalEvent frames a payload into a wire-ready envelope.
func marshalEvent(event string, payload any) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if payload != nil {
		data, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}
	return json.Marshal(Envelope{Type: event, Data: data})
}
