package game

import (
	"encoding/json"
	"math/rand"
	"strings"
	"time"

	"github.com/yahyatoraman/pictionary/internal/logger"
)

type Phase int

const (
	PhaseWaiting Phase = iota // fewer than two participants, no turn running
	PhasePlaying              // a (drawer, word) pair is fixed
	PhaseEnded                // win by attrition, dormant until someone joins
)

const (
	pointsPerCorrectGuess = 5
	defaultStrokeStyle    = "black"
	maxPickAttempts       = 32
	pingInterval          = time.Second * 30

	// The turn clock counts abstract elapsed units, mirroring the progress
	// bar the clients render: it starts at 1, grows by 9 per tick and the
	// turn times out at 100.
	elapsedBase = 1
	elapsedStep = 9
	elapsedMax  = 100
)

const (
	DefaultMaxPlayers  = 8
	DefaultTickEvery   = time.Millisecond * 500
	DefaultSettleDelay = time.Millisecond * 3020
)

type SessionConfigs struct {
	MaxPlayers  int
	TickEvery   time.Duration
	SettleDelay time.Duration
	Words       []string
}

type ClientEventEnvelope struct {
	event Envelope
	from  *Player
}

type joinRequest struct {
	player  *Player
	errChan chan error
}

// Session is the single game room. All mutable state below is owned by the
// actor goroutine running in Run; every externally observable action enters
// through one of the channels, which gives guesses, timeouts, joins and
// leaves a single total order.
type Session struct {
	configs SessionConfigs

	phase       Phase
	drawer      *Player
	currentWord string
	elapsed     int

	// turnSeq identifies the current turn. A settle-delayed advancement
	// carries the sequence it was scheduled for and is dropped if the
	// session has moved on, so a guess racing a timeout advances the turn
	// exactly once.
	turnSeq    uint64
	turnEnding bool

	registry registry
	history  canvasHistory
	words    []string
	rng      *rand.Rand

	inbox        chan ClientEventEnvelope
	joinRequests chan joinRequest
	removals     chan *Player
	advances     chan uint64
	stop         chan struct{}

	tickerGen PeriodicTickerChannelCreator
	afterFunc func(d time.Duration, f func())
}

func NewSession(configs SessionConfigs, tickerGen PeriodicTickerChannelCreator) *Session {
	if configs.MaxPlayers <= 0 {
		configs.MaxPlayers = DefaultMaxPlayers
	}
	if configs.TickEvery <= 0 {
		configs.TickEvery = DefaultTickEvery
	}
	if configs.SettleDelay <= 0 {
		configs.SettleDelay = DefaultSettleDelay
	}
	if len(configs.Words) == 0 {
		configs.Words = DefaultWords()
	}

	return &Session{
		configs:      configs,
		registry:     newRegistry(),
		words:        configs.Words,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		inbox:        make(chan ClientEventEnvelope, 1024),
		joinRequests: make(chan joinRequest),
		removals:     make(chan *Player, 64),
		advances:     make(chan uint64, 8),
		stop:         make(chan struct{}),
		tickerGen:    tickerGen,
		afterFunc:    func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}
}

// Run is the actor loop. It closes started once the tickers are wired so
// callers can synchronize startup.
func (s *Session) Run(started chan struct{}) {
	ticker := s.tickerGen.Create(s.configs.TickEvery)
	pingTicker := s.tickerGen.Create(pingInterval)
	close(started)

	for {
		select {
		case <-s.stop:
			return
		case <-ticker:
			s.handleTick()
		case <-pingTicker:
			s.pingPlayers()
		case req := <-s.joinRequests:
			s.handleJoin(req)
		case p := <-s.removals:
			s.handleLeave(p)
		case env := <-s.inbox:
			s.dispatch(env)
		case turn := <-s.advances:
			s.handleAdvance(turn)
		}
	}
}

func (s *Session) Stop() {
	close(s.stop)
}

// Join registers a participant and blocks until the actor has processed the
// request, including history replay and clock resync.
func (s *Session) Join(p *Player) error {
	req := joinRequest{player: p, errChan: make(chan error, 1)}
	s.joinRequests <- req
	return <-req.errChan
}

func (s *Session) Send(env ClientEventEnvelope) {
	s.inbox <- env
}

func (s *Session) RemoveMe(p *Player) {
	s.removals <- p
}

// isDrawer is the authority predicate: drawing rights are derived from the
// session state, never stored on the participant record.
func (s *Session) isDrawer(p *Player) bool {
	return s.phase == PhasePlaying && s.drawer != nil && s.drawer.id == p.id
}

func (s *Session) dispatch(env ClientEventEnvelope) {
	switch env.event.Type {
	case EventDrawingRequest:
		s.handleDrawing(env)
	case EventNewStyleRequest:
		s.handleStyle(env)
	case EventClearCanvasRequest:
		s.handleClear(env)
	case EventNewGuessRequest:
		s.handleGuess(env)
	case EventTimeIsUpRequest:
		s.handleTimeIsUp(env)
	default:
		logger.Debugf("dropping unknown event %q from %s", env.event.Type, env.from.id)
	}
}

// --- Canvas (authority-gated) ---

func (s *Session) handleDrawing(env ClientEventEnvelope) {
	if !s.isDrawer(env.from) {
		logger.Debugf("dropping drawing-request from non-drawer %s", env.from.id)
		return
	}

	var stroke Stroke
	if err := json.Unmarshal(env.event.Data, &stroke); err != nil || !stroke.valid() {
		logger.Warningf("dropping malformed stroke from drawer %s", env.from.id)
		return
	}

	frame, err := marshalEvent(EventDrawingResponse, stroke)
	if err != nil {
		logger.Criticalf("failed to frame stroke: %v", err)
		return
	}
	s.broadcastFrame(frame)
	s.history.append(frame)
}

func (s *Session) handleStyle(env ClientEventEnvelope) {
	if !s.isDrawer(env.from) {
		logger.Debugf("dropping style-request from non-drawer %s", env.from.id)
		return
	}

	var style string
	if err := json.Unmarshal(env.event.Data, &style); err != nil || style == "" {
		logger.Warningf("dropping malformed style change from drawer %s", env.from.id)
		return
	}

	frame, err := marshalEvent(EventNewStyleResponse, style)
	if err != nil {
		logger.Criticalf("failed to frame style change: %v", err)
		return
	}
	s.broadcastFrame(frame)
	s.history.append(frame)
}

func (s *Session) handleClear(env ClientEventEnvelope) {
	if !s.isDrawer(env.from) {
		logger.Debugf("dropping clear-request from non-drawer %s", env.from.id)
		return
	}
	s.history.clear()
	s.broadcast(EventClearCanvasResponse, nil)
}

// --- Chat / guessing ---

func (s *Session) handleGuess(env ClientEventEnvelope) {
	var guess string
	if err := json.Unmarshal(env.event.Data, &guess); err != nil || guess == "" {
		return
	}

	// Guesses are visible chat history regardless of correctness.
	s.broadcastExcept(env.from, EventNewGuessResponse, GuessNotice{Name: env.from.name, Guess: guess})

	// The drawer's own messages are never evaluated, and once a turn is
	// already ending the word has been revealed, so later matches count as
	// plain chat.
	if s.phase != PhasePlaying || s.turnEnding || s.isDrawer(env.from) {
		return
	}
	if !strings.EqualFold(guess, s.currentWord) {
		return
	}

	s.broadcast(EventCorrectAnswer, CorrectAnswer{Word: s.currentWord, GuesserName: env.from.name})
	s.registry.award(env.from.id, pointsPerCorrectGuess)
	logger.Infof("%s guessed %q, turn %d ending", env.from.name, s.currentWord, s.turnSeq)
	s.endTurn()
}

// --- Timing ---

func (s *Session) handleTimeIsUp(env ClientEventEnvelope) {
	// Gated like a canvas mutation so a guesser cannot force-advance the
	// turn. The server clock fires the same path on its own.
	if !s.isDrawer(env.from) {
		logger.Debugf("dropping time-is-up-request from non-drawer %s", env.from.id)
		return
	}
	if s.turnEnding {
		return
	}
	s.timeoutTurn()
}

func (s *Session) handleTick() {
	if s.phase != PhasePlaying || s.turnEnding {
		return
	}
	s.elapsed += elapsedStep
	if s.elapsed >= elapsedMax {
		s.timeoutTurn()
	}
}

func (s *Session) timeoutTurn() {
	s.broadcast(EventTimeIsUpResponse, s.currentWord)
	logger.Infof("turn %d timed out, word was %q", s.turnSeq, s.currentWord)
	s.endTurn()
}

// endTurn marks the turn as ending and schedules the advancement after the
// settle delay, so client-side transition UI can settle first.
func (s *Session) endTurn() {
	s.turnEnding = true
	turn := s.turnSeq
	s.afterFunc(s.configs.SettleDelay, func() {
		select {
		case s.advances <- turn:
		default:
		}
	})
}

func (s *Session) handleAdvance(turn uint64) {
	if turn != s.turnSeq || s.phase != PhasePlaying {
		return // stale: the session advanced or ended in the meantime
	}
	s.advanceTurn()
}

// --- Turn rotation ---

// pickNextTurn draws a uniform random (drawer, word) pair that differs from
// the previous pair in both fields. The resample loop is bounded: degenerate
// pools relax the constraint to at least one differing field, then accept
// anything rather than spin forever.
func (s *Session) pickNextTurn() (*Player, string) {
	players := s.registry.players
	prevId := ""
	if s.drawer != nil {
		prevId = s.drawer.id
	}
	prevWord := s.currentWord

	var candidate *Player
	var word string
	for attempt := 0; attempt < maxPickAttempts; attempt++ {
		candidate = players[s.rng.Intn(len(players))]
		word = s.words[s.rng.Intn(len(s.words))]
		if candidate.id != prevId && word != prevWord {
			return candidate, word
		}
	}
	for attempt := 0; attempt < maxPickAttempts; attempt++ {
		candidate = players[s.rng.Intn(len(players))]
		word = s.words[s.rng.Intn(len(s.words))]
		if candidate.id != prevId || word != prevWord {
			return candidate, word
		}
	}
	return candidate, word
}

func (s *Session) advanceTurn() {
	drawer, word := s.pickNextTurn()
	s.drawer = drawer
	s.currentWord = word
	s.turnSeq++
	s.turnEnding = false
	s.elapsed = elapsedBase

	s.sendTo(drawer, EventNewTurnResponse, TurnStart{Word: word})
	for _, p := range s.registry.players {
		if p != drawer {
			s.sendTo(p, EventNewTurnResponse, TurnStart{DrawingName: drawer.name})
		}
	}

	s.history.clear()
	s.broadcast(EventClearCanvasResponse, nil)
	s.broadcast(EventNewStyleResponse, defaultStrokeStyle)
	s.broadcast(EventResetLineWidthSlider, nil)
	s.broadcast(EventPlayersData, s.registry.scoreboard())

	logger.Infof("turn %d started, drawer %s", s.turnSeq, drawer.name)
}

// --- Lifecycle ---

func (s *Session) handleJoin(req joinRequest) {
	p := req.player

	if strings.TrimSpace(p.name) == "" {
		req.errChan <- ErrBlankName
		close(req.errChan)
		return
	}
	if s.registry.count() >= s.configs.MaxPlayers {
		req.errChan <- ErrSessionFull
		close(req.errChan)
		return
	}

	s.registry.add(p)
	s.broadcastExcept(p, EventNewUserResponse, p.name)
	s.sendTo(p, EventNewSocketID, p.id)

	// Catch the joiner up: the live canvas first, then the clock, then the
	// scoreboard. Catch-up frames are delivered blocking, never shed: a
	// dropped replay frame would leave the joiner's canvas permanently
	// wrong. The joiner's write pump is already draining at this point.
	s.history.replay(func(frame []byte) { s.deliverBlocking(p, frame) })
	if s.phase == PhasePlaying {
		s.sendToBlocking(p, EventSetTimeInBetween, s.elapsed)
	}
	s.sendToBlocking(p, EventPlayersData, s.registry.scoreboard())

	if s.phase != PhasePlaying && s.registry.count() >= 2 {
		s.phase = PhasePlaying
		s.advanceTurn()
	}

	req.errChan <- nil
	close(req.errChan)
	logger.Infof("player %s (%s) joined, %d connected", p.name, p.id, s.registry.count())
}

func (s *Session) handleLeave(p *Player) {
	if s.registry.remove(p.id) == nil {
		return // the read pump raced the actor, already removed
	}
	wasDrawer := s.drawer != nil && s.drawer.id == p.id
	p.release("")
	logger.Infof("player %s (%s) left, %d remain", p.name, p.id, s.registry.count())

	switch {
	case s.registry.count() == 0:
		s.reset(PhaseWaiting)
	case s.phase == PhasePlaying && s.registry.count() == 1:
		s.broadcast(EventGameOver, nil)
		s.reset(PhaseEnded)
	case s.phase == PhasePlaying && wasDrawer:
		// The departed drawer held the only canvas authority; rotate
		// immediately rather than letting the turn run out orphaned.
		s.advanceTurn()
	default:
		s.broadcast(EventPlayersData, s.registry.scoreboard())
	}
}

// reset clears the turn state at a lifecycle boundary. Bumping turnSeq voids
// any settle-delayed advancement still in flight.
func (s *Session) reset(phase Phase) {
	s.phase = phase
	s.drawer = nil
	s.currentWord = ""
	s.history.clear()
	s.elapsed = 0
	s.turnEnding = false
	s.turnSeq++
}

// --- Delivery ---

func (s *Session) deliver(p *Player, frame []byte) {
	select {
	case p.inbox <- frame:
	default:
		logger.Warningf("dropping frame for slow player %s", p.id)
	}
}

// deliverBlocking waits for the player's write pump to make room instead of
// shedding the frame. The wait is bounded so one wedged client cannot hold
// the whole session hostage.
func (s *Session) deliverBlocking(p *Player, frame []byte) {
	select {
	case p.inbox <- frame:
	case <-time.After(writeTimeout):
		logger.Warningf("dropping catch-up frame for wedged player %s", p.id)
	}
}

func (s *Session) sendToBlocking(p *Player, event string, payload any) {
	frame, err := marshalEvent(event, payload)
	if err != nil {
		logger.Criticalf("failed to frame %s: %v", event, err)
		return
	}
	s.deliverBlocking(p, frame)
}

func (s *Session) sendTo(p *Player, event string, payload any) {
	frame, err := marshalEvent(event, payload)
	if err != nil {
		logger.Criticalf("failed to frame %s: %v", event, err)
		return
	}
	s.deliver(p, frame)
}

func (s *Session) broadcast(event string, payload any) {
	frame, err := marshalEvent(event, payload)
	if err != nil {
		logger.Criticalf("failed to frame %s: %v", event, err)
		return
	}
	s.broadcastFrame(frame)
}

func (s *Session) broadcastFrame(frame []byte) {
	for _, p := range s.registry.players {
		s.deliver(p, frame)
	}
}

func (s *Session) broadcastExcept(sender *Player, event string, payload any) {
	frame, err := marshalEvent(event, payload)
	if err != nil {
		logger.Criticalf("failed to frame %s: %v", event, err)
		return
	}
	for _, p := range s.registry.players {
		if p != sender {
			s.deliver(p, frame)
		}
	}
}

func (s *Session) pingPlayers() {
	for _, p := range s.registry.players {
		select {
		case p.pingChan <- struct{}{}:
		default:
		}
	}
}
