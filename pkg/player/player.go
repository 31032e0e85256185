// ABOUTME: Streaming chunk player control loop and public API
// ABOUTME: Single goroutine owns queue, scheduler, and state machine
package player

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Chunkcast-Protocol/chunkcast-go/pkg/audio/decode"
	"github.com/Chunkcast-Protocol/chunkcast-go/pkg/device"
)

// Config holds player configuration
type Config struct {
	// Device is the output device playback is scheduled against (required)
	Device device.Device

	// OnStateChange is called from the control goroutine on every state
	// transition
	OnStateChange func(State)

	// OnError receives failures that have no caller to return to, such
	// as a device submission error on the completion-driven drain path
	OnError func(error)

	// Logger overrides the default player logger
	Logger *log.Logger
}

// Player streams Linear16 chunks to an output device with gapless,
// look-ahead scheduling. All mutation happens on one control goroutine;
// caller calls and device completion callbacks are marshaled into a
// single message channel and processed one at a time.
type Player struct {
	cfg    Config
	dev    device.Device
	logger *log.Logger

	msgs   chan message
	ctx    context.Context
	cancel context.CancelFunc

	// control-goroutine state
	state        State
	queue        bufferQueue
	inflight     map[uint64]device.Source
	nextSourceID uint64
	nextStart    time.Duration
	events       *notifier
	pendingReset chan error

	published atomic.Int32
}

type message interface{}

type addChunkMsg struct {
	data       []byte
	sampleRate int
	reply      chan error
}

type playMsg struct{ reply chan error }

type pauseMsg struct{ reply chan error }

type resetMsg struct{ reply chan error }

type resetDoneMsg struct {
	err   error
	reply chan error
}

type completionMsg struct{ id uint64 }

type addListenerMsg struct {
	kind  EventKind
	fn    func()
	reply chan ListenerID
}

type removeListenerMsg struct {
	kind  EventKind
	id    ListenerID
	reply chan struct{}
}

type flushMsg struct{ reply chan struct{} }

type closeMsg struct{ reply chan error }

// New creates a player on the given device and starts its control loop
func New(cfg Config) (*Player, error) {
	if cfg.Device == nil {
		return nil, fmt.Errorf("player requires a device")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.Default().WithPrefix("player")
	}

	ctx, cancel := context.WithCancel(context.Background())

	p := &Player{
		cfg:      cfg,
		dev:      cfg.Device,
		logger:   logger,
		msgs:     make(chan message),
		ctx:      ctx,
		cancel:   cancel,
		state:    StateIdle,
		inflight: make(map[uint64]device.Source),
		events:   newNotifier(),
	}
	p.published.Store(int32(StateIdle))

	go p.run()

	return p, nil
}

// AddChunk decodes a Linear16 chunk and appends it to the playback queue.
// It fails with ErrInvalidState while a reset is in progress and with a
// *decode.DecodeError for a malformed payload; neither failure mutates
// the queue. Adding a chunk never starts playback by itself.
func (p *Player) AddChunk(data []byte, sampleRate int) error {
	reply := make(chan error, 1)
	if !p.send(addChunkMsg{data: data, sampleRate: sampleRate, reply: reply}) {
		return ErrClosed
	}
	return <-reply
}

// Play starts or resumes playback. With a non-empty queue from idle it
// begins draining; from paused it resumes the device clock; while already
// playing, or from idle with an empty queue, it is a no-op.
func (p *Player) Play() error {
	reply := make(chan error, 1)
	if !p.send(playMsg{reply: reply}) {
		return ErrClosed
	}
	return <-reply
}

// Pause suspends the device clock. In-flight sources stay scheduled;
// rendering halts until Play.
func (p *Player) Pause() error {
	reply := make(chan error, 1)
	if !p.send(pauseMsg{reply: reply}) {
		return ErrClosed
	}
	return <-reply
}

// Reset stops and discards all in-flight sources, clears the queue,
// reinitializes the device clock, and drops every event listener. The
// player always returns to idle; cleanup errors are logged, never
// propagated.
func (p *Player) Reset() error {
	reply := make(chan error, 1)
	if !p.send(resetMsg{reply: reply}) {
		return ErrClosed
	}
	return <-reply
}

// State returns the current player state
func (p *Player) State() State {
	return State(p.published.Load())
}

// AddListener registers fn for the given event kind and returns its
// registration token. Listeners do not survive a Reset.
func (p *Player) AddListener(kind EventKind, fn func()) ListenerID {
	reply := make(chan ListenerID, 1)
	if !p.send(addListenerMsg{kind: kind, fn: fn, reply: reply}) {
		return ListenerID{}
	}
	return <-reply
}

// RemoveListener drops the registration with the given token
func (p *Player) RemoveListener(kind EventKind, id ListenerID) {
	reply := make(chan struct{}, 1)
	if !p.send(removeListenerMsg{kind: kind, id: id, reply: reply}) {
		return
	}
	<-reply
}

// Close stops the control loop and releases the device
func (p *Player) Close() error {
	reply := make(chan error, 1)
	if !p.send(closeMsg{reply: reply}) {
		return nil
	}
	return <-reply
}

// send delivers a message to the control loop, failing once closed
func (p *Player) send(m message) bool {
	select {
	case p.msgs <- m:
		return true
	case <-p.ctx.Done():
		return false
	}
}

// post marshals a device-context event onto the control loop
func (p *Player) post(m message) {
	select {
	case p.msgs <- m:
	case <-p.ctx.Done():
	}
}

// flush waits until every previously posted message has been processed
func (p *Player) flush() {
	reply := make(chan struct{}, 1)
	if p.send(flushMsg{reply: reply}) {
		<-reply
	}
}

// run is the control loop; it alone mutates player state
func (p *Player) run() {
	for msg := range p.msgs {
		switch m := msg.(type) {
		case addChunkMsg:
			m.reply <- p.handleAddChunk(m.data, m.sampleRate)
		case playMsg:
			m.reply <- p.handlePlay()
		case pauseMsg:
			m.reply <- p.handlePause()
		case resetMsg:
			p.handleReset(m.reply)
		case resetDoneMsg:
			p.handleResetDone(m.err, m.reply)
		case completionMsg:
			p.handleCompletion(m.id)
		case addListenerMsg:
			m.reply <- p.events.add(m.kind, m.fn)
		case removeListenerMsg:
			p.events.remove(m.kind, m.id)
			m.reply <- struct{}{}
		case flushMsg:
			m.reply <- struct{}{}
		case statsMsg:
			m.reply <- Stats{State: p.state, Queued: p.queue.len(), InFlight: len(p.inflight)}
		case closeMsg:
			m.reply <- p.handleClose()
			return
		}
	}
}

func (p *Player) handleAddChunk(data []byte, sampleRate int) error {
	if p.state == StateResetting {
		return fmt.Errorf("add chunk: %w", ErrInvalidState)
	}

	buf, err := decode.PCM16(data, sampleRate)
	if err != nil {
		return err
	}

	p.queue.enqueue(buf)
	return nil
}

func (p *Player) handlePlay() error {
	switch p.state {
	case StateResetting:
		return fmt.Errorf("play: %w", ErrInvalidState)

	case StatePlaying, StateEnded:
		return nil

	case StatePaused:
		if err := p.dev.Resume(); err != nil {
			return fmt.Errorf("resume device clock: %w", err)
		}
		p.setState(StatePlaying)
		return p.schedule()

	default: // StateIdle
		if p.queue.len() == 0 {
			return nil
		}
		if err := p.dev.Resume(); err != nil {
			return fmt.Errorf("resume device clock: %w", err)
		}
		if len(p.inflight) == 0 {
			p.nextStart = p.dev.Now()
		}
		p.setState(StatePlaying)
		return p.schedule()
	}
}

func (p *Player) handlePause() error {
	switch p.state {
	case StateResetting:
		return fmt.Errorf("pause: %w", ErrInvalidState)

	case StatePlaying:
		if err := p.dev.Suspend(); err != nil {
			return fmt.Errorf("suspend device clock: %w", err)
		}
		p.setState(StatePaused)
		return nil

	default: // paused, idle, ended
		return nil
	}
}

func (p *Player) handleReset(reply chan error) {
	if p.state == StateResetting {
		reply <- fmt.Errorf("reset: %w", ErrInvalidState)
		return
	}

	p.setState(StateResetting)

	// Best-effort teardown: a source may already have finished on the
	// device side, so stop errors are logged and swallowed
	for id, src := range p.inflight {
		if err := src.Stop(); err != nil {
			p.logger.Warn("stopping in-flight source", "source", id, "err", err)
		}
	}
	p.inflight = make(map[uint64]device.Source)
	p.queue.clear()
	p.nextStart = 0
	p.events = newNotifier()

	// The device round-trip happens off the control loop so AddChunk
	// during the reset fails deterministically instead of interleaving
	p.pendingReset = reply
	go func() {
		err := p.dev.Reset()
		p.post(resetDoneMsg{err: err, reply: reply})
	}()
}

func (p *Player) handleResetDone(err error, reply chan error) {
	if err != nil {
		p.logger.Error("device reset", "err", err)
	}
	p.pendingReset = nil
	p.setState(StateIdle)
	reply <- nil
}

func (p *Player) handleCompletion(id uint64) {
	// Reset owns cleanup; a completion racing it is dropped
	if p.state == StateResetting {
		return
	}

	if _, ok := p.inflight[id]; !ok {
		return
	}
	delete(p.inflight, id)

	if p.queue.len() == 0 && len(p.inflight) == 0 {
		if p.state == StatePlaying {
			p.setState(StateEnded)
			p.events.emit(EventEnded)
		}
		return
	}

	if p.queue.len() > 0 {
		if err := p.schedule(); err != nil {
			p.logger.Error("completion-driven scheduling", "err", err)
			p.reportError(err)
		}
	}
}

func (p *Player) handleClose() error {
	for id, src := range p.inflight {
		if err := src.Stop(); err != nil {
			p.logger.Warn("stopping in-flight source", "source", id, "err", err)
		}
	}
	p.inflight = make(map[uint64]device.Source)
	p.queue.clear()

	// A reset still waiting on its device round-trip can never be
	// answered once the loop exits; fail its caller instead
	if p.pendingReset != nil {
		p.pendingReset <- ErrClosed
		p.pendingReset = nil
	}
	p.cancel()

	if err := p.dev.Close(); err != nil {
		return fmt.Errorf("close device: %w", err)
	}
	return nil
}

func (p *Player) setState(s State) {
	if p.state == s {
		return
	}
	p.logger.Debug("state transition", "from", p.state, "to", s)
	p.state = s
	p.published.Store(int32(s))
	if p.cfg.OnStateChange != nil {
		p.cfg.OnStateChange(s)
	}
}

func (p *Player) reportError(err error) {
	if p.cfg.OnError != nil {
		p.cfg.OnError(err)
	}
}

// Stats is a read-only snapshot of playback depth for display purposes
type Stats struct {
	State    State
	Queued   int
	InFlight int
}

// Snapshot returns current depth counters
func (p *Player) Snapshot() Stats {
	reply := make(chan Stats, 1)
	if !p.send(statsMsg{reply: reply}) {
		return Stats{State: p.State()}
	}
	return <-reply
}

type statsMsg struct{ reply chan Stats }
