// ABOUTME: Oto-backed audio output device
// ABOUTME: Implements the Device contract over a persistent pipe-fed player
package device

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"

	"github.com/Chunkcast-Protocol/chunkcast-go/pkg/audio"
)

// feedInterval paces the feeder loop
const feedInterval = 5 * time.Millisecond

// writeAhead is how far before its start time a buffer's bytes are written
// to the device pipe, to absorb feeder scheduling jitter
const writeAhead = 50 * time.Millisecond

// Oto plays scheduled buffers through ebitengine/oto. A feeder goroutine
// writes each submitted source into a pipe that a persistent oto player
// consumes; blocking pipe writes let oto pace the stream. The device clock
// is wall time minus accumulated suspension.
//
// oto allows a single context per process, so Reset reuses the context and
// only recreates the pipe and player (discarding any buffered audio) while
// re-zeroing the clock.
type Oto struct {
	mu         sync.Mutex
	otoCtx     *oto.Context
	player     *oto.Player
	pipeReader *io.PipeReader
	pipeWriter *io.PipeWriter
	sampleRate int

	elapsed   time.Duration
	resumedAt time.Time
	suspended bool

	pending   []*otoSource
	playing   []*otoSource
	writeHead time.Duration

	closed bool
	wake   chan struct{}
	quit   chan struct{}
}

type otoSource struct {
	dev       *Oto
	buf       audio.Buffer
	start     time.Duration
	dur       time.Duration
	done      func()
	stopped   bool
	completed bool
}

// NewOto opens a mono Linear16 oto device at the given sample rate
func NewOto(sampleRate int) (*Oto, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-readyChan

	d := &Oto{
		otoCtx:     ctx,
		sampleRate: sampleRate,
		resumedAt:  time.Now(),
		wake:       make(chan struct{}, 1),
		quit:       make(chan struct{}),
	}
	d.pipeReader, d.pipeWriter = io.Pipe()
	d.player = ctx.NewPlayer(d.pipeReader)
	d.player.Play()

	go d.feed()

	log.Debug("audio device opened", "sampleRate", sampleRate)

	return d, nil
}

// Now returns the current device clock reading
func (d *Oto) Now() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.nowLocked()
}

func (d *Oto) nowLocked() time.Duration {
	if d.suspended {
		return d.elapsed
	}
	return d.elapsed + time.Since(d.resumedAt)
}

// SubmitAt queues buf to render starting when the clock reaches at
func (d *Oto) SubmitAt(buf audio.Buffer, at time.Duration, done func()) (Source, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, errors.New("device is closed")
	}
	if buf.SampleRate != d.sampleRate {
		return nil, fmt.Errorf("buffer sample rate %d does not match device rate %d", buf.SampleRate, d.sampleRate)
	}

	s := &otoSource{
		dev:   d,
		buf:   buf,
		start: at,
		dur:   buf.Duration(),
		done:  done,
	}
	d.pending = append(d.pending, s)

	select {
	case d.wake <- struct{}{}:
	default:
	}

	return s, nil
}

// Suspend halts the clock and rendering
func (d *Oto) Suspend() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return errors.New("device is closed")
	}
	if d.suspended {
		return nil
	}

	if err := d.otoCtx.Suspend(); err != nil {
		return fmt.Errorf("suspend oto context: %w", err)
	}
	d.elapsed += time.Since(d.resumedAt)
	d.suspended = true
	return nil
}

// Resume restarts the clock and rendering
func (d *Oto) Resume() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return errors.New("device is closed")
	}
	if !d.suspended {
		return nil
	}

	if err := d.otoCtx.Resume(); err != nil {
		return fmt.Errorf("resume oto context: %w", err)
	}
	d.resumedAt = time.Now()
	d.suspended = false
	return nil
}

// Reset discards all submitted audio and re-zeroes the clock
func (d *Oto) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return errors.New("device is closed")
	}

	for _, s := range append(d.pending, d.playing...) {
		s.stopped = true
	}
	d.pending = nil
	d.playing = nil

	// Recreating the pipe and player drops whatever oto had buffered.
	// Closing the writer first unblocks a feeder stuck mid-write.
	d.pipeWriter.Close()
	d.player.Close()
	d.pipeReader.Close()

	if d.suspended {
		if err := d.otoCtx.Resume(); err != nil {
			return fmt.Errorf("resume oto context: %w", err)
		}
		d.suspended = false
	}

	d.pipeReader, d.pipeWriter = io.Pipe()
	d.player = d.otoCtx.NewPlayer(d.pipeReader)
	d.player.Play()

	d.elapsed = 0
	d.resumedAt = time.Now()
	d.writeHead = 0

	log.Debug("audio device reset")

	return nil
}

// Close releases the device
func (d *Oto) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	close(d.quit)

	for _, s := range append(d.pending, d.playing...) {
		s.stopped = true
	}
	d.pending = nil
	d.playing = nil

	d.pipeWriter.Close()
	d.player.Close()
	d.pipeReader.Close()

	// oto contexts cannot be destroyed; suspending is the closest thing
	if err := d.otoCtx.Suspend(); err != nil {
		return fmt.Errorf("suspend oto context: %w", err)
	}

	return nil
}

// feed runs the feeder loop until the device closes
func (d *Oto) feed() {
	ticker := time.NewTicker(feedInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.quit:
			return
		case <-d.wake:
		case <-ticker.C:
		}
		d.pump()
	}
}

// pump fires due completions and writes ready sources to the pipe
func (d *Oto) pump() {
	for {
		d.mu.Lock()
		if d.closed || d.suspended {
			d.mu.Unlock()
			return
		}

		now := d.nowLocked()

		remaining := d.playing[:0]
		for _, s := range d.playing {
			switch {
			case s.stopped:
			case now >= s.start+s.dur:
				s.completed = true
				if s.done != nil {
					go s.done()
				}
			default:
				remaining = append(remaining, s)
			}
		}
		d.playing = remaining

		if len(d.pending) == 0 {
			d.mu.Unlock()
			return
		}

		s := d.pending[0]
		if s.stopped {
			d.pending = d.pending[1:]
			d.mu.Unlock()
			continue
		}
		if s.start > now+writeAhead {
			d.mu.Unlock()
			return
		}

		d.pending = d.pending[1:]
		d.playing = append(d.playing, s)

		var lead []byte
		if s.start > d.writeHead {
			lead = silenceBytes(d.sampleRate, s.start-d.writeHead)
			d.writeHead = s.start
		}
		d.writeHead += s.dur
		pw := d.pipeWriter
		d.mu.Unlock()

		// Blocking writes outside the lock: oto paces consumption
		if lead != nil {
			if _, err := pw.Write(lead); err != nil {
				log.Debug("device pipe write interrupted", "err", err)
				return
			}
		}
		if _, err := pw.Write(pcmBytes(s.buf)); err != nil {
			log.Debug("device pipe write interrupted", "err", err)
			return
		}
	}
}

// Stop forcibly abandons the source. Bytes already handed to oto keep
// rendering until the next device reset discards them.
func (s *otoSource) Stop() error {
	s.dev.mu.Lock()
	defer s.dev.mu.Unlock()

	if s.completed {
		return errors.New("source already completed")
	}
	s.stopped = true
	return nil
}

// pcmBytes converts normalized samples to Linear16 little-endian bytes
func pcmBytes(buf audio.Buffer) []byte {
	out := make([]byte, len(buf.Samples)*2)
	for i, f := range buf.Samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(audio.SampleFromFloat(f)))
	}
	return out
}

// silenceBytes produces Linear16 silence covering dur at the given rate
func silenceBytes(sampleRate int, dur time.Duration) []byte {
	samples := int(dur.Seconds() * float64(sampleRate))
	if samples <= 0 {
		return nil
	}
	return make([]byte, samples*2)
}
