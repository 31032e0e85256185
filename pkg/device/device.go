// ABOUTME: Audio output device contract
// ABOUTME: Defines the clock, submission, and suspension interface
package device

import (
	"time"

	"github.com/Chunkcast-Protocol/chunkcast-go/pkg/audio"
)

// Device is an audio output with its own monotonic clock. The player
// schedules buffers against this clock; any backend satisfying the
// contract is substitutable.
//
// The clock starts at zero, advances only while the device is not
// suspended, and returns to zero on Reset. Suspend and Resume are
// idempotent: suspending a suspended clock or resuming a running one
// is a no-op.
type Device interface {
	// Now returns the current device clock reading
	Now() time.Duration

	// SubmitAt queues buf to begin rendering when the clock reaches at.
	// done fires exactly once, from the device's own execution context,
	// when the buffer's samples are exhausted. done never fires for a
	// source that was stopped first.
	SubmitAt(buf audio.Buffer, at time.Duration, done func()) (Source, error)

	// Suspend halts clock advancement and rendering
	Suspend() error

	// Resume restarts clock advancement and rendering
	Resume() error

	// Reset discards all submitted audio and reinitializes the clock to zero
	Reset() error

	// Close releases the device
	Close() error
}

// Source is a handle to one submitted buffer
type Source interface {
	// Stop forcibly abandons the source, even mid-render. Stopping a
	// source that already completed is an error the caller may ignore.
	Stop() error
}
