// ABOUTME: Player error types
// ABOUTME: Defines invalid state, closed, and playback failure errors
package player

import (
	"errors"
	"fmt"
)

// ErrInvalidState reports an operation attempted while the player is
// resetting. The operation has no effect; queue and scheduler state are
// untouched.
var ErrInvalidState = errors.New("player is resetting")

// ErrClosed reports an operation on a closed player
var ErrClosed = errors.New("player is closed")

// PlaybackError reports a device submission failure. It is fatal to the
// call chain that triggered the submission; the player does not retry.
type PlaybackError struct {
	Op  string
	Err error
}

// Error implements the error interface
func (e *PlaybackError) Error() string {
	return fmt.Sprintf("playback %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying device error
func (e *PlaybackError) Unwrap() error {
	return e.Err
}
