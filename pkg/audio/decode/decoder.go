// ABOUTME: Decoder error types
// ABOUTME: Defines DecodeError and the misaligned payload sentinel
package decode

import (
	"errors"
	"fmt"
)

// ErrMisaligned reports a payload that is not a whole number of samples
var ErrMisaligned = errors.New("payload is not a whole number of 16-bit samples")

// DecodeError reports a chunk payload that could not be decoded. It is
// fatal to the call that supplied the chunk and leaves all player state
// untouched.
type DecodeError struct {
	Codec string
	Err   error
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Codec, e.Err)
}

// Unwrap returns the underlying error
func (e *DecodeError) Unwrap() error {
	return e.Err
}
