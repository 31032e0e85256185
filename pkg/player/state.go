// ABOUTME: Player state enumeration
// ABOUTME: Defines the idle/playing/paused/ended/resetting machine values
package player

// State is the player's lifecycle state. Exactly one value holds at any
// time. Ended is reachable only from Playing, when the queue and the
// in-flight set empty out together; only Reset leaves Ended.
type State int32

const (
	// StateIdle means no playback is scheduled
	StateIdle State = iota
	// StatePlaying means the scheduler is draining the queue
	StatePlaying
	// StatePaused means the device clock is suspended mid-stream
	StatePaused
	// StateEnded means playback exhausted the queue and in-flight set
	StateEnded
	// StateResetting means a reset is tearing playback down
	StateResetting
)

// String returns the lowercase state name
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateEnded:
		return "ended"
	case StateResetting:
		return "resetting"
	default:
		return "unknown"
	}
}
