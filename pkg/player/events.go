// ABOUTME: Event notifier for playback events
// ABOUTME: Ordered listeners, synchronous emission, replaced wholesale on reset
package player

import "github.com/google/uuid"

// EventKind identifies a playback event
type EventKind int

const (
	// EventEnded fires once per play-through, when the queue and the
	// in-flight set empty out together
	EventEnded EventKind = iota
)

// ListenerID identifies one event listener registration
type ListenerID = uuid.UUID

type eventListener struct {
	id ListenerID
	fn func()
}

// notifier maps event kinds to ordered listener sets. A reset replaces
// the whole notifier, dropping every registration; callers must
// re-register afterwards.
type notifier struct {
	listeners map[EventKind][]eventListener
}

func newNotifier() *notifier {
	return &notifier{listeners: make(map[EventKind][]eventListener)}
}

// add registers fn for kind and returns its registration token
func (n *notifier) add(kind EventKind, fn func()) ListenerID {
	id := uuid.New()
	n.listeners[kind] = append(n.listeners[kind], eventListener{id: id, fn: fn})
	return id
}

// remove drops the registration with the given token
func (n *notifier) remove(kind EventKind, id ListenerID) {
	ls := n.listeners[kind]
	for i, l := range ls {
		if l.id == id {
			n.listeners[kind] = append(ls[:i:i], ls[i+1:]...)
			return
		}
	}
}

// emit invokes kind's listeners synchronously, in registration order
func (n *notifier) emit(kind EventKind) {
	for _, l := range n.listeners[kind] {
		l.fn()
	}
}
