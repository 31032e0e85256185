// ABOUTME: Tests for the event notifier
// ABOUTME: Tests registration order, removal, and empty emission
package player

import "testing"

func TestNotifierEmitOrder(t *testing.T) {
	n := newNotifier()

	var order []int
	n.add(EventEnded, func() { order = append(order, 1) })
	n.add(EventEnded, func() { order = append(order, 2) })
	n.add(EventEnded, func() { order = append(order, 3) })

	n.emit(EventEnded)

	if len(order) != 3 {
		t.Fatalf("expected 3 calls, got %d", len(order))
	}
	for i, v := range order {
		if v != i+1 {
			t.Errorf("call %d: expected listener %d, got %d", i, i+1, v)
		}
	}
}

func TestNotifierRemove(t *testing.T) {
	n := newNotifier()

	var order []int
	n.add(EventEnded, func() { order = append(order, 1) })
	id := n.add(EventEnded, func() { order = append(order, 2) })
	n.add(EventEnded, func() { order = append(order, 3) })

	n.remove(EventEnded, id)
	n.emit(EventEnded)

	if len(order) != 2 || order[0] != 1 || order[1] != 3 {
		t.Errorf("expected calls [1 3], got %v", order)
	}
}

func TestNotifierRemoveUnknownID(t *testing.T) {
	n := newNotifier()
	n.add(EventEnded, func() {})

	// Removing a token that was never issued is harmless
	n.remove(EventEnded, ListenerID{})

	called := 0
	n.add(EventEnded, func() { called++ })
	n.emit(EventEnded)
	if called != 1 {
		t.Errorf("expected surviving listener to fire, got %d", called)
	}
}

func TestNotifierEmitWithNoListeners(t *testing.T) {
	n := newNotifier()
	n.emit(EventEnded) // must not panic
}
