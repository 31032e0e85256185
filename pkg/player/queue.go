// ABOUTME: FIFO queue of decoded buffers awaiting playback
// ABOUTME: Insertion order is playback order; removal is front-only
package player

import "github.com/Chunkcast-Protocol/chunkcast-go/pkg/audio"

// bufferQueue holds decoded buffers in playback order. It is not
// synchronized: only the control goroutine touches it.
type bufferQueue struct {
	items []audio.Buffer
}

// enqueue appends a buffer to the back
func (q *bufferQueue) enqueue(buf audio.Buffer) {
	q.items = append(q.items, buf)
}

// dequeue removes and returns the front buffer
func (q *bufferQueue) dequeue() (audio.Buffer, bool) {
	if len(q.items) == 0 {
		return audio.Buffer{}, false
	}
	buf := q.items[0]
	q.items = q.items[1:]
	return buf, true
}

// len returns the number of queued buffers
func (q *bufferQueue) len() int {
	return len(q.items)
}

// clear drops all queued buffers
func (q *bufferQueue) clear() {
	q.items = nil
}
