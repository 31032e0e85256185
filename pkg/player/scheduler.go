// ABOUTME: Gapless playback scheduler
// ABOUTME: Drains the queue with back-to-back start times on the device clock
package player

// schedule submits every currently queued buffer to the device in one
// pass, each starting at the exact sample boundary where the previous one
// ends. An explicit loop replaces recursion so a long queue cannot grow
// the stack.
//
// The start time is clamped to the device clock: a buffer scheduled late
// (control jitter, clock drift) starts now rather than in the past, and
// nextStart advances from the clamped value so the following buffer still
// abuts it exactly.
func (p *Player) schedule() error {
	for p.state == StatePlaying && p.queue.len() > 0 {
		buf, _ := p.queue.dequeue()

		start := p.nextStart
		if now := p.dev.Now(); now > start {
			start = now
		}

		id := p.nextSourceID
		p.nextSourceID++

		src, err := p.dev.SubmitAt(buf, start, func() {
			p.post(completionMsg{id: id})
		})
		if err != nil {
			return &PlaybackError{Op: "submit", Err: err}
		}

		p.inflight[id] = src
		p.nextStart = start + buf.Duration()

		p.logger.Debug("scheduled buffer",
			"source", id,
			"start", start,
			"duration", buf.Duration(),
			"queued", p.queue.len(),
			"inFlight", len(p.inflight))
	}
	return nil
}
