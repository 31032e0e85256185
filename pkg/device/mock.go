// ABOUTME: Mock device for tests
// ABOUTME: Manual clock, recorded submissions, and triggerable completions
package device

import (
	"fmt"
	"sync"
	"time"

	"github.com/Chunkcast-Protocol/chunkcast-go/pkg/audio"
)

// Mock implements Device with a manually advanced clock. Submissions are
// recorded in order; completions fire only when the test asks for them,
// from the caller's goroutine, which stands in for the device's rendering
// thread.
type Mock struct {
	mu        sync.Mutex
	now       time.Duration
	suspended bool
	closed    bool
	sources   []*MockSource

	suspends int
	resumes  int
	resets   int

	submitErr error
	resumeErr error
	resetGate chan struct{}
}

// MockSource records one submitted buffer
type MockSource struct {
	Buf   audio.Buffer
	Start time.Duration

	// StopErr, when set, is returned by Stop to exercise best-effort
	// teardown paths
	StopErr error

	mock      *Mock
	done      func()
	stopped   bool
	completed bool
}

// NewMock creates a mock device with the clock at zero
func NewMock() *Mock {
	return &Mock{}
}

// Now returns the manual clock reading
func (m *Mock) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the manual clock forward
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now += d
}

// SubmitAt records a submission
func (m *Mock) SubmitAt(buf audio.Buffer, at time.Duration, done func()) (Source, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.submitErr != nil {
		return nil, m.submitErr
	}

	s := &MockSource{Buf: buf, Start: at, mock: m, done: done}
	m.sources = append(m.sources, s)
	return s, nil
}

// Suspend halts the clock
func (m *Mock) Suspend() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.suspended {
		m.suspended = true
		m.suspends++
	}
	return nil
}

// Resume restarts the clock
func (m *Mock) Resume() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.resumeErr != nil {
		return m.resumeErr
	}
	if m.suspended {
		m.suspended = false
		m.resumes++
	}
	return nil
}

// Reset drops all submissions and re-zeroes the clock. If HoldReset is in
// effect, Reset blocks until the returned release function is called.
func (m *Mock) Reset() error {
	m.mu.Lock()
	gate := m.resetGate
	m.mu.Unlock()

	if gate != nil {
		<-gate
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sources {
		s.stopped = true
	}
	m.sources = nil
	m.now = 0
	m.suspended = false
	m.resets++
	return nil
}

// Close marks the device closed
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Complete fires the done callback of submission i
func (m *Mock) Complete(i int) error {
	m.mu.Lock()
	if i < 0 || i >= len(m.sources) {
		m.mu.Unlock()
		return fmt.Errorf("no submission %d", i)
	}
	s := m.sources[i]
	if s.stopped || s.completed {
		m.mu.Unlock()
		return fmt.Errorf("submission %d already finished", i)
	}
	s.completed = true
	done := s.done
	m.mu.Unlock()

	if done != nil {
		done()
	}
	return nil
}

// Sources returns a snapshot of all recorded submissions
func (m *Mock) Sources() []*MockSource {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*MockSource, len(m.sources))
	copy(out, m.sources)
	return out
}

// FailSubmits makes subsequent SubmitAt calls return err
func (m *Mock) FailSubmits(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitErr = err
}

// FailResume makes subsequent Resume calls return err
func (m *Mock) FailResume(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resumeErr = err
}

// HoldReset blocks the next Reset call until the returned function runs,
// letting tests observe the resetting state
func (m *Mock) HoldReset() func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	gate := make(chan struct{})
	m.resetGate = gate
	return func() {
		close(gate)
		m.mu.Lock()
		m.resetGate = nil
		m.mu.Unlock()
	}
}

// Suspended reports whether the clock is halted
func (m *Mock) Suspended() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.suspended
}

// SuspendCount returns how many effective suspends occurred
func (m *Mock) SuspendCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.suspends
}

// ResumeCount returns how many effective resumes occurred
func (m *Mock) ResumeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resumes
}

// ResetCount returns how many resets completed
func (m *Mock) ResetCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resets
}

// Closed reports whether Close was called
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Stop marks the source stopped
func (s *MockSource) Stop() error {
	s.mock.mu.Lock()
	defer s.mock.mu.Unlock()
	if s.StopErr != nil {
		return s.StopErr
	}
	if s.completed {
		return fmt.Errorf("source already completed")
	}
	s.stopped = true
	return nil
}

// Stopped reports whether Stop was called
func (s *MockSource) Stopped() bool {
	s.mock.mu.Lock()
	defer s.mock.mu.Unlock()
	return s.stopped
}

// Completed reports whether the source finished rendering
func (s *MockSource) Completed() bool {
	s.mock.mu.Lock()
	defer s.mock.mu.Unlock()
	return s.completed
}
