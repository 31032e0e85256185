// ABOUTME: Tests for the mock device
// ABOUTME: Tests manual clock, completions, and hold-reset gating
package device

import (
	"errors"
	"testing"
	"time"

	"github.com/Chunkcast-Protocol/chunkcast-go/pkg/audio"
)

func testBuf(n, rate int) audio.Buffer {
	return audio.Buffer{Samples: make([]float64, n), SampleRate: rate}
}

func TestMockClock(t *testing.T) {
	m := NewMock()

	if m.Now() != 0 {
		t.Errorf("expected clock at 0, got %v", m.Now())
	}

	m.Advance(250 * time.Millisecond)
	if m.Now() != 250*time.Millisecond {
		t.Errorf("expected 250ms, got %v", m.Now())
	}
}

func TestMockSubmitAndComplete(t *testing.T) {
	m := NewMock()

	fired := 0
	_, err := m.SubmitAt(testBuf(480, 48000), 0, func() { fired++ })
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if fired != 0 {
		t.Fatal("done fired before Complete")
	}

	if err := m.Complete(0); err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if fired != 1 {
		t.Errorf("expected done to fire once, fired %d times", fired)
	}

	// A completed source cannot complete again
	if err := m.Complete(0); err == nil {
		t.Error("expected error completing twice")
	}
}

func TestMockStopSuppressesCompletion(t *testing.T) {
	m := NewMock()

	src, err := m.SubmitAt(testBuf(480, 48000), 0, func() { t.Error("done fired for stopped source") })
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if err := src.Stop(); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if err := m.Complete(0); err == nil {
		t.Error("expected error completing a stopped source")
	}
}

func TestMockSuspendResumeIdempotent(t *testing.T) {
	m := NewMock()

	m.Suspend()
	m.Suspend()
	if m.SuspendCount() != 1 {
		t.Errorf("expected 1 effective suspend, got %d", m.SuspendCount())
	}

	m.Resume()
	m.Resume()
	if m.ResumeCount() != 1 {
		t.Errorf("expected 1 effective resume, got %d", m.ResumeCount())
	}
}

func TestMockReset(t *testing.T) {
	m := NewMock()
	m.Advance(time.Second)
	m.SubmitAt(testBuf(480, 48000), 0, nil)

	if err := m.Reset(); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	if m.Now() != 0 {
		t.Errorf("expected clock re-zeroed, got %v", m.Now())
	}
	if len(m.Sources()) != 0 {
		t.Errorf("expected submissions dropped, got %d", len(m.Sources()))
	}
	if m.ResetCount() != 1 {
		t.Errorf("expected 1 reset, got %d", m.ResetCount())
	}
}

func TestMockHoldReset(t *testing.T) {
	m := NewMock()
	release := m.HoldReset()

	doneCh := make(chan struct{})
	go func() {
		m.Reset()
		close(doneCh)
	}()

	select {
	case <-doneCh:
		t.Fatal("reset finished before release")
	case <-time.After(20 * time.Millisecond):
	}

	release()

	select {
	case <-doneCh:
	case <-time.After(time.Second):
		t.Fatal("reset did not finish after release")
	}
}

func TestMockFailSubmits(t *testing.T) {
	m := NewMock()
	boom := errors.New("boom")
	m.FailSubmits(boom)

	if _, err := m.SubmitAt(testBuf(480, 48000), 0, nil); !errors.Is(err, boom) {
		t.Errorf("expected injected error, got %v", err)
	}
}

func TestMockStopErr(t *testing.T) {
	m := NewMock()
	src, _ := m.SubmitAt(testBuf(480, 48000), 0, nil)

	boom := errors.New("stop failed")
	src.(*MockSource).StopErr = boom
	if err := src.Stop(); !errors.Is(err, boom) {
		t.Errorf("expected injected stop error, got %v", err)
	}
}
