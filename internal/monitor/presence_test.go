package monitor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rbright/usher/internal/config"
)

func presenceConfig() config.PresenceConfig {
	return config.PresenceConfig{
		PollInterval:    time.Millisecond,
		MaxReadFailures: 10,
		MinParticipants: 2,
	}
}

// scriptedCounts replays participant readings, holding the last one.
type scriptedCounts struct {
	mu       sync.Mutex
	readings []func() (int, bool)
	calls    int
}

func (s *scriptedCounts) read(context.Context) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.calls
	if idx >= len(s.readings) {
		idx = len(s.readings) - 1
	}
	s.calls++
	return s.readings[idx]()
}

func (s *scriptedCounts) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func known(n int) func() (int, bool) { return func() (int, bool) { return n, true } }
func unknown() func() (int, bool)    { return func() (int, bool) { return 0, false } }

func TestPresenceTerminatesWhenAlone(t *testing.T) {
	counts := &scriptedCounts{readings: []func() (int, bool){
		known(3), known(2), known(1),
	}}

	var reason string
	done := make(chan struct{})
	m := NewPresence(counts.read, presenceConfig(), 0, func(r string) {
		reason = r
		close(done)
	}, nil)
	go m.Run(context.Background())

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("termination never requested")
	}
	require.Equal(t, "alone-in-meeting", reason)
}

func TestPresenceTwoParticipantsKeepsPolling(t *testing.T) {
	counts := &scriptedCounts{readings: []func() (int, bool){known(2)}}

	terminated := make(chan struct{})
	m := NewPresence(counts.read, presenceConfig(), 0, func(string) {
		close(terminated)
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	m.Run(ctx)

	select {
	case <-terminated:
		t.Fatal("termination requested with two participants")
	default:
	}
	require.Greater(t, counts.callCount(), 1)
}

func TestPresenceDisablesAfterConsecutiveUnknowns(t *testing.T) {
	readings := make([]func() (int, bool), 0, 11)
	for i := 0; i < 10; i++ {
		readings = append(readings, unknown())
	}
	// A good reading after the disable threshold must never be evaluated.
	readings = append(readings, known(1))
	counts := &scriptedCounts{readings: readings}

	terminated := make(chan struct{})
	m := NewPresence(counts.read, presenceConfig(), 0, func(string) {
		close(terminated)
	}, nil)

	finished := make(chan struct{})
	go func() {
		m.Run(context.Background())
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("monitor never disabled itself")
	}

	select {
	case <-terminated:
		t.Fatal("disabled monitor requested termination")
	default:
	}
	require.Equal(t, 10, counts.callCount())
}

func TestPresenceSuccessfulReadResetsFailureCounter(t *testing.T) {
	readings := make([]func() (int, bool), 0, 16)
	for i := 0; i < 9; i++ {
		readings = append(readings, unknown())
	}
	readings = append(readings, known(3))
	for i := 0; i < 5; i++ {
		readings = append(readings, unknown())
	}
	readings = append(readings, known(1))
	counts := &scriptedCounts{readings: readings}

	done := make(chan struct{})
	m := NewPresence(counts.read, presenceConfig(), 0, func(string) {
		close(done)
	}, nil)
	go m.Run(context.Background())

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("termination never requested after counter reset")
	}
}

func TestPresenceRespectsGraceDelay(t *testing.T) {
	counts := &scriptedCounts{readings: []func() (int, bool){known(1)}}

	m := NewPresence(counts.read, presenceConfig(), time.Hour, func(string) {
		t.Error("terminated during grace period")
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	m.Run(ctx)

	require.Equal(t, 0, counts.callCount())
}
