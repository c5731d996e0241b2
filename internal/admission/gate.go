// Package admission decides whether the agent was let into the meeting.
package admission

import (
	"context"
	"fmt"
	"time"

	"github.com/rbright/usher/internal/config"
	"github.com/rbright/usher/internal/retry"
)

// Outcome is the single admission verdict for a session.
type Outcome string

const (
	OutcomeAdmitted Outcome = "admitted"
	OutcomeDenied   Outcome = "denied"
	OutcomeTimedOut Outcome = "timed-out"
)

// Signals is one poll's view of the waiting-room UI.
type Signals struct {
	// InCallUI reports baseline in-call evidence such as a people-list
	// control. Without it the poll carries no information.
	InCallUI bool

	Denied          bool
	WaitingForHost  bool
	RequestTimedOut bool

	// ParticipantCount is the visible counter value, or -1 when unreadable.
	// A count of at least 1 is the confirmation that admission is real and
	// not just the in-call shell rendering early.
	ParticipantCount int

	// BodyText is diagnostic page text captured alongside the cues.
	BodyText string
}

// Reader produces one Signals snapshot per poll.
type Reader interface {
	Read(ctx context.Context) (Signals, error)
}

// ReaderFunc adapts a function to the Reader interface.
type ReaderFunc func(ctx context.Context) (Signals, error)

func (f ReaderFunc) Read(ctx context.Context) (Signals, error) { return f(ctx) }

// Result is the gate's verdict plus the diagnostic context callers report on
// failure.
type Result struct {
	Outcome  Outcome
	BodyText string
	Polls    int
}

// Gate polls admission signals until a verdict or timeout. Run at most once
// per session.
type Gate struct {
	reader   Reader
	interval time.Duration
	timeout  time.Duration
	step     retry.Policy
}

// New builds a gate over reader with the configured poll cadence. Individual
// reads retry per the step policy before the gate gives up on them.
func New(reader Reader, cfg config.AdmissionConfig, onReadFailure func(ctx context.Context, attempt int, err error)) *Gate {
	return &Gate{
		reader:   reader,
		interval: cfg.PollInterval,
		timeout:  cfg.Timeout,
		step: retry.Policy{
			MaxAttempts: cfg.StepAttempts,
			Wait:        cfg.StepWait,
			OnFailure:   onReadFailure,
		},
	}
}

// Await polls until the meeting admits, denies, or times the request out.
// Denial wins over any later confirmation; a participant count of at least 1
// is required before declaring admission. A read that keeps failing past its
// retry budget is session-fatal.
func (g *Gate) Await(ctx context.Context) (Result, error) {
	deadline := time.Now().Add(g.timeout)
	polls := 0

	for {
		polls++
		sig, err := retry.Do(ctx, g.step, g.reader.Read)
		if err != nil {
			return Result{}, fmt.Errorf("read admission signals: %w", err)
		}

		if sig.InCallUI {
			switch {
			case sig.Denied:
				return Result{Outcome: OutcomeDenied, BodyText: sig.BodyText, Polls: polls}, nil
			case sig.WaitingForHost:
				// Host has not acted yet. Keep waiting.
			case sig.RequestTimedOut:
				return Result{Outcome: OutcomeTimedOut, BodyText: sig.BodyText, Polls: polls}, nil
			case sig.ParticipantCount >= 1:
				return Result{Outcome: OutcomeAdmitted, Polls: polls}, nil
			}
		}

		// When the next poll would land past the deadline, wait out the
		// remainder so the configured timeout fully elapses, then give up.
		if remaining := time.Until(deadline); remaining < g.interval {
			if remaining > 0 {
				select {
				case <-ctx.Done():
					return Result{}, ctx.Err()
				case <-time.After(remaining):
				}
			}
			return Result{Outcome: OutcomeTimedOut, BodyText: sig.BodyText, Polls: polls}, nil
		}

		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-time.After(g.interval):
		}
	}
}
