// Package monitor watches the live meeting for end conditions. Monitors only
// request termination; the session controller owns the actual stop routine.
package monitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/rbright/usher/internal/config"
)

// CountReader returns the current participant count. A false result means
// the count could not be extracted this poll.
type CountReader func(ctx context.Context) (int, bool)

// Presence polls the participant count and requests termination when the
// agent is alone. Extraction failures fail open: after enough consecutive
// unknowns the monitor disables itself permanently instead of ending the
// session.
type Presence struct {
	read        CountReader
	cfg         config.PresenceConfig
	grace       time.Duration
	onTerminate func(reason string)
	logger      *slog.Logger
}

// NewPresence builds a presence monitor. onTerminate fires at most once.
func NewPresence(read CountReader, cfg config.PresenceConfig, grace time.Duration, onTerminate func(reason string), logger *slog.Logger) *Presence {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Presence{
		read:        read,
		cfg:         cfg,
		grace:       grace,
		onTerminate: onTerminate,
		logger:      logger,
	}
}

// Run polls until termination is requested, the monitor disables itself, or
// ctx is cancelled.
func (m *Presence) Run(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(m.grace):
	}

	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		count, ok := m.read(ctx)
		if !ok {
			failures++
			if failures >= m.cfg.MaxReadFailures {
				m.logger.Warn("presence monitor disabled",
					"consecutive_failures", failures)
				return
			}
			continue
		}
		failures = 0

		if count < m.cfg.MinParticipants {
			m.logger.Info("participant count below minimum",
				"count", count,
				"minimum", m.cfg.MinParticipants)
			m.onTerminate("alone-in-meeting")
			return
		}
	}
}
