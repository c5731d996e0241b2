package monitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/rbright/usher/internal/config"
)

// EnergySampler returns the current ambient audio energy.
type EnergySampler func(ctx context.Context) (float64, error)

// Silence accumulates quiet time and requests termination when the meeting
// has been silent past the inactivity limit. Any sampling error disables the
// monitor rather than ending the session.
type Silence struct {
	sample      EnergySampler
	cfg         config.SilenceConfig
	grace       time.Duration
	onTerminate func(reason string)
	logger      *slog.Logger
}

// NewSilence builds a silence monitor. onTerminate fires at most once.
func NewSilence(sample EnergySampler, cfg config.SilenceConfig, grace time.Duration, onTerminate func(reason string), logger *slog.Logger) *Silence {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Silence{
		sample:      sample,
		cfg:         cfg,
		grace:       grace,
		onTerminate: onTerminate,
		logger:      logger,
	}
}

// Run samples until termination is requested, a sampling error disables the
// monitor, or ctx is cancelled. The silence counter accumulates one sample
// interval per below-threshold reading and resets to zero on any reading at
// or above threshold.
func (m *Silence) Run(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(m.grace):
	}

	ticker := time.NewTicker(m.cfg.SampleInterval)
	defer ticker.Stop()

	var silence time.Duration
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		energy, err := m.sample(ctx)
		if err != nil {
			m.logger.Warn("silence monitor disabled", "error", err)
			return
		}

		if energy < m.cfg.EnergyThreshold {
			silence += m.cfg.SampleInterval
			if silence >= m.cfg.InactivityLimit {
				m.logger.Info("prolonged silence detected",
					"silence", silence.String())
				m.onTerminate("prolonged-silence")
				return
			}
			continue
		}
		silence = 0
	}
}
