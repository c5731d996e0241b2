package pipeline

import (
	"sync"
	"time"

	"github.com/rbright/usher/internal/config"
	"github.com/rbright/usher/internal/voice"
)

// batchAction is the outcome of one submission check.
type batchAction int

const (
	batchHold batchAction = iota
	batchSubmit
	batchDiscard
)

// pendingBatch accumulates raw audio samples between submissions and tracks
// when above-threshold activity was last heard.
type pendingBatch struct {
	mu           sync.Mutex
	samples      []int16
	lastActivity time.Time
	lastSubmit   time.Time
}

// add appends one sample frame, updating the activity timestamp when the
// frame's level clears the threshold.
func (b *pendingBatch) add(frame []int16, threshold float64, now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.samples = append(b.samples, frame...)
	if voice.Level(frame) >= threshold {
		b.lastActivity = now
	}
}

// evaluate runs one submission check. A batch with no recent activity is
// discarded rather than submitted; a batch that does not exceed the minimum
// duration, or one arriving too soon after the previous submission, is held
// for the next check.
// On submit the accumulated samples are returned and the batch cleared.
func (b *pendingBatch) evaluate(now time.Time, cfg config.CaptureConfig) ([]int16, batchAction) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.samples) == 0 {
		return nil, batchHold
	}
	if b.lastActivity.IsZero() || now.Sub(b.lastActivity) > cfg.ActivityWindow {
		b.samples = nil
		return nil, batchDiscard
	}
	if voice.Duration(len(b.samples), cfg.SampleRate) <= cfg.MinBatch {
		return nil, batchHold
	}
	if !b.lastSubmit.IsZero() && now.Sub(b.lastSubmit) < cfg.MinSubmissionGap {
		return nil, batchHold
	}

	samples := b.samples
	b.samples = nil
	b.lastSubmit = now
	return samples, batchSubmit
}
