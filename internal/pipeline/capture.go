package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rbright/usher/internal/config"
	"github.com/rbright/usher/internal/page"
	"github.com/rbright/usher/internal/retry"
	"github.com/rbright/usher/internal/voice"
	"github.com/rbright/usher/internal/voice/stt"
)

var errNoInboundTracks = errors.New("no inbound audio tracks")

// Capture extracts inbound meeting audio and produces finalized transcripts.
// The primary strategy batches remote track samples for the speech-to-text
// provider; when no remote transport can be located it falls back to the
// page's built-in speech recognition.
type Capture struct {
	media     page.Media
	stt       stt.Provider
	cfg       config.CaptureConfig
	sessionID string
	onFinal   func(text string)
	logger    *slog.Logger

	mu     sync.Mutex
	stream stt.Stream
}

// NewCapture builds a capture path. onFinal receives each finalized
// transcript.
func NewCapture(media page.Media, provider stt.Provider, cfg config.CaptureConfig, sessionID string, onFinal func(text string), logger *slog.Logger) *Capture {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Capture{
		media:     media,
		stt:       provider,
		cfg:       cfg,
		sessionID: sessionID,
		onFinal:   onFinal,
		logger:    logger,
	}
}

// Run captures until ctx is cancelled. It never returns an error to the
// session loop; capture degradation is logged and absorbed.
func (c *Capture) Run(ctx context.Context) {
	track, err := c.locateTrack(ctx)
	if err != nil {
		c.logger.Warn("remote audio unavailable, using built-in recognition", "error", err)
		c.runRecognitionFallback(ctx)
		return
	}

	frames, err := track.Frames(ctx)
	if err != nil {
		c.logger.Warn("track frames unavailable, using built-in recognition", "error", err)
		c.runRecognitionFallback(ctx)
		return
	}

	c.openStream(ctx)
	defer c.CloseStream()

	batch := &pendingBatch{}
	ticker := time.NewTicker(c.cfg.SubmitInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-frames:
			if !ok {
				return
			}
			batch.add(frame, c.cfg.ActivityThreshold, time.Now())
		case now := <-ticker.C:
			samples, action := batch.evaluate(now, c.cfg)
			switch action {
			case batchSubmit:
				c.submit(ctx, samples)
			case batchDiscard:
				c.logger.Debug("stale audio batch discarded")
			}
		}
	}
}

// locateTrack finds an inbound audio track, preferring unmuted ones. A muted
// track is still used, with a degraded-capture warning, when nothing better
// exists.
func (c *Capture) locateTrack(ctx context.Context) (page.AudioTrack, error) {
	policy := retry.Policy{
		MaxAttempts: c.cfg.TransportRetries,
		Wait:        c.cfg.TransportWait,
	}
	return retry.Do(ctx, policy, func(ctx context.Context) (page.AudioTrack, error) {
		tracks, err := c.media.InboundAudioTracks(ctx)
		if err != nil {
			return nil, fmt.Errorf("list inbound tracks: %w", err)
		}
		if len(tracks) == 0 {
			return nil, errNoInboundTracks
		}
		for _, t := range tracks {
			if !t.Muted() {
				return t, nil
			}
		}
		c.logger.Warn("only muted inbound tracks available, capture degraded",
			"track", tracks[0].ID())
		return tracks[0], nil
	})
}

// openStream starts a streaming recognition session when the provider offers
// one; failures degrade to per-batch transcription.
func (c *Capture) openStream(ctx context.Context) {
	stream, err := c.stt.OpenStream(ctx, c.sessionID, func(text string, final bool) {
		if final {
			c.emit(text)
		}
	})
	if err != nil {
		c.logger.Warn("streaming transcription unavailable, using batch mode", "error", err)
		return
	}
	c.mu.Lock()
	c.stream = stream
	c.mu.Unlock()
}

// CloseStream force-closes any open streaming transcription session. Close
// failures are logged, never escalated.
func (c *Capture) CloseStream() {
	c.mu.Lock()
	stream := c.stream
	c.stream = nil
	c.mu.Unlock()

	if stream == nil {
		return
	}
	if err := stream.Close(); err != nil {
		c.logger.Warn("transcription stream close failed", "error", err)
	}
}

// submit ships one batch: over the stream when open, otherwise as a WAV
// buffer to batch transcription. Provider failures degrade to an empty
// transcript.
func (c *Capture) submit(ctx context.Context, samples []int16) {
	c.mu.Lock()
	stream := c.stream
	c.mu.Unlock()

	if stream != nil {
		if err := stream.SendChunk(voice.EncodePCM(samples)); err != nil {
			c.logger.Warn("stream chunk send failed", "error", err)
			c.CloseStream()
		}
		return
	}

	wav := voice.EncodeWAV(samples, c.cfg.SampleRate, 1)
	text, err := c.stt.TranscribeBatch(ctx, wav)
	if err != nil {
		c.logger.Warn("batch transcription failed", "error", err)
		return
	}
	c.emit(text)
}

func (c *Capture) emit(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	if c.onFinal != nil {
		c.onFinal(text)
	}
}

// runRecognitionFallback drives the page's built-in continuous speech
// recognition, restarting it whenever it ends on its own. A start racing a
// still-live run is benign.
func (c *Capture) runRecognitionFallback(ctx context.Context) {
	var mu sync.Mutex
	var current page.SpeechRecognition

	var start func()
	start = func() {
		if ctx.Err() != nil {
			return
		}
		rec, err := c.media.StartSpeechRecognition(ctx, func(text string, final bool) {
			if final {
				c.emit(text)
			}
		}, func() {
			start()
		})
		if err != nil {
			if errors.Is(err, page.ErrRecognitionRunning) {
				return
			}
			c.logger.Warn("built-in recognition start failed", "error", err)
			return
		}
		mu.Lock()
		current = rec
		mu.Unlock()
	}

	start()
	<-ctx.Done()

	mu.Lock()
	rec := current
	mu.Unlock()
	if rec != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rec.Stop(stopCtx); err != nil {
			c.logger.Warn("built-in recognition stop failed", "error", err)
		}
	}
}
