// Package recorder captures the combined display and audio stream and ships
// it to the uploader in fixed-size chunks.
package recorder

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rbright/usher/internal/config"
	"github.com/rbright/usher/internal/page"
)

// ChunkSink receives encoded recording chunks as they are produced.
type ChunkSink interface {
	SaveChunk(data []byte) error
}

// Recorder drives one recording run. Stop may be called any number of times
// from any goroutine; the cleanup side effects execute exactly once.
type Recorder struct {
	media  page.Media
	sink   ChunkSink
	cfg    config.RecorderConfig
	logger *slog.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
}

// New builds a recorder writing chunks to sink.
func New(media page.Media, sink ChunkSink, cfg config.RecorderConfig, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Recorder{
		media:  media,
		sink:   sink,
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

// Stop requests the end of the recording. Idempotent.
func (r *Recorder) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
}

// Record captures until Stop, the duration cap, or ctx cancellation, then
// drains remaining chunks and returns. Each non-empty chunk is base64-encoded
// before it reaches the sink.
func (r *Recorder) Record(ctx context.Context, durationCap time.Duration) error {
	mimeType, err := r.selectCodec(ctx)
	if err != nil {
		return err
	}

	stream, err := r.media.StartRecording(ctx, page.RecordingOptions{
		MimeType:      mimeType,
		ChunkInterval: r.cfg.ChunkInterval,
	})
	if err != nil {
		return fmt.Errorf("start recording: %w", err)
	}

	r.logger.Info("recording started",
		"mime_type", mimeType,
		"chunk_interval", r.cfg.ChunkInterval.String())

	capTimer := time.NewTimer(durationCap)
	defer capTimer.Stop()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-r.stopCh:
			break loop
		case <-capTimer.C:
			r.logger.Info("recording duration cap reached")
			break loop
		case chunk, ok := <-stream.Chunks():
			if !ok {
				if err := stream.Err(); err != nil {
					return fmt.Errorf("recording stream: %w", err)
				}
				return nil
			}
			r.save(chunk)
		}
	}

	r.stopStream(stream)
	for chunk := range stream.Chunks() {
		r.save(chunk)
	}
	return nil
}

// selectCodec picks the primary codec when the runtime supports it, else the
// fallback.
func (r *Recorder) selectCodec(ctx context.Context) (string, error) {
	supported, err := r.media.SupportsCodec(ctx, r.cfg.PrimaryCodec)
	if err != nil {
		return "", fmt.Errorf("probe codec support: %w", err)
	}
	if supported {
		return r.cfg.PrimaryCodec, nil
	}
	r.logger.Warn("primary codec unsupported, using fallback",
		"primary", r.cfg.PrimaryCodec,
		"fallback", r.cfg.FallbackCodec)
	return r.cfg.FallbackCodec, nil
}

func (r *Recorder) stopStream(stream page.RecordingStream) {
	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := stream.Stop(stopCtx); err != nil {
		r.logger.Warn("recording stream stop failed", "error", err)
	}
}

func (r *Recorder) save(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	encoded := make([]byte, base64.StdEncoding.EncodedLen(len(chunk)))
	base64.StdEncoding.Encode(encoded, chunk)
	if err := r.sink.SaveChunk(encoded); err != nil {
		r.logger.Warn("chunk upload failed", "error", err)
	}
}
