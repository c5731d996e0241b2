// Package pipeline carries meeting audio in both directions: the synthesis
// path injects spoken replies into the outbound stream, the capture path
// extracts inbound audio and turns it into transcripts.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/rbright/usher/internal/page"
	"github.com/rbright/usher/internal/voice/tts"
)

// Speaker plays synthesized speech into the meeting.
type Speaker struct {
	media  page.Media
	tts    tts.Provider
	logger *slog.Logger
}

// NewSpeaker builds a speaker over the page's media bridge.
func NewSpeaker(media page.Media, provider tts.Provider, logger *slog.Logger) *Speaker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Speaker{media: media, tts: provider, logger: logger}
}

// Speak synthesizes text and transmits it as the agent's microphone audio.
// The synthetic source is installed as the answer to any future microphone
// request; an already-established outbound transport gets its track swapped
// in place when one is discoverable, otherwise toggling the microphone
// control provokes a fresh request. Errors never propagate to the caller.
func (s *Speaker) Speak(ctx context.Context, text string) {
	if s.tts == nil || text == "" {
		return
	}

	audio, err := s.tts.Synthesize(ctx, text)
	if err != nil {
		s.logger.Warn("speech synthesis failed", "error", err)
		return
	}

	src, err := s.media.CreateVoiceSource(ctx, audio)
	if err != nil {
		s.logger.Warn("voice source creation failed", "error", err)
		return
	}

	if err := s.media.InstallMicSource(ctx, src); err != nil {
		s.logger.Warn("mic source install failed", "error", err)
	}

	swapped, err := s.media.SwapOutboundAudio(ctx, src)
	if err != nil {
		s.logger.Warn("outbound track swap failed", "error", err)
		swapped = false
	}
	if !swapped {
		// No discoverable transport. Provoke a fresh microphone request so
		// the application picks up the installed source.
		if err := s.media.ToggleMicrophone(ctx); err != nil {
			s.logger.Warn("microphone toggle failed", "error", err)
		}
	}

	if err := src.Play(ctx); err != nil {
		s.logger.Warn("voice playback failed", "error", err)
	}

	if swapped {
		// The swapped track keeps transmitting until the transport drains it.
		return
	}
	if err := src.Stop(ctx); err != nil {
		s.logger.Warn("voice source stop failed", "error", err)
	}
}
