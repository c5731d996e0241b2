// Package convo turns finalized meeting transcripts into spoken replies.
package convo

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rbright/usher/internal/config"
	"github.com/rbright/usher/internal/respond"
)

// Speaker plays reply text into the meeting.
type Speaker interface {
	Speak(ctx context.Context, text string)
}

// Engine serializes replies through a single responding flag: transcripts
// arriving while a reply is in flight are dropped, and the flag stays set for
// a cool-down after playback so residual audio cannot immediately re-trigger
// a response.
type Engine struct {
	provider respond.Provider
	speaker  Speaker
	cooldown time.Duration
	fallback string
	logger   *slog.Logger

	responding atomic.Bool
}

// New builds an engine. provider must be non-nil; callers that disable
// conversational responses simply never construct an engine.
func New(provider respond.Provider, speaker Speaker, cfg config.ResponderConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		provider: provider,
		speaker:  speaker,
		cooldown: cfg.Cooldown,
		fallback: cfg.FallbackLine,
		logger:   logger,
	}
}

// Responding reports whether a reply is currently in flight or cooling down.
func (e *Engine) Responding() bool {
	return e.responding.Load()
}

// OnTranscript considers one finalized transcript. Trivial text and text
// arriving mid-reply are ignored; otherwise the reply runs asynchronously so
// the capture path never blocks on providers.
func (e *Engine) OnTranscript(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if len(text) <= 2 {
		return
	}
	if !e.responding.CompareAndSwap(false, true) {
		return
	}
	go e.reply(ctx, text)
}

func (e *Engine) reply(ctx context.Context, text string) {
	defer e.clearAfterCooldown(ctx)

	reply := e.fallback
	generated, err := e.provider.Respond(ctx, text)
	if err != nil {
		e.logger.Warn("response generation failed, using fallback", "error", err)
	} else if strings.TrimSpace(generated) != "" {
		reply = generated
	}

	e.speaker.Speak(ctx, reply)
}

func (e *Engine) clearAfterCooldown(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(e.cooldown):
	}
	e.responding.Store(false)
}
