package admission

import (
	"context"

	"github.com/rbright/usher/internal/page"
)

// CueSet holds the selector chains for every admission cue. Chains are data
// so each supported meeting application ships its own set.
type CueSet struct {
	InCallUI         page.Chain
	Denial           page.Chain
	WaitingForHost   page.Chain
	RequestTimedOut  page.Chain
	ParticipantCount page.Chain
	BodyText         page.Chain
}

// PageReader reads admission signals from a live page through a cue set.
type PageReader struct {
	handle page.Handle
	cues   CueSet
}

// NewPageReader builds a reader over handle.
func NewPageReader(handle page.Handle, cues CueSet) *PageReader {
	return &PageReader{handle: handle, cues: cues}
}

// Read evaluates each cue chain against the current page state.
func (r *PageReader) Read(ctx context.Context) (Signals, error) {
	var sig Signals
	sig.ParticipantCount = -1

	if _, ok := page.ExtractFirst(ctx, r.handle, r.cues.InCallUI); !ok {
		return sig, nil
	}
	sig.InCallUI = true

	if text, ok := page.ExtractFirst(ctx, r.handle, r.cues.BodyText); ok {
		sig.BodyText = text
	}
	if text, ok := page.ExtractFirst(ctx, r.handle, r.cues.Denial); ok {
		sig.Denied = true
		sig.BodyText = text
		return sig, nil
	}
	if _, ok := page.ExtractFirst(ctx, r.handle, r.cues.WaitingForHost); ok {
		sig.WaitingForHost = true
		return sig, nil
	}
	if text, ok := page.ExtractFirst(ctx, r.handle, r.cues.RequestTimedOut); ok {
		sig.RequestTimedOut = true
		sig.BodyText = text
		return sig, nil
	}
	if text, ok := page.ExtractFirst(ctx, r.handle, r.cues.ParticipantCount); ok {
		if n, ok := page.ParseParticipantCount(text); ok {
			sig.ParticipantCount = n
		}
	}
	return sig, nil
}
