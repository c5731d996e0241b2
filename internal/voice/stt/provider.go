// Package stt defines the speech-to-text collaborator contract.
package stt

import "context"

// Provider transcribes meeting audio. Batch submission takes one WAV-encoded
// buffer; streaming sessions accept raw PCM chunks and deliver interim and
// final transcript events through a callback.
type Provider interface {
	Name() string

	// TranscribeBatch converts one WAV buffer to text.
	TranscribeBatch(ctx context.Context, wav []byte) (string, error)

	// OpenStream starts a streaming recognition session identified by id.
	// onTranscript fires for each update; final=true events are actionable.
	OpenStream(ctx context.Context, id string, onTranscript func(text string, final bool)) (Stream, error)
}

// Stream is one live streaming recognition session.
type Stream interface {
	// SendChunk forwards raw PCM16 audio to the recognizer.
	SendChunk(data []byte) error
	// Close tears the session down. Safe to call more than once.
	Close() error
}
