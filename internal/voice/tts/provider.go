// Package tts defines the text-to-speech collaborator contract.
package tts

import "context"

// Provider converts response text into playable audio bytes. Implementations
// return audio in one fixed container: 16 kHz mono PCM16 WAV.
type Provider interface {
	Name() string
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
