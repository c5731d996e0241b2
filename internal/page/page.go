// Package page defines the automation capabilities a provisioned meeting page
// must expose. Concrete browser drivers implement these contracts outside this
// module; everything here treats selector logic as data so callers never
// hard-code a specific web application's layout.
package page

import (
	"context"
	"errors"
	"time"
)

// Factory provisions a page handle for one meeting URL.
type Factory interface {
	Open(ctx context.Context, url string, correlationID string, appTag string) (Handle, error)
}

// Handle is one live page. Element primitives report absence through their
// boolean result; errors are reserved for broken automation transport.
type Handle interface {
	Navigate(ctx context.Context, url string) error

	// WaitVisible blocks until the selector matches a visible element or the
	// timeout elapses. A false result means "not there", not failure.
	WaitVisible(ctx context.Context, css string, timeout time.Duration) (bool, error)
	Visible(ctx context.Context, css string) (bool, error)
	Click(ctx context.Context, css string, timeout time.Duration) (bool, error)
	Fill(ctx context.Context, css string, value string, timeout time.Duration) (bool, error)

	// ExtractText evaluates a single selector strategy and returns the matched
	// element's text. A false result means the strategy matched nothing.
	ExtractText(ctx context.Context, strategy Strategy) (string, bool, error)

	// Eval runs a script in page context, decoding its result into out when
	// out is non-nil.
	Eval(ctx context.Context, script string, out any) error

	// OnConsole subscribes to page console output.
	OnConsole(fn func(line string))

	// Expose registers a host function callable from page scripts.
	Expose(name string, fn func(payload string)) error

	// Screenshot captures a diagnostic snapshot of the current viewport.
	Screenshot(ctx context.Context) ([]byte, error)

	Media() Media

	Close(ctx context.Context) error
}

// ErrRecognitionRunning reports a start of the page's built-in speech
// recognition while a previous run is still live. Callers treat it as benign.
var ErrRecognitionRunning = errors.New("speech recognition already running")

// Media is the in-page media bridge. Transport discovery is explicit: the
// bridge maintains a registry of live inbound/outbound audio transports
// populated at creation time rather than walking object graphs on demand.
type Media interface {
	// CreateVoiceSource decodes synthesized audio bytes into a playable
	// in-page source.
	CreateVoiceSource(ctx context.Context, audio []byte) (VoiceSource, error)

	// InstallMicSource registers src as the stream handed out for any future
	// microphone request made by the page application.
	InstallMicSource(ctx context.Context, src VoiceSource) error

	// SwapOutboundAudio hot-swaps the active outbound audio track to src. A
	// false result means no outbound transport was discoverable.
	SwapOutboundAudio(ctx context.Context, src VoiceSource) (bool, error)

	// ToggleMicrophone flips the application's local microphone control,
	// typically provoking a fresh microphone request.
	ToggleMicrophone(ctx context.Context) error

	// HasOutboundAudio reports whether any outbound audio source exists.
	HasOutboundAudio(ctx context.Context) (bool, error)

	// InboundAudioTracks lists the registered remote audio tracks.
	InboundAudioTracks(ctx context.Context) ([]AudioTrack, error)

	// AmbientEnergy samples the current frequency-domain energy of the
	// meeting's audio over a small analysis window.
	AmbientEnergy(ctx context.Context) (float64, error)

	// SupportsCodec reports whether the runtime can record the MIME type.
	SupportsCodec(ctx context.Context, mimeType string) (bool, error)

	// StartRecording begins a combined display+audio recording emitting
	// fixed-interval chunks.
	StartRecording(ctx context.Context, opts RecordingOptions) (RecordingStream, error)

	// StartSpeechRecognition starts the page's built-in continuous speech
	// recognition, if present. onEnd fires when recognition stops on its own.
	StartSpeechRecognition(ctx context.Context, onResult func(text string, final bool), onEnd func()) (SpeechRecognition, error)
}

// VoiceSource is a playable synthesized-audio source living inside the page.
type VoiceSource interface {
	// Play starts playback and blocks until it completes naturally.
	Play(ctx context.Context) error
	// Stop halts playback and releases the source.
	Stop(ctx context.Context) error
}

// AudioTrack is one registered remote audio track.
type AudioTrack interface {
	ID() string
	Muted() bool
	// Frames streams raw PCM sample frames until the track ends or ctx is
	// cancelled.
	Frames(ctx context.Context) (<-chan []int16, error)
}

// RecordingOptions configures one recording run.
type RecordingOptions struct {
	MimeType      string
	ChunkInterval time.Duration
}

// RecordingStream emits encoded media chunks until stopped.
type RecordingStream interface {
	// Chunks is closed after Stop or on stream failure.
	Chunks() <-chan []byte
	// Stop halts recording; safe to call more than once.
	Stop(ctx context.Context) error
	Err() error
}

// SpeechRecognition is one live built-in recognition run.
type SpeechRecognition interface {
	Stop(ctx context.Context) error
}
