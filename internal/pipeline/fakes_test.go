package pipeline

import (
	"context"
	"sync"

	"github.com/rbright/usher/internal/page"
)

type fakeVoiceSource struct {
	mu      sync.Mutex
	played  bool
	stopped bool
	playErr error
}

func (f *fakeVoiceSource) Play(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.played = true
	return f.playErr
}

func (f *fakeVoiceSource) Stop(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
	return nil
}

type fakeTrack struct {
	id     string
	muted  bool
	frames chan []int16
}

func (f *fakeTrack) ID() string  { return f.id }
func (f *fakeTrack) Muted() bool { return f.muted }
func (f *fakeTrack) Frames(context.Context) (<-chan []int16, error) {
	return f.frames, nil
}

type fakeRecognition struct {
	stopped bool
}

func (f *fakeRecognition) Stop(context.Context) error {
	f.stopped = true
	return nil
}

// fakeMedia scripts the page media bridge for pipeline tests.
type fakeMedia struct {
	mu sync.Mutex

	source        *fakeVoiceSource
	createErr     error
	installCalls  int
	installErr    error
	swapResult    bool
	swapErr       error
	swapCalls     int
	toggleCalls   int
	tracks        []page.AudioTrack
	tracksErr     error
	trackCalls    int
	recognition   *fakeRecognition
	startRecCalls int
	startRecErr   error
	onRecResult   func(text string, final bool)
	onRecEnd      func()
}

func (f *fakeMedia) CreateVoiceSource(context.Context, []byte) (page.VoiceSource, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.source, nil
}

func (f *fakeMedia) InstallMicSource(context.Context, page.VoiceSource) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.installCalls++
	return f.installErr
}

func (f *fakeMedia) SwapOutboundAudio(context.Context, page.VoiceSource) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.swapCalls++
	return f.swapResult, f.swapErr
}

func (f *fakeMedia) ToggleMicrophone(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.toggleCalls++
	return nil
}

func (f *fakeMedia) HasOutboundAudio(context.Context) (bool, error) { return true, nil }

func (f *fakeMedia) InboundAudioTracks(context.Context) ([]page.AudioTrack, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trackCalls++
	return f.tracks, f.tracksErr
}

func (f *fakeMedia) AmbientEnergy(context.Context) (float64, error) { return 0, nil }

func (f *fakeMedia) SupportsCodec(context.Context, string) (bool, error) { return true, nil }

func (f *fakeMedia) StartRecording(context.Context, page.RecordingOptions) (page.RecordingStream, error) {
	return nil, nil
}

func (f *fakeMedia) StartSpeechRecognition(_ context.Context, onResult func(text string, final bool), onEnd func()) (page.SpeechRecognition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startRecCalls++
	if f.startRecErr != nil {
		return nil, f.startRecErr
	}
	f.onRecResult = onResult
	f.onRecEnd = onEnd
	return f.recognition, nil
}
