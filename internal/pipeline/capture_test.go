package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rbright/usher/internal/config"
	"github.com/rbright/usher/internal/page"
	"github.com/rbright/usher/internal/voice/stt"
)

type fakeStream struct {
	mu      sync.Mutex
	chunks  [][]byte
	sendErr error
	closes  int
}

func (f *fakeStream) SendChunk(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.chunks = append(f.chunks, data)
	return nil
}

func (f *fakeStream) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	return nil
}

func (f *fakeStream) chunkCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.chunks)
}

func (f *fakeStream) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closes
}

type fakeSTT struct {
	mu           sync.Mutex
	batchText    string
	batchErr     error
	batchCalls   int
	stream       *fakeStream
	streamErr    error
	onTranscript func(text string, final bool)
}

func (f *fakeSTT) Name() string { return "fake" }

func (f *fakeSTT) TranscribeBatch(context.Context, []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchCalls++
	return f.batchText, f.batchErr
}

func (f *fakeSTT) OpenStream(_ context.Context, _ string, onTranscript func(text string, final bool)) (stt.Stream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	f.onTranscript = onTranscript
	return f.stream, nil
}

func (f *fakeSTT) transcriptCallback() func(text string, final bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.onTranscript
}

func fastCaptureConfig() config.CaptureConfig {
	return config.CaptureConfig{
		SampleRate:        1000,
		SubmitInterval:    5 * time.Millisecond,
		MinBatch:          5 * time.Millisecond,
		MinSubmissionGap:  time.Millisecond,
		ActivityWindow:    time.Second,
		ActivityThreshold: 0.01,
		TransportRetries:  2,
		TransportWait:     0,
	}
}

// collector gathers finalized transcripts.
type collector struct {
	mu    sync.Mutex
	texts []string
}

func (c *collector) add(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.texts = append(c.texts, text)
}

func (c *collector) all() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.texts...)
}

func TestCaptureFallsBackToBuiltInRecognition(t *testing.T) {
	media := &fakeMedia{recognition: &fakeRecognition{}}
	got := &collector{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	capture := NewCapture(media, &fakeSTT{}, fastCaptureConfig(), "sess-1", got.add, nil)
	done := make(chan struct{})
	go func() {
		capture.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		media.mu.Lock()
		defer media.mu.Unlock()
		return media.startRecCalls == 1 && media.onRecResult != nil
	}, time.Second, time.Millisecond)

	media.mu.Lock()
	onResult, onEnd := media.onRecResult, media.onRecEnd
	media.mu.Unlock()

	onResult("interim words", false)
	onResult("final words", true)
	require.Equal(t, []string{"final words"}, got.all())

	// Recognition ending on its own restarts it.
	onEnd()
	media.mu.Lock()
	restarts := media.startRecCalls
	media.mu.Unlock()
	require.Equal(t, 2, restarts)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("capture never stopped")
	}
	require.True(t, media.recognition.stopped)
}

func TestCaptureFallbackSwallowsAlreadyRunningRace(t *testing.T) {
	media := &fakeMedia{startRecErr: page.ErrRecognitionRunning}

	ctx, cancel := context.WithCancel(context.Background())
	capture := NewCapture(media, &fakeSTT{}, fastCaptureConfig(), "sess-1", nil, nil)

	done := make(chan struct{})
	go func() {
		capture.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		media.mu.Lock()
		defer media.mu.Unlock()
		return media.startRecCalls == 1
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("capture never stopped")
	}
}

func TestLocateTrackPrefersUnmuted(t *testing.T) {
	muted := &fakeTrack{id: "a", muted: true}
	unmuted := &fakeTrack{id: "b", muted: false}
	media := &fakeMedia{tracks: []page.AudioTrack{muted, unmuted}}

	capture := NewCapture(media, &fakeSTT{}, fastCaptureConfig(), "sess-1", nil, nil)
	track, err := capture.locateTrack(context.Background())
	require.NoError(t, err)
	require.Equal(t, "b", track.ID())
}

func TestLocateTrackUsesMutedWhenNothingElse(t *testing.T) {
	muted := &fakeTrack{id: "a", muted: true}
	media := &fakeMedia{tracks: []page.AudioTrack{muted}}

	capture := NewCapture(media, &fakeSTT{}, fastCaptureConfig(), "sess-1", nil, nil)
	track, err := capture.locateTrack(context.Background())
	require.NoError(t, err)
	require.Equal(t, "a", track.ID())
}

func TestLocateTrackExhaustsRetries(t *testing.T) {
	media := &fakeMedia{}

	capture := NewCapture(media, &fakeSTT{}, fastCaptureConfig(), "sess-1", nil, nil)
	_, err := capture.locateTrack(context.Background())
	require.ErrorIs(t, err, errNoInboundTracks)

	media.mu.Lock()
	defer media.mu.Unlock()
	require.Equal(t, 2, media.trackCalls)
}

func TestCaptureBatchModeSubmitsTranscript(t *testing.T) {
	frames := make(chan []int16, 4)
	track := &fakeTrack{id: "a", frames: frames}
	media := &fakeMedia{tracks: []page.AudioTrack{track}}
	provider := &fakeSTT{batchText: "hello there", streamErr: errors.New("no streaming")}
	got := &collector{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	capture := NewCapture(media, provider, fastCaptureConfig(), "sess-1", got.add, nil)
	done := make(chan struct{})
	go func() {
		capture.Run(ctx)
		close(done)
	}()

	frames <- loudFrame(1000)

	require.Eventually(t, func() bool {
		texts := got.all()
		return len(texts) == 1 && texts[0] == "hello there"
	}, time.Second, time.Millisecond)

	cancel()
	<-done
}

func TestCaptureStreamModeSendsChunks(t *testing.T) {
	frames := make(chan []int16, 4)
	track := &fakeTrack{id: "a", frames: frames}
	media := &fakeMedia{tracks: []page.AudioTrack{track}}
	stream := &fakeStream{}
	provider := &fakeSTT{stream: stream}
	got := &collector{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	capture := NewCapture(media, provider, fastCaptureConfig(), "sess-1", got.add, nil)
	done := make(chan struct{})
	go func() {
		capture.Run(ctx)
		close(done)
	}()

	frames <- loudFrame(1000)

	require.Eventually(t, func() bool {
		return stream.chunkCount() >= 1
	}, time.Second, time.Millisecond)

	// Final transcripts come back over the stream callback.
	provider.transcriptCallback()("streamed reply", true)
	require.Equal(t, []string{"streamed reply"}, got.all())

	cancel()
	<-done
	require.GreaterOrEqual(t, stream.closeCount(), 1)
}
