package recorder

import (
	"context"
	"encoding/base64"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rbright/usher/internal/config"
	"github.com/rbright/usher/internal/page"
)

type fakeRecordingStream struct {
	mu     sync.Mutex
	chunks chan []byte
	stops  int
	err    error
}

func newFakeRecordingStream() *fakeRecordingStream {
	return &fakeRecordingStream{chunks: make(chan []byte, 16)}
}

func (f *fakeRecordingStream) Chunks() <-chan []byte { return f.chunks }

func (f *fakeRecordingStream) Stop(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	if f.stops == 1 {
		close(f.chunks)
	}
	return nil
}

func (f *fakeRecordingStream) Err() error { return f.err }

func (f *fakeRecordingStream) stopCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stops
}

type fakeRecMedia struct {
	supported map[string]bool
	stream    *fakeRecordingStream
	started   []page.RecordingOptions
}

func (f *fakeRecMedia) CreateVoiceSource(context.Context, []byte) (page.VoiceSource, error) {
	return nil, nil
}
func (f *fakeRecMedia) InstallMicSource(context.Context, page.VoiceSource) error { return nil }
func (f *fakeRecMedia) SwapOutboundAudio(context.Context, page.VoiceSource) (bool, error) {
	return false, nil
}
func (f *fakeRecMedia) ToggleMicrophone(context.Context) error { return nil }
func (f *fakeRecMedia) HasOutboundAudio(context.Context) (bool, error) {
	return false, nil
}
func (f *fakeRecMedia) InboundAudioTracks(context.Context) ([]page.AudioTrack, error) {
	return nil, nil
}
func (f *fakeRecMedia) AmbientEnergy(context.Context) (float64, error) { return 0, nil }

func (f *fakeRecMedia) SupportsCodec(_ context.Context, mimeType string) (bool, error) {
	return f.supported[mimeType], nil
}

func (f *fakeRecMedia) StartRecording(_ context.Context, opts page.RecordingOptions) (page.RecordingStream, error) {
	f.started = append(f.started, opts)
	return f.stream, nil
}

func (f *fakeRecMedia) StartSpeechRecognition(context.Context, func(string, bool), func()) (page.SpeechRecognition, error) {
	return nil, nil
}

type memorySink struct {
	mu     sync.Mutex
	chunks [][]byte
}

func (m *memorySink) SaveChunk(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = append(m.chunks, append([]byte(nil), data...))
	return nil
}

func (m *memorySink) all() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.chunks...)
}

func recorderConfig() config.RecorderConfig {
	return config.RecorderConfig{
		ChunkInterval: 2 * time.Second,
		PrimaryCodec:  "video/webm;codecs=vp9,opus",
		FallbackCodec: "video/webm",
	}
}

func TestRecordEncodesAndForwardsChunks(t *testing.T) {
	stream := newFakeRecordingStream()
	media := &fakeRecMedia{
		supported: map[string]bool{"video/webm;codecs=vp9,opus": true},
		stream:    stream,
	}
	sink := &memorySink{}
	rec := New(media, sink, recorderConfig(), nil)

	done := make(chan error, 1)
	go func() { done <- rec.Record(context.Background(), time.Minute) }()

	stream.chunks <- []byte("first")
	stream.chunks <- []byte{}
	stream.chunks <- []byte("second")

	require.Eventually(t, func() bool { return len(sink.all()) == 2 }, time.Second, time.Millisecond)

	rec.Stop()
	require.NoError(t, <-done)

	chunks := sink.all()
	require.Equal(t, []byte(base64.StdEncoding.EncodeToString([]byte("first"))), chunks[0])
	require.Equal(t, []byte(base64.StdEncoding.EncodeToString([]byte("second"))), chunks[1])
	require.Equal(t, "video/webm;codecs=vp9,opus", media.started[0].MimeType)
}

func TestRecordFallsBackWhenPrimaryCodecUnsupported(t *testing.T) {
	stream := newFakeRecordingStream()
	media := &fakeRecMedia{supported: map[string]bool{}, stream: stream}
	rec := New(media, &memorySink{}, recorderConfig(), nil)

	done := make(chan error, 1)
	go func() { done <- rec.Record(context.Background(), time.Minute) }()

	require.Eventually(t, func() bool { return len(media.started) == 1 }, time.Second, time.Millisecond)
	require.Equal(t, "video/webm", media.started[0].MimeType)

	rec.Stop()
	require.NoError(t, <-done)
}

func TestConcurrentStopsExecuteCleanupOnce(t *testing.T) {
	stream := newFakeRecordingStream()
	media := &fakeRecMedia{
		supported: map[string]bool{"video/webm;codecs=vp9,opus": true},
		stream:    stream,
	}
	rec := New(media, &memorySink{}, recorderConfig(), nil)

	done := make(chan error, 1)
	go func() { done <- rec.Record(context.Background(), time.Minute) }()

	require.Eventually(t, func() bool { return len(media.started) == 1 }, time.Second, time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec.Stop()
		}()
	}
	wg.Wait()

	require.NoError(t, <-done)
	require.Equal(t, 1, stream.stopCount())
}

func TestRecordStopsAtDurationCap(t *testing.T) {
	stream := newFakeRecordingStream()
	media := &fakeRecMedia{
		supported: map[string]bool{"video/webm;codecs=vp9,opus": true},
		stream:    stream,
	}
	rec := New(media, &memorySink{}, recorderConfig(), nil)

	err := rec.Record(context.Background(), 10*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, 1, stream.stopCount())
}

func TestRecordDrainsRemainingChunksAfterStop(t *testing.T) {
	stream := newFakeRecordingStream()
	media := &fakeRecMedia{
		supported: map[string]bool{"video/webm;codecs=vp9,opus": true},
		stream:    stream,
	}
	sink := &memorySink{}
	rec := New(media, sink, recorderConfig(), nil)

	// Chunk queued before the run even begins draining.
	stream.chunks <- []byte("tail")
	rec.Stop()

	require.NoError(t, rec.Record(context.Background(), time.Minute))
	require.Len(t, sink.all(), 1)
}
