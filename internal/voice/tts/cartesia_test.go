package tts

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbright/usher/internal/config"
)

func TestSynthesizeSendsRequestAndReturnsAudio(t *testing.T) {
	wantAudio := []byte("RIFF-fake-wav")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tts/bytes", r.URL.Path)
		require.Equal(t, "Bearer sk-tts", r.Header.Get("Authorization"))
		require.NotEmpty(t, r.Header.Get("Cartesia-Version"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req synthesizeRequest
		require.NoError(t, json.Unmarshal(body, &req))
		require.Equal(t, "hello there", req.Transcript)
		require.Equal(t, "wav", req.OutputFormat.Container)
		require.Equal(t, 16000, req.OutputFormat.SampleRate)
		require.Equal(t, "voice-1", req.Voice.ID)

		_, _ = w.Write(wantAudio)
	}))
	defer server.Close()

	provider := NewCartesia(config.TTSConfig{
		BaseURL: server.URL,
		APIKey:  "sk-tts",
		Voice:   "voice-1",
	})

	audio, err := provider.Synthesize(context.Background(), "hello there")
	require.NoError(t, err)
	require.Equal(t, wantAudio, audio)
}

func TestSynthesizeSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte("quota exceeded"))
	}))
	defer server.Close()

	provider := NewCartesia(config.TTSConfig{BaseURL: server.URL, APIKey: "sk"})

	_, err := provider.Synthesize(context.Background(), "hi")
	require.Error(t, err)
	require.Contains(t, err.Error(), "402")
	require.Contains(t, err.Error(), "quota exceeded")
}
