package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rbright/usher/internal/config"
)

const cartesiaVersion = "2025-04-16"

// CartesiaProvider implements Provider against Cartesia's STT endpoints:
// multipart REST for batch transcription and a WebSocket for streaming.
type CartesiaProvider struct {
	baseURL    string
	streamURL  string
	apiKey     string
	model      string
	language   string
	httpClient *http.Client
}

// NewCartesia builds a provider from STT config.
func NewCartesia(cfg config.STTConfig) *CartesiaProvider {
	return &CartesiaProvider{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		streamURL:  cfg.StreamURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		language:   cfg.Language,
		httpClient: &http.Client{},
	}
}

func (c *CartesiaProvider) Name() string { return "cartesia" }

type batchResponse struct {
	Text string `json:"text"`
}

// TranscribeBatch posts one WAV buffer and returns the transcript text.
func (c *CartesiaProvider) TranscribeBatch(ctx context.Context, wav []byte) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := fw.Write(wav); err != nil {
		return "", fmt.Errorf("write audio data: %w", err)
	}
	if err := mw.WriteField("model", c.model); err != nil {
		return "", fmt.Errorf("write model field: %w", err)
	}
	if c.language != "" {
		if err := mw.WriteField("language", c.language); err != nil {
			return "", fmt.Errorf("write language field: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/stt", &buf)
	if err != nil {
		return "", fmt.Errorf("create transcribe request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Cartesia-Version", cartesiaVersion)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcribe request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("transcribe error %d: %s", resp.StatusCode, string(errBody))
	}

	var decoded batchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("parse transcribe response: %w", err)
	}
	return decoded.Text, nil
}

type streamMessage struct {
	Type    string `json:"type"`
	Text    string `json:"text"`
	IsFinal bool   `json:"is_final"`
	Error   string `json:"error"`
}

// cartesiaStream is one live WebSocket recognition session.
type cartesiaStream struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	closed  atomic.Bool
	done    chan struct{}
}

// OpenStream dials the streaming endpoint and starts the read loop. The id is
// sent as a correlation query parameter so provider-side logs line up with
// session logs.
func (c *CartesiaProvider) OpenStream(ctx context.Context, id string, onTranscript func(text string, final bool)) (Stream, error) {
	u, err := url.Parse(c.streamURL)
	if err != nil {
		return nil, fmt.Errorf("parse stream URL: %w", err)
	}

	q := u.Query()
	q.Set("model", c.model)
	if c.language != "" {
		q.Set("language", c.language)
	}
	q.Set("encoding", "pcm_s16le")
	q.Set("sample_rate", "16000")
	q.Set("request_id", id)
	u.RawQuery = q.Encode()

	headers := http.Header{}
	headers.Set("X-API-Key", c.apiKey)
	headers.Set("Cartesia-Version", cartesiaVersion)

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, resp, err := dialer.DialContext(ctx, u.String(), headers)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			if len(body) > 0 {
				return nil, fmt.Errorf("stream connect (status %d): %s", resp.StatusCode, string(body))
			}
		}
		return nil, fmt.Errorf("stream connect: %w", err)
	}

	s := &cartesiaStream{conn: conn, done: make(chan struct{})}
	go s.readLoop(onTranscript)
	return s, nil
}

func (s *cartesiaStream) readLoop(onTranscript func(text string, final bool)) {
	defer close(s.done)

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg streamMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case "transcript":
			onTranscript(msg.Text, msg.IsFinal)
		case "done", "error":
			return
		}
	}
}

// SendChunk forwards one PCM chunk over the socket.
func (s *cartesiaStream) SendChunk(data []byte) error {
	if s.closed.Load() {
		return fmt.Errorf("stream closed")
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.BinaryMessage, data)
}

// Close signals end of audio and tears the socket down exactly once.
func (s *cartesiaStream) Close() error {
	if s.closed.Swap(true) {
		return nil
	}

	s.writeMu.Lock()
	_ = s.conn.WriteMessage(websocket.TextMessage, []byte("done"))
	_ = s.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	s.writeMu.Unlock()

	err := s.conn.Close()

	select {
	case <-s.done:
	case <-time.After(2 * time.Second):
	}
	return err
}
