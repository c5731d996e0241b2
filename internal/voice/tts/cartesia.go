package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rbright/usher/internal/config"
)

const cartesiaVersion = "2025-04-16"

// CartesiaProvider synthesizes speech through Cartesia's bytes endpoint.
type CartesiaProvider struct {
	baseURL    string
	apiKey     string
	voice      string
	sampleRate int
	httpClient *http.Client
}

// NewCartesia builds a provider from TTS config.
func NewCartesia(cfg config.TTSConfig) *CartesiaProvider {
	sampleRate := cfg.SampleRate
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	return &CartesiaProvider{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		voice:      cfg.Voice,
		sampleRate: sampleRate,
		httpClient: &http.Client{},
	}
}

func (c *CartesiaProvider) Name() string { return "cartesia" }

type synthesizeRequest struct {
	ModelID      string       `json:"model_id"`
	Transcript   string       `json:"transcript"`
	Voice        voiceSpec    `json:"voice"`
	OutputFormat outputFormat `json:"output_format"`
}

type voiceSpec struct {
	Mode string `json:"mode"`
	ID   string `json:"id"`
}

type outputFormat struct {
	Container  string `json:"container"`
	Encoding   string `json:"encoding"`
	SampleRate int    `json:"sample_rate"`
}

// Synthesize requests WAV audio for text and returns the raw bytes.
func (c *CartesiaProvider) Synthesize(ctx context.Context, text string) ([]byte, error) {
	body, err := json.Marshal(synthesizeRequest{
		ModelID:    "sonic-3",
		Transcript: text,
		Voice:      voiceSpec{Mode: "id", ID: c.voice},
		OutputFormat: outputFormat{
			Container:  "wav",
			Encoding:   "pcm_s16le",
			SampleRate: c.sampleRate,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal synthesize request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tts/bytes", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create synthesize request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Cartesia-Version", cartesiaVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesize request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("synthesize error %d: %s", resp.StatusCode, string(errBody))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read synthesized audio: %w", err)
	}
	return audio, nil
}
