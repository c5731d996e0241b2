// Package config resolves, parses, validates, and defaults usher configuration.
package config

import "time"

// Config is the fully materialized runtime configuration used by usher.
type Config struct {
	Session   SessionConfig
	Admission AdmissionConfig
	Presence  PresenceConfig
	Silence   SilenceConfig
	Capture   CaptureConfig
	Recorder  RecorderConfig
	Responder ResponderConfig
	TTS       TTSConfig
	STT       STTConfig
	Report    ReportConfig
}

// SessionConfig controls top-level session behavior.
type SessionConfig struct {
	DisplayName string
	Greeting    string
	MaxDuration time.Duration
	GraceDelay  time.Duration
}

// AdmissionConfig controls lobby polling while waiting to be let in.
type AdmissionConfig struct {
	PollInterval time.Duration
	Timeout      time.Duration
	StepAttempts int
	StepWait     time.Duration
}

// PresenceConfig controls the alone-in-meeting monitor.
type PresenceConfig struct {
	PollInterval    time.Duration
	MaxReadFailures int
	MinParticipants int
}

// SilenceConfig controls the prolonged-silence monitor.
type SilenceConfig struct {
	SampleInterval  time.Duration
	InactivityLimit time.Duration
	EnergyThreshold float64
}

// CaptureConfig controls remote-audio batching and transcription submission.
type CaptureConfig struct {
	SampleRate        int
	SubmitInterval    time.Duration
	MinBatch          time.Duration
	MinSubmissionGap  time.Duration
	ActivityWindow    time.Duration
	ActivityThreshold float64
	TransportRetries  int
	TransportWait     time.Duration
}

// RecorderConfig controls chunked display+audio recording.
type RecorderConfig struct {
	ChunkInterval time.Duration
	PrimaryCodec  string
	FallbackCodec string
}

// ResponderConfig controls the conversational-response provider.
type ResponderConfig struct {
	Provider     string // "openai" or "anthropic"
	Model        string
	MaxTokens    int64
	Temperature  float64
	Cooldown     time.Duration
	FallbackLine string
	SystemPrompt string
}

// TTSConfig controls the text-to-speech provider endpoint.
type TTSConfig struct {
	BaseURL    string
	APIKey     string
	Voice      string
	SampleRate int
}

// STTConfig controls the speech-to-text provider endpoint.
type STTConfig struct {
	BaseURL   string
	StreamURL string
	APIKey    string
	Model     string
	Language  string
}

// ReportConfig controls the external status-reporting endpoint.
type ReportConfig struct {
	BaseURL     string
	ProviderTag string
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Message string
}
