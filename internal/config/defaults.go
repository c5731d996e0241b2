package config

import "time"

// Defaults returns the baseline configuration before file and env overrides.
func Defaults() Config {
	return Config{
		Session: SessionConfig{
			DisplayName: "Usher Notetaker",
			Greeting:    "Hello, I'm here to take notes for this meeting.",
			MaxDuration: 2 * time.Hour,
			GraceDelay:  60 * time.Second,
		},
		Admission: AdmissionConfig{
			PollInterval: 20 * time.Second,
			Timeout:      10 * time.Minute,
			StepAttempts: 3,
			StepWait:     2 * time.Second,
		},
		Presence: PresenceConfig{
			PollInterval:    5 * time.Second,
			MaxReadFailures: 10,
			MinParticipants: 2,
		},
		Silence: SilenceConfig{
			SampleInterval:  100 * time.Millisecond,
			InactivityLimit: 10 * time.Minute,
			EnergyThreshold: 0.01,
		},
		Capture: CaptureConfig{
			SampleRate:        16000,
			SubmitInterval:    2 * time.Second,
			MinBatch:          2 * time.Second,
			MinSubmissionGap:  5 * time.Second,
			ActivityWindow:    5 * time.Second,
			ActivityThreshold: 0.01,
			TransportRetries:  10,
			TransportWait:     5 * time.Second,
		},
		Recorder: RecorderConfig{
			ChunkInterval: 2 * time.Second,
			PrimaryCodec:  "video/webm;codecs=vp9,opus",
			FallbackCodec: "video/webm",
		},
		Responder: ResponderConfig{
			Provider:     "openai",
			Model:        "",
			MaxTokens:    150,
			Temperature:  0.7,
			Cooldown:     10 * time.Second,
			FallbackLine: "Sorry, I didn't catch that.",
			SystemPrompt: "You are a polite meeting attendant. Answer briefly in one or two spoken sentences.",
		},
		TTS: TTSConfig{
			BaseURL:    "https://api.cartesia.ai",
			Voice:      "default",
			SampleRate: 16000,
		},
		STT: STTConfig{
			BaseURL:   "https://api.cartesia.ai",
			StreamURL: "wss://api.cartesia.ai/stt/websocket",
			Model:     "ink-whisper",
			Language:  "en",
		},
		Report: ReportConfig{
			ProviderTag: "usher",
		},
	}
}
