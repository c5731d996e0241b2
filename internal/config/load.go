package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Loaded bundles a materialized config with its resolved source path.
type Loaded struct {
	Config   Config
	Path     string
	Warnings []Warning
}

// fileConfig mirrors the on-disk TOML layout. Durations are written as
// Go duration strings ("20s", "10m").
type fileConfig struct {
	Session struct {
		DisplayName string `toml:"display_name"`
		Greeting    string `toml:"greeting"`
		MaxDuration string `toml:"max_duration"`
		GraceDelay  string `toml:"grace_delay"`
	} `toml:"session"`
	Admission struct {
		PollInterval string `toml:"poll_interval"`
		Timeout      string `toml:"timeout"`
		StepAttempts int    `toml:"step_attempts"`
		StepWait     string `toml:"step_wait"`
	} `toml:"admission"`
	Presence struct {
		PollInterval    string `toml:"poll_interval"`
		MaxReadFailures int    `toml:"max_read_failures"`
		MinParticipants int    `toml:"min_participants"`
	} `toml:"presence"`
	Silence struct {
		SampleInterval  string  `toml:"sample_interval"`
		InactivityLimit string  `toml:"inactivity_limit"`
		EnergyThreshold float64 `toml:"energy_threshold"`
	} `toml:"silence"`
	Capture struct {
		SampleRate        int     `toml:"sample_rate"`
		SubmitInterval    string  `toml:"submit_interval"`
		MinBatch          string  `toml:"min_batch"`
		MinSubmissionGap  string  `toml:"min_submission_gap"`
		ActivityWindow    string  `toml:"activity_window"`
		ActivityThreshold float64 `toml:"activity_threshold"`
		TransportRetries  int     `toml:"transport_retries"`
		TransportWait     string  `toml:"transport_wait"`
	} `toml:"capture"`
	Recorder struct {
		ChunkInterval string `toml:"chunk_interval"`
		PrimaryCodec  string `toml:"primary_codec"`
		FallbackCodec string `toml:"fallback_codec"`
	} `toml:"recorder"`
	Responder struct {
		Provider     string  `toml:"provider"`
		Model        string  `toml:"model"`
		MaxTokens    int64   `toml:"max_tokens"`
		Temperature  float64 `toml:"temperature"`
		Cooldown     string  `toml:"cooldown"`
		FallbackLine string  `toml:"fallback_line"`
		SystemPrompt string  `toml:"system_prompt"`
	} `toml:"responder"`
	TTS struct {
		BaseURL    string `toml:"base_url"`
		APIKey     string `toml:"api_key"`
		Voice      string `toml:"voice"`
		SampleRate int    `toml:"sample_rate"`
	} `toml:"tts"`
	STT struct {
		BaseURL   string `toml:"base_url"`
		StreamURL string `toml:"stream_url"`
		APIKey    string `toml:"api_key"`
		Model     string `toml:"model"`
		Language  string `toml:"language"`
	} `toml:"stt"`
	Report struct {
		BaseURL     string `toml:"base_url"`
		ProviderTag string `toml:"provider_tag"`
	} `toml:"report"`
}

// Load resolves the config path, merges file values over defaults, applies env
// overrides, and validates the result.
func Load(explicitPath string) (Loaded, error) {
	loaded := Loaded{Config: Defaults()}

	path := strings.TrimSpace(explicitPath)
	if path == "" {
		path = defaultConfigPath()
	}
	loaded.Path = path

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			var fc fileConfig
			meta, err := toml.DecodeFile(path, &fc)
			if err != nil {
				return Loaded{}, fmt.Errorf("parse config %q: %w", path, err)
			}
			for _, key := range meta.Undecoded() {
				loaded.Warnings = append(loaded.Warnings, Warning{Message: fmt.Sprintf("unknown config key %q", key)})
			}
			if err := applyFile(&loaded.Config, fc); err != nil {
				return Loaded{}, fmt.Errorf("apply config %q: %w", path, err)
			}
		} else if explicitPath != "" {
			return Loaded{}, fmt.Errorf("config %q: %w", path, err)
		}
	}

	applyEnvOverrides(&loaded.Config)

	if err := Validate(loaded.Config); err != nil {
		return Loaded{}, err
	}
	return loaded, nil
}

func applyFile(cfg *Config, fc fileConfig) error {
	setString(&cfg.Session.DisplayName, fc.Session.DisplayName)
	setString(&cfg.Session.Greeting, fc.Session.Greeting)
	if err := setDuration(&cfg.Session.MaxDuration, "session.max_duration", fc.Session.MaxDuration); err != nil {
		return err
	}
	if err := setDuration(&cfg.Session.GraceDelay, "session.grace_delay", fc.Session.GraceDelay); err != nil {
		return err
	}

	if err := setDuration(&cfg.Admission.PollInterval, "admission.poll_interval", fc.Admission.PollInterval); err != nil {
		return err
	}
	if err := setDuration(&cfg.Admission.Timeout, "admission.timeout", fc.Admission.Timeout); err != nil {
		return err
	}
	setInt(&cfg.Admission.StepAttempts, fc.Admission.StepAttempts)
	if err := setDuration(&cfg.Admission.StepWait, "admission.step_wait", fc.Admission.StepWait); err != nil {
		return err
	}

	if err := setDuration(&cfg.Presence.PollInterval, "presence.poll_interval", fc.Presence.PollInterval); err != nil {
		return err
	}
	setInt(&cfg.Presence.MaxReadFailures, fc.Presence.MaxReadFailures)
	setInt(&cfg.Presence.MinParticipants, fc.Presence.MinParticipants)

	if err := setDuration(&cfg.Silence.SampleInterval, "silence.sample_interval", fc.Silence.SampleInterval); err != nil {
		return err
	}
	if err := setDuration(&cfg.Silence.InactivityLimit, "silence.inactivity_limit", fc.Silence.InactivityLimit); err != nil {
		return err
	}
	setFloat(&cfg.Silence.EnergyThreshold, fc.Silence.EnergyThreshold)

	setInt(&cfg.Capture.SampleRate, fc.Capture.SampleRate)
	if err := setDuration(&cfg.Capture.SubmitInterval, "capture.submit_interval", fc.Capture.SubmitInterval); err != nil {
		return err
	}
	if err := setDuration(&cfg.Capture.MinBatch, "capture.min_batch", fc.Capture.MinBatch); err != nil {
		return err
	}
	if err := setDuration(&cfg.Capture.MinSubmissionGap, "capture.min_submission_gap", fc.Capture.MinSubmissionGap); err != nil {
		return err
	}
	if err := setDuration(&cfg.Capture.ActivityWindow, "capture.activity_window", fc.Capture.ActivityWindow); err != nil {
		return err
	}
	setFloat(&cfg.Capture.ActivityThreshold, fc.Capture.ActivityThreshold)
	setInt(&cfg.Capture.TransportRetries, fc.Capture.TransportRetries)
	if err := setDuration(&cfg.Capture.TransportWait, "capture.transport_wait", fc.Capture.TransportWait); err != nil {
		return err
	}

	if err := setDuration(&cfg.Recorder.ChunkInterval, "recorder.chunk_interval", fc.Recorder.ChunkInterval); err != nil {
		return err
	}
	setString(&cfg.Recorder.PrimaryCodec, fc.Recorder.PrimaryCodec)
	setString(&cfg.Recorder.FallbackCodec, fc.Recorder.FallbackCodec)

	setString(&cfg.Responder.Provider, fc.Responder.Provider)
	setString(&cfg.Responder.Model, fc.Responder.Model)
	if fc.Responder.MaxTokens > 0 {
		cfg.Responder.MaxTokens = fc.Responder.MaxTokens
	}
	setFloat(&cfg.Responder.Temperature, fc.Responder.Temperature)
	if err := setDuration(&cfg.Responder.Cooldown, "responder.cooldown", fc.Responder.Cooldown); err != nil {
		return err
	}
	setString(&cfg.Responder.FallbackLine, fc.Responder.FallbackLine)
	setString(&cfg.Responder.SystemPrompt, fc.Responder.SystemPrompt)

	setString(&cfg.TTS.BaseURL, fc.TTS.BaseURL)
	setString(&cfg.TTS.APIKey, fc.TTS.APIKey)
	setString(&cfg.TTS.Voice, fc.TTS.Voice)
	setInt(&cfg.TTS.SampleRate, fc.TTS.SampleRate)

	setString(&cfg.STT.BaseURL, fc.STT.BaseURL)
	setString(&cfg.STT.StreamURL, fc.STT.StreamURL)
	setString(&cfg.STT.APIKey, fc.STT.APIKey)
	setString(&cfg.STT.Model, fc.STT.Model)
	setString(&cfg.STT.Language, fc.STT.Language)

	setString(&cfg.Report.BaseURL, fc.Report.BaseURL)
	setString(&cfg.Report.ProviderTag, fc.Report.ProviderTag)

	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("USHER_TTS_API_KEY"); v != "" {
		cfg.TTS.APIKey = v
	}
	if v := os.Getenv("USHER_STT_API_KEY"); v != "" {
		cfg.STT.APIKey = v
	}
	if v := os.Getenv("USHER_REPORT_URL"); v != "" {
		cfg.Report.BaseURL = v
	}
	if v := os.Getenv("USHER_RESPONDER_PROVIDER"); v != "" {
		cfg.Responder.Provider = v
	}
	if v := os.Getenv("USHER_RESPONDER_MODEL"); v != "" {
		cfg.Responder.Model = v
	}
}

func defaultConfigPath() string {
	var configDir string
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		configDir = filepath.Join(xdg, "usher")
	} else if home, err := os.UserHomeDir(); err == nil {
		configDir = filepath.Join(home, ".config", "usher")
	} else {
		return ""
	}
	return filepath.Join(configDir, "config.toml")
}

func setString(dst *string, value string) {
	if strings.TrimSpace(value) != "" {
		*dst = value
	}
}

func setInt(dst *int, value int) {
	if value > 0 {
		*dst = value
	}
}

func setFloat(dst *float64, value float64) {
	if value > 0 {
		*dst = value
	}
}

func setDuration(dst *time.Duration, key string, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}
