package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate rejects configurations the session could not run under.
func Validate(cfg Config) error {
	var problems []string

	checkPositive := func(name string, ok bool) {
		if !ok {
			problems = append(problems, name+" must be positive")
		}
	}

	checkPositive("session.max_duration", cfg.Session.MaxDuration > 0)
	checkPositive("session.grace_delay", cfg.Session.GraceDelay > 0)
	checkPositive("admission.poll_interval", cfg.Admission.PollInterval > 0)
	checkPositive("admission.timeout", cfg.Admission.Timeout > 0)
	checkPositive("presence.poll_interval", cfg.Presence.PollInterval > 0)
	checkPositive("presence.max_read_failures", cfg.Presence.MaxReadFailures > 0)
	checkPositive("silence.sample_interval", cfg.Silence.SampleInterval > 0)
	checkPositive("silence.inactivity_limit", cfg.Silence.InactivityLimit > 0)
	checkPositive("capture.sample_rate", cfg.Capture.SampleRate > 0)
	checkPositive("capture.submit_interval", cfg.Capture.SubmitInterval > 0)
	checkPositive("recorder.chunk_interval", cfg.Recorder.ChunkInterval > 0)

	if cfg.Presence.MinParticipants < 2 {
		problems = append(problems, "presence.min_participants must be at least 2")
	}
	if cfg.Admission.Timeout < cfg.Admission.PollInterval {
		problems = append(problems, "admission.timeout must cover at least one poll interval")
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Responder.Provider)) {
	case "openai", "anthropic", "none":
	default:
		problems = append(problems, fmt.Sprintf("responder.provider %q is not one of openai, anthropic, none", cfg.Responder.Provider))
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.New("invalid config: " + strings.Join(problems, "; "))
}
