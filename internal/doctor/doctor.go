// Package doctor runs preflight diagnostics for config, the control socket,
// and the configured voice and response providers.
package doctor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rbright/usher/internal/config"
	"github.com/rbright/usher/internal/ipc"
	"github.com/rbright/usher/internal/respond"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes preflight checks for a loaded config.
func Run(ctx context.Context, cfg config.Loaded) Report {
	checks := []Check{}

	message := fmt.Sprintf("loaded %q", cfg.Path)
	if len(cfg.Warnings) > 0 {
		message = fmt.Sprintf("loaded %q (%d warnings)", cfg.Path, len(cfg.Warnings))
	}
	checks = append(checks, Check{Name: "config", Pass: true, Message: message})

	checks = append(checks, checkSocket(ctx))
	checks = append(checks, checkVoiceEndpoint("tts", cfg.Config.TTS.BaseURL, cfg.Config.TTS.APIKey))
	checks = append(checks, checkVoiceEndpoint("stt", cfg.Config.STT.BaseURL, cfg.Config.STT.APIKey))
	checks = append(checks, checkResponder(cfg.Config.Responder))
	checks = append(checks, checkReporting(cfg.Config.Report))

	return Report{Checks: checks}
}

// checkSocket inspects the control socket: a live owner and a free path are
// both healthy states.
func checkSocket(ctx context.Context) Check {
	path, err := ipc.RuntimeSocketPath()
	if err != nil {
		return Check{Name: "control.socket", Pass: false, Message: err.Error()}
	}

	alive, err := ipc.Probe(ctx, path, 500*time.Millisecond)
	if err != nil {
		return Check{Name: "control.socket", Pass: false, Message: fmt.Sprintf("probe %s: %v", path, err)}
	}
	if alive {
		return Check{Name: "control.socket", Pass: true, Message: fmt.Sprintf("session running at %s", path)}
	}
	return Check{Name: "control.socket", Pass: true, Message: fmt.Sprintf("free at %s", path)}
}

// checkVoiceEndpoint validates that a voice provider endpoint is usable.
func checkVoiceEndpoint(name, baseURL, apiKey string) Check {
	if strings.TrimSpace(baseURL) == "" {
		return Check{Name: name, Pass: false, Message: "base_url is empty"}
	}
	if strings.TrimSpace(apiKey) == "" {
		return Check{
			Name:    name,
			Pass:    false,
			Message: fmt.Sprintf("api key not set (set USHER_%s_API_KEY or [%s] api_key)", strings.ToUpper(name), name),
		}
	}
	return Check{Name: name, Pass: true, Message: fmt.Sprintf("configured for %s", baseURL)}
}

// checkResponder validates the conversational-response provider selection.
func checkResponder(cfg config.ResponderConfig) Check {
	provider, err := respond.FromConfig(cfg)
	if err != nil {
		return Check{Name: "responder", Pass: false, Message: err.Error()}
	}
	if provider == nil {
		return Check{Name: "responder", Pass: true, Message: "disabled"}
	}
	return Check{Name: "responder", Pass: true, Message: fmt.Sprintf("using %s", provider.Name())}
}

// checkReporting reports whether external status reporting is active.
func checkReporting(cfg config.ReportConfig) Check {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return Check{Name: "reporting", Pass: true, Message: "status reporting disabled"}
	}
	return Check{Name: "reporting", Pass: true, Message: fmt.Sprintf("reporting to %s", cfg.BaseURL)}
}
