package doctor

import (
	"context"
	"testing"

	"github.com/rbright/usher/internal/config"
	"github.com/stretchr/testify/require"
)

func TestReportOKAndString(t *testing.T) {
	report := Report{Checks: []Check{
		{Name: "one", Pass: true, Message: "good"},
		{Name: "two", Pass: false, Message: "bad"},
	}}

	require.False(t, report.OK())
	text := report.String()
	require.Contains(t, text, "[OK] one: good")
	require.Contains(t, text, "[FAIL] two: bad")
}

func TestCheckVoiceEndpoint(t *testing.T) {
	check := checkVoiceEndpoint("tts", "https://api.cartesia.ai", "key")
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "https://api.cartesia.ai")

	check = checkVoiceEndpoint("tts", "", "key")
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "base_url is empty")

	check = checkVoiceEndpoint("stt", "https://api.cartesia.ai", "")
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "USHER_STT_API_KEY")
}

func TestCheckResponder(t *testing.T) {
	check := checkResponder(config.ResponderConfig{Provider: "none"})
	require.True(t, check.Pass)
	require.Equal(t, "disabled", check.Message)

	check = checkResponder(config.ResponderConfig{Provider: "openai"})
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "openai")

	check = checkResponder(config.ResponderConfig{Provider: "unknown"})
	require.False(t, check.Pass)
}

func TestCheckReporting(t *testing.T) {
	check := checkReporting(config.ReportConfig{})
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "disabled")

	check = checkReporting(config.ReportConfig{BaseURL: "https://api.example.com"})
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "https://api.example.com")
}

func TestRunWithDefaults(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	cfg := config.Loaded{Config: config.Defaults(), Path: "/tmp/config.toml"}
	cfg.Config.TTS.APIKey = "key"
	cfg.Config.STT.APIKey = "key"

	report := Run(context.Background(), cfg)
	require.True(t, report.OK(), report.String())
	require.Contains(t, report.String(), "[OK] config:")
	require.Contains(t, report.String(), "free at")
}
