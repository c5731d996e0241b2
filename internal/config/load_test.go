package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	loaded, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 20*time.Second, loaded.Config.Admission.PollInterval)
	require.Equal(t, 5*time.Second, loaded.Config.Presence.PollInterval)
	require.Equal(t, 100*time.Millisecond, loaded.Config.Silence.SampleInterval)
	require.Equal(t, 2*time.Second, loaded.Config.Recorder.ChunkInterval)
	require.Equal(t, 10, loaded.Config.Presence.MaxReadFailures)
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := writeConfig(t, `
[session]
display_name = "Scribe"
max_duration = "45m"

[silence]
inactivity_limit = "3m"

[responder]
provider = "anthropic"
max_tokens = 200
`)

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "Scribe", loaded.Config.Session.DisplayName)
	require.Equal(t, 45*time.Minute, loaded.Config.Session.MaxDuration)
	require.Equal(t, 3*time.Minute, loaded.Config.Silence.InactivityLimit)
	require.Equal(t, "anthropic", loaded.Config.Responder.Provider)
	require.Equal(t, int64(200), loaded.Config.Responder.MaxTokens)
	// Untouched keys keep defaults.
	require.Equal(t, 20*time.Second, loaded.Config.Admission.PollInterval)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := writeConfig(t, `
[admission]
poll_interval = "soon"
`)

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "admission.poll_interval")
}

func TestLoadWarnsOnUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
[session]
display_name = "Scribe"
shoe_size = 42
`)

	loaded, err := Load(path)
	require.NoError(t, err)
	require.NotEmpty(t, loaded.Warnings)
	require.Contains(t, loaded.Warnings[0].Message, "shoe_size")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("USHER_STT_API_KEY", "sk-stt")
	t.Setenv("USHER_REPORT_URL", "https://report.example.com")

	loaded, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "sk-stt", loaded.Config.STT.APIKey)
	require.Equal(t, "https://report.example.com", loaded.Config.Report.BaseURL)
}
