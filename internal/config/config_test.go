package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/smartsales/salesctl/internal/config"
)

func TestEnvVarsDefaults(t *testing.T) {
	for _, envVar := range []string{
		"SMARTSALES_BASE_URL", "SMARTSALES_TIMEOUT_SECONDS", "SMARTSALES_CREDENTIALS_FILE",
		"SMARTSALES_CREDENTIALS_KEY", "SMARTSALES_LOG_LEVEL", "SMARTSALES_APP_NAME",
	} {
		t.Setenv(envVar, "")
	}

	cfg := config.New()
	require.Equal(t, "http://localhost:8000", cfg.GetBaseURL())
	require.Equal(t, 30*time.Second, cfg.GetRequestTimeout())
	require.Equal(t, "Smart Sales", cfg.GetAppName())
	require.Equal(t, "info", cfg.GetLogLevel())
	require.Empty(t, cfg.GetCredentialsKey())
	require.Contains(t, cfg.GetCredentialsFile(), "credentials.json")
}

func TestEnvVarsOverrides(t *testing.T) {
	t.Setenv("SMARTSALES_BASE_URL", "https://sales.example.com")
	t.Setenv("SMARTSALES_TIMEOUT_SECONDS", "5")
	t.Setenv("SMARTSALES_LOG_LEVEL", "debug")
	t.Setenv("SMARTSALES_CREDENTIALS_KEY", "hunter2")

	cfg := config.New()
	require.Equal(t, "https://sales.example.com", cfg.GetBaseURL())
	require.Equal(t, 5*time.Second, cfg.GetRequestTimeout())
	require.Equal(t, "debug", cfg.GetLogLevel())
	require.Equal(t, "hunter2", cfg.GetCredentialsKey())
}

func TestEnvVarsInvalidTimeoutFallsBack(t *testing.T) {
	t.Setenv("SMARTSALES_TIMEOUT_SECONDS", "not a number")
	require.Equal(t, 30*time.Second, config.New().GetRequestTimeout())

	t.Setenv("SMARTSALES_TIMEOUT_SECONDS", "-1")
	require.Equal(t, 30*time.Second, config.New().GetRequestTimeout())
}

func TestNewFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	settings := `
base_url: https://sales.example.com
timeout_seconds: 10
log_level: warn
credentials_file: /tmp/creds.json
`
	require.NoError(t, os.WriteFile(path, []byte(settings), 0o600))

	cfg, err := config.NewFromFile(path)
	require.NoError(t, err)
	require.Equal(t, "https://sales.example.com", cfg.GetBaseURL())
	require.Equal(t, 10*time.Second, cfg.GetRequestTimeout())
	require.Equal(t, "warn", cfg.GetLogLevel())
	require.Equal(t, "/tmp/creds.json", cfg.GetCredentialsFile())

	// Fields the file omits fall back to defaults.
	require.Equal(t, "Smart Sales", cfg.GetAppName())
}

func TestEnvVarsTakePrecedenceOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_url: https://file.example.com\n"), 0o600))

	t.Setenv("SMARTSALES_BASE_URL", "https://env.example.com")

	cfg, err := config.NewFromFile(path)
	require.NoError(t, err)
	require.Equal(t, "https://env.example.com", cfg.GetBaseURL())
}

func TestNewFromFileMissing(t *testing.T) {
	_, err := config.NewFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestNewFromFileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_url: [unclosed"), 0o600))

	_, err := config.NewFromFile(path)
	require.Error(t, err)
}
