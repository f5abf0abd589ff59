package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	baseURLEnvVar   = "SMARTSALES_BASE_URL"
	timeoutEnvVar   = "SMARTSALES_TIMEOUT_SECONDS"
	credsFileEnvVar = "SMARTSALES_CREDENTIALS_FILE"
	credsKeyEnvVar  = "SMARTSALES_CREDENTIALS_KEY"
	logLevelEnvVar  = "SMARTSALES_LOG_LEVEL"
	appNameEnvVar   = "SMARTSALES_APP_NAME"
)

const defaultTimeout = 30 * time.Second

type EnvVars struct{}

var _ Config = EnvVars{}

func (EnvVars) GetBaseURL() string {
	return GetEnv(baseURLEnvVar, "http://localhost:8000")
}

func (EnvVars) GetRequestTimeout() time.Duration {
	seconds, err := strconv.Atoi(GetEnv(timeoutEnvVar, ""))
	if err != nil || seconds <= 0 {
		return defaultTimeout
	}
	return time.Duration(seconds) * time.Second
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameEnvVar, "Smart Sales")
}

func (EnvVars) GetCredentialsFile() string {
	if v := os.Getenv(credsFileEnvVar); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "credentials.json"
	}
	return filepath.Join(home, ".smartsales", "credentials.json")
}

func (EnvVars) GetCredentialsKey() string {
	return GetEnv(credsKeyEnvVar, "")
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelEnvVar, "info")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
