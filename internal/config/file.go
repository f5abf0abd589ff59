package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// FileSettings is the YAML shape of an optional settings file.
// Environment variables take precedence over file values.
type FileSettings struct {
	BaseURL         string `yaml:"base_url"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
	CredentialsFile string `yaml:"credentials_file"`
	CredentialsKey  string `yaml:"credentials_key"`
	LogLevel        string `yaml:"log_level"`
	AppName         string `yaml:"app_name"`
}

type fileConfig struct {
	EnvVars
	settings FileSettings
}

var _ Config = fileConfig{}

// NewFromFile loads configuration from a YAML file, layered under any
// environment variable overrides.
func NewFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "[config.NewFromFile] read settings file")
	}
	var settings FileSettings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, errors.Wrap(err, "[config.NewFromFile] parse settings file")
	}
	return fileConfig{settings: settings}, nil
}

func (f fileConfig) GetBaseURL() string {
	if _, ok := os.LookupEnv(baseURLEnvVar); ok {
		return f.EnvVars.GetBaseURL()
	}
	if f.settings.BaseURL != "" {
		return f.settings.BaseURL
	}
	return f.EnvVars.GetBaseURL()
}

func (f fileConfig) GetRequestTimeout() time.Duration {
	if _, ok := os.LookupEnv(timeoutEnvVar); ok {
		return f.EnvVars.GetRequestTimeout()
	}
	if f.settings.TimeoutSeconds > 0 {
		return time.Duration(f.settings.TimeoutSeconds) * time.Second
	}
	return f.EnvVars.GetRequestTimeout()
}

func (f fileConfig) GetAppName() string {
	if _, ok := os.LookupEnv(appNameEnvVar); ok {
		return f.EnvVars.GetAppName()
	}
	if f.settings.AppName != "" {
		return f.settings.AppName
	}
	return f.EnvVars.GetAppName()
}

func (f fileConfig) GetCredentialsFile() string {
	if _, ok := os.LookupEnv(credsFileEnvVar); ok {
		return f.EnvVars.GetCredentialsFile()
	}
	if f.settings.CredentialsFile != "" {
		return f.settings.CredentialsFile
	}
	return f.EnvVars.GetCredentialsFile()
}

func (f fileConfig) GetCredentialsKey() string {
	if _, ok := os.LookupEnv(credsKeyEnvVar); ok {
		return f.EnvVars.GetCredentialsKey()
	}
	if f.settings.CredentialsKey != "" {
		return f.settings.CredentialsKey
	}
	return f.EnvVars.GetCredentialsKey()
}

func (f fileConfig) GetLogLevel() string {
	if _, ok := os.LookupEnv(logLevelEnvVar); ok {
		return f.EnvVars.GetLogLevel()
	}
	if f.settings.LogLevel != "" {
		return f.settings.LogLevel
	}
	return f.EnvVars.GetLogLevel()
}
