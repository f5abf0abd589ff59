package config

import "time"

type Config interface {
	APIConfig
	StorageConfig
	LogConfig
}

type APIConfig interface {
	GetBaseURL() string
	GetRequestTimeout() time.Duration
	GetAppName() string
}

type StorageConfig interface {
	GetCredentialsFile() string
	GetCredentialsKey() string
}

type LogConfig interface {
	GetLogLevel() string
}

type mainConfig struct {
	EnvVars
}

func New() Config {
	return mainConfig{}
}
