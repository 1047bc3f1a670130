package config

import (
	"os"

	"github.com/jrsteele09/go-auth-client/internal/utils"
)

const (
	appNameVar     = "APP_NAME"
	envVar         = "ENV"
	logLevelVar    = "LOG_LEVEL"
	metricsAddrVar = "METRICS_ADDR"
)

type EnvVars struct {
	values *FileValues
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetAppName() string {
	return lookup(appNameVar, e.values.AppName, "Go Auth Client")
}

func (e EnvVars) GetEnv() string {
	return lookup(envVar, e.values.Env, "DEV")
}

func (e EnvVars) GetLogLevel() string {
	return lookup(logLevelVar, e.values.LogLevel, "info")
}

// GetMetricsAddr returns the listen address for /metrics, or "" to disable it.
func (e EnvVars) GetMetricsAddr() string {
	return lookup(metricsAddrVar, e.values.MetricsAddr, "")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// lookup resolves a setting: environment variable, then file value, then default.
func lookup(envVar string, fileValue *string, defaultValue string) string {
	return GetEnv(envVar, utils.OrDefault(utils.Value(fileValue), defaultValue))
}
