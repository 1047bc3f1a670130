package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/jrsteele09/go-auth-client/internal/errors"
)

const configFileVar = "CONFIG_FILE"

type Config interface {
	EnvConfig
	SessionConfig
	StorageConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetMetricsAddr() string
}

type SessionConfig interface {
	GetEndpoint() string
	GetRenewInterval() time.Duration
	GetDecoder() string
	GetIssuer() string
	GetUsername() string
	GetPassword() string
}

type StorageConfig interface {
	GetStorageBackend() string
	GetStoragePath() string
	GetStoragePassphrase() string
}

// FileValues mirrors the optional TOML config file. Unset fields fall through
// to the built-in defaults; environment variables override them.
type FileValues struct {
	AppName     *string `toml:"app_name"`
	Env         *string `toml:"env"`
	LogLevel    *string `toml:"log_level"`
	MetricsAddr *string `toml:"metrics_addr"`

	Session struct {
		Endpoint      *string `toml:"endpoint"`
		RenewInterval *string `toml:"renew_interval"`
		Decoder       *string `toml:"decoder"`
		Issuer        *string `toml:"issuer"`
		Username      *string `toml:"username"`
		Password      *string `toml:"password"`
	} `toml:"session"`

	Storage struct {
		Backend    *string `toml:"backend"`
		Path       *string `toml:"path"`
		Passphrase *string `toml:"passphrase"`
	} `toml:"storage"`
}

type mainConfig struct {
	EnvVars
	Session
	Storage
}

// New builds the config from the environment and, when CONFIG_FILE is set, the
// TOML file it names.
func New() (Config, error) {
	path := os.Getenv(configFileVar)
	if path == "" {
		return FromValues(&FileValues{}), nil
	}
	values, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return FromValues(values), nil
}

// LoadFile decodes a TOML config file.
func LoadFile(path string) (*FileValues, error) {
	var values FileValues
	md, err := toml.DecodeFile(path, &values)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "[config.LoadFile] %s: %v", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "[config.LoadFile] %s: unknown keys %v", path, undecoded)
	}
	return &values, nil
}

func FromValues(values *FileValues) Config {
	if values == nil {
		values = &FileValues{}
	}
	return mainConfig{
		EnvVars: EnvVars{values: values},
		Session: Session{values: values},
		Storage: Storage{values: values},
	}
}
