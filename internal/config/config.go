// Package config loads client configuration from the environment and a .env settings file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/dolibarr-client/internal/constants"
	"github.com/fivetwenty-io/dolibarr-client/pkg/doli"
)

// Configuration keys and the variable names they are read from.
const (
	KeyBaseURL         = "base_url"
	KeyAPIKey          = "api_key"
	KeyDebug           = "debug"
	KeyUserAgent       = "user_agent"
	KeyTimeout         = "timeout"
	KeyRetryMax        = "retry_max"
	KeyRetryWaitMin    = "retry_wait_min"
	KeyRetryWaitMax    = "retry_wait_max"
	KeyCredentialStore = "credential_store"
	KeyNATSURL         = "nats_url"
	KeyNATSBucket      = "nats_bucket"
)

var envNames = map[string]string{
	KeyBaseURL:         constants.EnvBaseURL,
	KeyAPIKey:          constants.EnvAPIKey,
	KeyDebug:           constants.EnvPrefix + "_DEBUG",
	KeyUserAgent:       constants.EnvPrefix + "_USER_AGENT",
	KeyTimeout:         constants.EnvPrefix + "_TIMEOUT",
	KeyRetryMax:        constants.EnvPrefix + "_RETRY_MAX",
	KeyRetryWaitMin:    constants.EnvPrefix + "_RETRY_WAIT_MIN",
	KeyRetryWaitMax:    constants.EnvPrefix + "_RETRY_WAIT_MAX",
	KeyCredentialStore: constants.EnvPrefix + "_CREDENTIAL_STORE",
	KeyNATSURL:         constants.EnvPrefix + "_NATS_URL",
	KeyNATSBucket:      constants.EnvPrefix + "_NATS_BUCKET",
}

// EnvName returns the environment variable a configuration key is read from.
func EnvName(key string) string {
	return envNames[key]
}

type options struct {
	envFile   string
	searchDir string
	overrides map[string]string
}

// Option configures Load.
type Option func(*options)

// WithEnvFile uses path as the settings file instead of searching for one.
func WithEnvFile(path string) Option {
	return func(o *options) {
		o.envFile = path
	}
}

// WithSearchDir starts the .env search at dir instead of the working directory.
func WithSearchDir(dir string) Option {
	return func(o *options) {
		o.searchDir = dir
	}
}

// WithOverride sets key after the environment and settings file are read.
// Empty values are ignored.
func WithOverride(key, value string) Option {
	return func(o *options) {
		if value == "" {
			return
		}

		if o.overrides == nil {
			o.overrides = map[string]string{}
		}

		o.overrides[key] = value
	}
}

// Load reads the configuration. Values from the settings file override the
// process environment. It fails with doli.ErrConfiguration when BASE_URL is missing.
func Load(opts ...Option) (*doli.Config, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if o.searchDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("%w: resolving working directory: %w", doli.ErrConfiguration, err)
		}

		o.searchDir = wd
	}

	v := viper.New()
	setDefaults(v)

	for key, env := range envNames {
		err := v.BindEnv(key, env)
		if err != nil {
			return nil, fmt.Errorf("%w: binding %s: %w", doli.ErrConfiguration, env, err)
		}
	}

	envFile := o.envFile
	if envFile == "" {
		found, ok := FindEnvFile(o.searchDir)
		if ok {
			envFile = found
		} else {
			envFile = filepath.Join(o.searchDir, constants.DefaultEnvFile)
		}
	}

	err := applyEnvFile(v, envFile)
	if err != nil {
		return nil, err
	}

	for key, value := range o.overrides {
		v.Set(key, value)
	}

	cfg := &doli.Config{
		BaseURL:         v.GetString(KeyBaseURL),
		APIKey:          v.GetString(KeyAPIKey),
		EnvFile:         envFile,
		CredentialStore: v.GetString(KeyCredentialStore),
		NATSURL:         v.GetString(KeyNATSURL),
		NATSBucket:      v.GetString(KeyNATSBucket),
		Timeout:         v.GetDuration(KeyTimeout),
		RetryMax:        v.GetInt(KeyRetryMax),
		RetryWaitMin:    v.GetDuration(KeyRetryWaitMin),
		RetryWaitMax:    v.GetDuration(KeyRetryWaitMax),
		Debug:           v.GetBool(KeyDebug),
		UserAgent:       v.GetString(KeyUserAgent),
	}

	err = Validate(cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the invariants Load guarantees.
func Validate(cfg *doli.Config) error {
	if cfg.BaseURL == "" {
		return doli.ErrBaseURLRequired
	}

	switch cfg.CredentialStore {
	case "", constants.CredentialStoreDotenv, constants.CredentialStoreNATS:
	default:
		return fmt.Errorf("%w: %w: %q", doli.ErrConfiguration, constants.ErrUnknownCredStore, cfg.CredentialStore)
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyUserAgent, constants.DefaultUserAgent)
	v.SetDefault(KeyRetryWaitMin, constants.DefaultRetryWaitMin)
	v.SetDefault(KeyRetryWaitMax, constants.DefaultRetryWaitMax)
	v.SetDefault(KeyCredentialStore, constants.CredentialStoreDotenv)
	v.SetDefault(KeyNATSBucket, constants.DefaultNATSBucket)
}

// applyEnvFile copies known entries of the settings file over the environment.
func applyEnvFile(v *viper.Viper, path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("%w: %w", doli.ErrConfiguration, err)
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s: %w", doli.ErrConfiguration, path, constants.ErrNotRegularFile)
	}

	env, err := godotenv.Read(path)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %w", doli.ErrConfiguration, path, err)
	}

	for key, name := range envNames {
		if value, ok := env[name]; ok {
			v.Set(key, value)
		}
	}

	return nil
}

// FindEnvFile looks for a .env file in dir and its parents.
func FindEnvFile(dir string) (string, bool) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}

	for {
		candidate := filepath.Join(dir, constants.DefaultEnvFile)

		info, err := os.Stat(candidate)
		if err == nil && info.Mode().IsRegular() {
			return candidate, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}

		dir = parent
	}
}
