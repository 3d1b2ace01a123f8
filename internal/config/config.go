package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"cryptoStats/internal/statsapi"
)

// APIConfig holds stats API client settings shared by all commands.
type APIConfig struct {
	BaseURL      string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// Client returns the statsapi client configuration.
func (c APIConfig) Client() statsapi.Config {
	return statsapi.Config{
		BaseURL:      c.BaseURL,
		Timeout:      c.Timeout,
		MaxRetries:   c.MaxRetries,
		RetryBackoff: c.RetryBackoff,
	}
}

// ServeConfig holds configuration for the serve command.
type ServeConfig struct {
	API             APIConfig
	Listen          string
	Coin            string
	RecordOut       string
	PGDSN           string
	ShutdownTimeout time.Duration
	LogLevel        string
}

// FetchConfig holds configuration for the fetch command.
type FetchConfig struct {
	API       APIConfig
	Coin      string
	Format    string
	RecordOut string
	PGDSN     string
	LogLevel  string
}

// LoadServe merges config file, environment variables, and flags into ServeConfig.
func LoadServe(cfgFile string, flags *pflag.FlagSet) (ServeConfig, error) {
	v, err := load(cfgFile, flags, func(v *viper.Viper) {
		v.SetDefault("listen", ":8080")
		v.SetDefault("shutdown-timeout", 10*time.Second)
	})
	if err != nil {
		return ServeConfig{}, err
	}

	cfg := ServeConfig{
		API:             apiConfig(v),
		Listen:          v.GetString("listen"),
		Coin:            v.GetString("coin"),
		RecordOut:       v.GetString("record-out"),
		PGDSN:           v.GetString("pg-dsn"),
		ShutdownTimeout: v.GetDuration("shutdown-timeout"),
		LogLevel:        v.GetString("log-level"),
	}

	return cfg, nil
}

// LoadFetch merges config file, environment variables, and flags into FetchConfig.
func LoadFetch(cfgFile string, flags *pflag.FlagSet) (FetchConfig, error) {
	v, err := load(cfgFile, flags, func(v *viper.Viper) {
		v.SetDefault("format", "text")
		v.SetDefault("log-level", "warn")
	})
	if err != nil {
		return FetchConfig{}, err
	}

	cfg := FetchConfig{
		API:       apiConfig(v),
		Coin:      v.GetString("coin"),
		Format:    strings.ToLower(v.GetString("format")),
		RecordOut: v.GetString("record-out"),
		PGDSN:     v.GetString("pg-dsn"),
		LogLevel:  v.GetString("log-level"),
	}

	return cfg, nil
}

func load(cfgFile string, flags *pflag.FlagSet, defaults func(v *viper.Viper)) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("DASHBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("api-base-url", statsapi.DefaultBaseURL)
	v.SetDefault("timeout", time.Duration(0))
	v.SetDefault("max-retries", 0)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("log-level", "info")
	if defaults != nil {
		defaults(v)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return v, nil
}

func apiConfig(v *viper.Viper) APIConfig {
	return APIConfig{
		BaseURL:      strings.TrimSpace(v.GetString("api-base-url")),
		Timeout:      v.GetDuration("timeout"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
	}
}
