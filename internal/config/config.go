// Package config loads mtb-routes settings from file, environment and flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Keys recognised in the config file and, upper-cased with the MTB_ROUTES_
// prefix, in the environment.
const (
	KeyBaseURL           = "base_url"
	KeyIndexPath         = "index_path"
	KeyDataFile          = "data_file"
	KeyPagesFile         = "pages_file"
	KeyExceptionsFile    = "exceptions_file"
	KeyCacheDB           = "cache_db"
	KeyUserAgent         = "user_agent"
	KeyTimeout           = "timeout"
	KeyRequestsPerSecond = "requests_per_second"
	KeyFetchWorkers      = "fetch_workers"
	KeyCacheTTL          = "cache_ttl"
	KeyLogLevel          = "log_level"

	EnvPrefix  = "MTB_ROUTES"
	configName = "mtb-routes"
)

// Config holds resolved settings.
type Config struct {
	BaseURL           string
	IndexPath         string
	DataFile          string
	PagesFile         string
	ExceptionsFile    string
	CacheDB           string
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64
	FetchWorkers      int
	CacheTTL          time.Duration
	LogLevel          string
}

// Defaults applied before file, environment and flags.
var defaults = map[string]any{
	KeyBaseURL:           "http://mtb-bg.com",
	KeyIndexPath:         "/index.php/trails/index-routes",
	KeyDataFile:          "routes.json",
	KeyPagesFile:         "pages.txt",
	KeyExceptionsFile:    "pages_exceptions.txt",
	KeyCacheDB:           "~/.cache/mtb-routes/pages.db",
	KeyUserAgent:         "mtb-routes/1.0 (github.com/pfrederiksen/mtb-routes)",
	KeyTimeout:           "30s",
	KeyRequestsPerSecond: 2.0,
	KeyFetchWorkers:      4,
	KeyCacheTTL:          "0s",
	KeyLogLevel:          "info",
}

// Load resolves the configuration. An explicit configFile must exist;
// otherwise mtb-routes.{yaml,toml,json} is looked up in the working
// directory and $HOME/.config/mtb-routes, and a missing file is not an
// error. Flags in fs, when given, override everything else for the keys
// they are bound to.
func Load(configFile string, fs *pflag.FlagSet, bindings map[string]string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/mtb-routes")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if fs != nil {
		for key, flag := range bindings {
			f := fs.Lookup(flag)
			if f == nil {
				return nil, fmt.Errorf("bind %s: no flag --%s", key, flag)
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind %s: %w", key, err)
			}
		}
	}

	cfg := &Config{
		BaseURL:           strings.TrimRight(v.GetString(KeyBaseURL), "/"),
		IndexPath:         v.GetString(KeyIndexPath),
		DataFile:          v.GetString(KeyDataFile),
		PagesFile:         v.GetString(KeyPagesFile),
		ExceptionsFile:    v.GetString(KeyExceptionsFile),
		CacheDB:           v.GetString(KeyCacheDB),
		UserAgent:         v.GetString(KeyUserAgent),
		Timeout:           v.GetDuration(KeyTimeout),
		RequestsPerSecond: v.GetFloat64(KeyRequestsPerSecond),
		FetchWorkers:      v.GetInt(KeyFetchWorkers),
		CacheTTL:          v.GetDuration(KeyCacheTTL),
		LogLevel:          v.GetString(KeyLogLevel),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return errors.New("config: base_url is empty")
	case c.DataFile == "":
		return errors.New("config: data_file is empty")
	case c.FetchWorkers < 1:
		return fmt.Errorf("config: fetch_workers must be positive, got %d", c.FetchWorkers)
	case c.Timeout <= 0:
		return fmt.Errorf("config: timeout must be positive, got %s", c.Timeout)
	case c.CacheTTL < 0:
		return fmt.Errorf("config: cache_ttl must not be negative, got %s", c.CacheTTL)
	}
	return nil
}

// PageURL joins a relative page path onto the base URL.
func (c *Config) PageURL(rel string) string {
	if strings.HasPrefix(rel, "http://") || strings.HasPrefix(rel, "https://") {
		return rel
	}
	if !strings.HasPrefix(rel, "/") {
		rel = "/" + rel
	}
	return c.BaseURL + rel
}
