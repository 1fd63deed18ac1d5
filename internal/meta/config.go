package meta

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ApplicationConfig is a top-level block for application-level meta configuration.
type ApplicationConfig struct {
	SentryDSN string `yaml:"sentry_dsn"`
}

// StatsdConfig is a top-level block describing the metrics aggregator target. Omitted fields
// assume the library defaults (localhost:8125, one second idle timeout, no prefix).
type StatsdConfig struct {
	Host        string        `yaml:"host"`
	Port        int           `yaml:"port"`
	Prefix      string        `yaml:"prefix"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	Disabled    bool          `yaml:"disabled"`
	Log         bool          `yaml:"log"`
}

// Config describes all CLI configuration options.
type Config struct {
	Application *ApplicationConfig `yaml:"application"`
	Statsd      *StatsdConfig      `yaml:"statsd"`
}

// ParseConfig parses a Config struct instance from a file specified as a path on disk.
func ParseConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: error reading config: err=%v", err)
	}

	var cfg *Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: error parsing config: err=%v", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate the contents of the configuration. Returns an error if validation failed; nil
// otherwise.
func (c *Config) validate() error {
	if c == nil {
		return fmt.Errorf("config: empty configuration")
	}

	// Users can omit the statsd block entirely to rely on library defaults.
	if c.Statsd != nil {
		if c.Statsd.Port < 0 || c.Statsd.Port > 65535 {
			return fmt.Errorf("config: statsd port out of range: port=%d", c.Statsd.Port)
		}

		if c.Statsd.IdleTimeout < 0 {
			return fmt.Errorf(
				"config: statsd idle timeout must be nonnegative: timeout=%v",
				c.Statsd.IdleTimeout,
			)
		}
	}

	return nil
}
