package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"BCVRates/internal/infrastructure/fetcher"
)

const (
	// DefaultURL is the BCV page publishing the official reference rates.
	DefaultURL = "https://www.bcv.org.ve/estadisticas/tipo-cambio-de-referencia-smc"

	defaultTimeout = 30 * time.Second

	configPathEnv = "BCV_RATES_CONFIG"
	urlEnv        = "BCV_RATES_URL"
	logLevelEnv   = "BCV_RATES_LOG_LEVEL"
	sinkEnv       = "BCV_RATES_SINK"
	outputPathEnv = "BCV_RATES_OUTPUT"
)

// Sink names accepted in output.sink.
const (
	SinkStdout = "stdout"
	SinkJSONL  = "jsonl"
	SinkSQLite = "sqlite"
)

// Config holds the settings of a single scraping run.
type Config struct {
	Source  SourceConfig  `yaml:"source"`
	Logging LoggingConfig `yaml:"logging"`
	Output  OutputConfig  `yaml:"output"`
}

// SourceConfig describes the page to fetch and how to request it.
type SourceConfig struct {
	URL            string        `yaml:"url"`
	Timeout        time.Duration `yaml:"timeout"`
	CABundle       string        `yaml:"caBundle"`
	UserAgent      string        `yaml:"userAgent"`
	AcceptLanguage string        `yaml:"acceptLanguage"`
	Accept         string        `yaml:"accept"`
}

// Headers returns the configured request headers, skipping empty ones.
func (s SourceConfig) Headers() map[string]string {
	headers := map[string]string{}
	if s.UserAgent != "" {
		headers["User-Agent"] = s.UserAgent
	}
	if s.AcceptLanguage != "" {
		headers["Accept-Language"] = s.AcceptLanguage
	}
	if s.Accept != "" {
		headers["Accept"] = s.Accept
	}
	return headers
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// OutputConfig selects where the record goes.
type OutputConfig struct {
	Sink string `yaml:"sink"`
	Path string `yaml:"path"`
}

// Overrides come from command-line flags and win over file and env values.
type Overrides struct {
	ConfigPath string
	URL        string
}

// Load reads YAML configuration (if present) and applies environment and flag overrides.
func Load(overrides Overrides) Config {
	cfg := defaultConfig()

	path := overrides.ConfigPath
	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	if overrides.URL != "" {
		cfg.Source.URL = overrides.URL
	}

	return cfg
}

// Validate reports settings that would make the run fail later.
func (c Config) Validate() error {
	u, err := url.Parse(c.Source.URL)
	if err != nil {
		return fmt.Errorf("source url %q: %w", c.Source.URL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("source url %q must be an absolute http(s) url", c.Source.URL)
	}

	if c.Source.Timeout <= 0 {
		return fmt.Errorf("source timeout must be positive, got %s", c.Source.Timeout)
	}

	switch c.Output.Sink {
	case SinkStdout:
	case SinkJSONL, SinkSQLite:
		if c.Output.Path == "" {
			return fmt.Errorf("output sink %s requires output.path", c.Output.Sink)
		}
	default:
		return fmt.Errorf("unknown output sink %q", c.Output.Sink)
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(urlEnv); v != "" {
		c.Source.URL = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(sinkEnv); v != "" {
		c.Output.Sink = v
	}

	if v := os.Getenv(outputPathEnv); v != "" {
		c.Output.Path = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Source.URL != "" {
		base.Source.URL = override.Source.URL
	}
	if override.Source.Timeout != 0 {
		base.Source.Timeout = override.Source.Timeout
	}
	if override.Source.CABundle != "" {
		base.Source.CABundle = override.Source.CABundle
	}
	if override.Source.UserAgent != "" {
		base.Source.UserAgent = override.Source.UserAgent
	}
	if override.Source.AcceptLanguage != "" {
		base.Source.AcceptLanguage = override.Source.AcceptLanguage
	}
	if override.Source.Accept != "" {
		base.Source.Accept = override.Source.Accept
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Output.Sink != "" {
		base.Output.Sink = override.Output.Sink
	}
	if override.Output.Path != "" {
		base.Output.Path = override.Output.Path
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Source: SourceConfig{
			URL:            DefaultURL,
			Timeout:        defaultTimeout,
			UserAgent:      fetcher.DefaultHeaders["User-Agent"],
			AcceptLanguage: fetcher.DefaultHeaders["Accept-Language"],
			Accept:         fetcher.DefaultHeaders["Accept"],
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Output:  OutputConfig{Sink: SinkStdout},
	}
}
