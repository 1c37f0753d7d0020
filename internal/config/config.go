// Package config loads the sysinfo plugin configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Name is the namespace segment of every report topic: tln/<name>/<key>.
	Name      string          `yaml:"name" validate:"required,excludesall=/+#"`
	WAN       WANConfig       `yaml:"wan"`
	Dispatch  DispatchConfig  `yaml:"dispatch"`
	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type WANConfig struct {
	URL        string `yaml:"url" validate:"required,url"`
	TimeoutMS  int    `yaml:"timeout_ms" validate:"min=1"`
	MaxRetries int    `yaml:"max_retries" validate:"min=0,max=10"`
}

type DispatchConfig struct {
	SendTimeoutMS int `yaml:"send_timeout_ms" validate:"min=1"`
	BufferSize    int `yaml:"buffer_size" validate:"min=1"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Output string `yaml:"output" validate:"oneof=stdout stderr discard"`
}

type TelemetryConfig struct {
	Exporter   string  `yaml:"exporter" validate:"oneof=none stdout otlp-grpc otlp-http"`
	Endpoint   string  `yaml:"endpoint"`
	Insecure   bool    `yaml:"insecure"`
	SampleRate float64 `yaml:"sample_rate" validate:"min=0,max=1"`
}

var validate = validator.New()

// Default returns a configuration with every field set to its default.
func Default() *Config {
	return &Config{
		Name: DefaultName,
		WAN: WANConfig{
			URL:        DefaultWANURL,
			TimeoutMS:  DefaultWANTimeoutMs,
			MaxRetries: DefaultWANMaxRetries,
		},
		Dispatch: DispatchConfig{
			SendTimeoutMS: DefaultSendTimeoutMs,
			BufferSize:    DefaultChannelBufferSize,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Output: DefaultLogOutput,
		},
		Telemetry: TelemetryConfig{
			Exporter:   DefaultExporter,
			SampleRate: DefaultSampleRate,
		},
	}
}

// Load reads configuration from a YAML file and applies SYSINFO_* environment
// overrides. An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks field constraints and reports every violation at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		messages = append(messages, fmt.Sprintf("%s: failed %s validation", e.Namespace(), e.Tag()))
	}
	return errors.New(strings.Join(messages, "; "))
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("SYSINFO_NAME"); v != "" {
		cfg.Name = v
	}
	if v := os.Getenv("SYSINFO_WAN_URL"); v != "" {
		cfg.WAN.URL = v
	}
	if v := os.Getenv("SYSINFO_WAN_TIMEOUT_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SYSINFO_WAN_TIMEOUT_MS %q: %w", v, err)
		}
		cfg.WAN.TimeoutMS = ms
	}
	if v := os.Getenv("SYSINFO_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("SYSINFO_OTEL_EXPORTER"); v != "" {
		cfg.Telemetry.Exporter = v
	}
	if v := os.Getenv("SYSINFO_OTEL_ENDPOINT"); v != "" {
		cfg.Telemetry.Endpoint = v
	}
	return nil
}

// Timeout returns the WAN lookup timeout as a duration.
func (w WANConfig) Timeout() time.Duration {
	return time.Duration(w.TimeoutMS) * time.Millisecond
}

// SendTimeout returns how long a single outbound send may block.
func (d DispatchConfig) SendTimeout() time.Duration {
	return time.Duration(d.SendTimeoutMS) * time.Millisecond
}

// SlogLevel maps the configured level onto slog.
func (l LoggingConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Writer returns the destination named by Output.
func (l LoggingConfig) Writer() io.Writer {
	switch l.Output {
	case "stdout":
		return os.Stdout
	case "discard":
		return io.Discard
	default:
		return os.Stderr
	}
}
