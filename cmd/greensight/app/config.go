package app

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/roman-kulish/greensight/internal/plot"
	"github.com/roman-kulish/greensight/internal/spectrum"
)

const (
	DefaultAddress         = ":8080"
	DefaultBodyLimit       = 10 * humanize.MByte
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 2 * time.Minute
	DefaultShutdownTimeout = 10 * time.Second
	DefaultPreviewDPI      = 100
	DefaultDownloadDPI     = 600
)

// Config represents the main application configuration
type Config struct {
	Settings Settings       `yaml:"settings"`
	Server   ServerConfig   `yaml:"server"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Render   RenderConfig   `yaml:"render"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel LogLevel `yaml:"logLevel"`
}

// ServerConfig represents the HTTP listener settings
type ServerConfig struct {
	Address         string   `yaml:"address"`
	BodyLimit       ByteSize `yaml:"bodyLimit"` // e.g. "10 MB", "512KiB"
	ReadTimeout     Duration `yaml:"readTimeout"`
	WriteTimeout    Duration `yaml:"writeTimeout"`
	ShutdownTimeout Duration `yaml:"shutdownTimeout"`
	RequestLogging  bool     `yaml:"requestLogging"`
}

// PipelineConfig selects the analysis revision
type PipelineConfig struct {
	Revision string `yaml:"revision"` // "reference" or "revised"
}

// RenderConfig represents plot resolutions
type RenderConfig struct {
	PreviewDPI  float64 `yaml:"previewDPI"`
	DownloadDPI float64 `yaml:"downloadDPI"`
}

// DefaultConfig returns the configuration used for keys missing from the file
func DefaultConfig() *Config {
	return &Config{
		Settings: Settings{LogLevel: LogLevel(slog.LevelInfo)},
		Server: ServerConfig{
			Address:         DefaultAddress,
			BodyLimit:       DefaultBodyLimit,
			ReadTimeout:     Duration(DefaultReadTimeout),
			WriteTimeout:    Duration(DefaultWriteTimeout),
			ShutdownTimeout: Duration(DefaultShutdownTimeout),
			RequestLogging:  true,
		},
		Pipeline: PipelineConfig{Revision: spectrum.ReferencePolicy.Name},
		Render: RenderConfig{
			PreviewDPI:  DefaultPreviewDPI,
			DownloadDPI: DefaultDownloadDPI,
		},
	}
}

// LoadConfig reads a YAML configuration file on top of the defaults
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	config := DefaultConfig()
	if err = yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err = config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address: must not be empty")
	}
	if c.Server.BodyLimit == 0 {
		return fmt.Errorf("server.bodyLimit: must be greater than zero")
	}

	for name, d := range map[string]Duration{
		"server.readTimeout":     c.Server.ReadTimeout,
		"server.writeTimeout":    c.Server.WriteTimeout,
		"server.shutdownTimeout": c.Server.ShutdownTimeout,
	} {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	if _, err := c.Pipeline.Policy(); err != nil {
		return fmt.Errorf("pipeline.revision: %w", err)
	}

	for name, dpi := range map[string]float64{
		"render.previewDPI":  c.Render.PreviewDPI,
		"render.downloadDPI": c.Render.DownloadDPI,
	} {
		if dpi < plot.MinDPI || dpi > plot.MaxDPI {
			return fmt.Errorf("%s: must be between %g and %g: %g given", name, plot.MinDPI, plot.MaxDPI, dpi)
		}
	}

	return nil
}

// Policy resolves the configured revision name
func (p PipelineConfig) Policy() (spectrum.Policy, error) {
	return spectrum.PolicyByName(p.Revision)
}

type LogLevel slog.Level

func (l *LogLevel) UnmarshalYAML(value *yaml.Node) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(value.Value)); err != nil {
		return fmt.Errorf("app.LogLevel: failed to parse: %s", err)
	}

	*l = LogLevel(level)
	return nil
}

func (l LogLevel) Level() slog.Level {
	return slog.Level(l)
}

// ByteSize is a size in bytes written in human form, e.g. "10 MB"
type ByteSize uint64

func (b *ByteSize) UnmarshalYAML(value *yaml.Node) error {
	size, err := humanize.ParseBytes(value.Value)
	if err != nil {
		return fmt.Errorf("app.ByteSize: failed to parse: %s", err)
	}

	*b = ByteSize(size)
	return nil
}

func (b ByteSize) MarshalYAML() (interface{}, error) {
	return b.String(), nil
}

func (b ByteSize) String() string {
	return humanize.IBytes(uint64(b))
}

type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	duration, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("app.Duration: failed to parse: %s", err)
	}

	*d = Duration(duration)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

func (d *Duration) UnmarshalJSON(bytes []byte) error {
	var v string
	if err := json.Unmarshal(bytes, &v); err != nil {
		return err
	}

	duration, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("app.Duration: failed to parse: %s", err)
	}

	*d = Duration(duration)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d Duration) Validate() error {
	duration := time.Duration(d)

	if duration < 0 {
		return fmt.Errorf("app.Duration: must not be negative: %s", duration)
	}
	if duration > 0 && duration < time.Second {
		return fmt.Errorf("app.Duration: must be at least 1 second: %s given", duration)
	}

	return nil
}

func (d Duration) String() string {
	return time.Duration(d).String()
}
