// Package config loads the demo CLI's configuration, following the
// teacher's internal/generator/models/common.go DecodeFile/Field pattern:
// YAML on disk, overridable by environment variables via cleanenv.
package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/pkg/errors"
)

// Config describes one run of the demo rotating writer CLI.
type Config struct {
	LogFormat string `yaml:"log_format" env:"ROTWRITER_LOG_FORMAT"`

	InputPath string `yaml:"input_path" env:"ROTWRITER_INPUT_PATH"`
	BasePath  string `yaml:"base_path"  env:"ROTWRITER_BASE_PATH"`

	PartitionBy []string `yaml:"partition_by" env:"ROTWRITER_PARTITION_BY"`

	MaxCount         uint64        `yaml:"max_count"         env:"ROTWRITER_MAX_COUNT"`
	MaxDuration      time.Duration `yaml:"max_duration"      env:"ROTWRITER_MAX_DURATION"`
	ChunkSize        int           `yaml:"chunk_size"         env:"ROTWRITER_CHUNK_SIZE"`
	CompressionCodec string        `yaml:"compression_codec" env:"ROTWRITER_COMPRESSION_CODEC"`
}

// FillDefaults fills zero-valued fields with the demo CLI's defaults,
// matching the Field.FillDefaults convention used across the teacher's
// models package.
func (c *Config) FillDefaults() {
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}

	if c.BasePath == "" {
		c.BasePath = "output"
	}

	if c.MaxCount == 0 {
		c.MaxCount = 1_000_000
	}

	if c.MaxDuration == 0 {
		c.MaxDuration = time.Hour
	}

	if c.ChunkSize == 0 {
		c.ChunkSize = 64
	}

	if c.CompressionCodec == "" {
		c.CompressionCodec = "SNAPPY"
	}
}

// Validate checks the config for required fields, matching the teacher's
// Field.Validate convention.
func (c *Config) Validate() []error {
	var errs []error

	if c.InputPath == "" {
		errs = append(errs, errors.New("input_path is required"))
	}

	return errs
}

// Load reads path (if non-empty) via cleanenv, then env vars, then fills
// defaults and validates.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, errors.WithMessagef(err, "failed to parse config file %q", path)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, errors.WithMessage(err, "failed to read config from environment")
	}

	cfg.FillDefaults()

	if errs := cfg.Validate(); len(errs) != 0 {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.Error())
		}

		return nil, errors.Errorf("invalid config: %v", msgs)
	}

	return &cfg, nil
}
