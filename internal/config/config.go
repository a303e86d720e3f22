package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dshills/netconfig-mcp/internal/dialect"
	"github.com/dshills/netconfig-mcp/internal/docstore"
	"github.com/dshills/netconfig-mcp/internal/logger"
	"github.com/dshills/netconfig-mcp/internal/splitter"
)

const (
	// EnvPrefix is prepended to every environment variable name
	EnvPrefix = "NETCONFIG_"
	// DefaultFile is read when no file is given and it exists in the working directory
	DefaultFile = "config.yaml"
	// DefaultDBPath is the SQLite chunk store location
	DefaultDBPath = "netconfig.db"
)

var (
	ErrParsingConfig = errors.New("failed to parse configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config is the application configuration.
type Config struct {
	DBPath    string          `yaml:"db_path" env:"DB_PATH"`
	LogLevel  string          `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat string          `yaml:"log_format" env:"LOG_FORMAT"`
	Workers   int             `yaml:"workers" env:"WORKERS"`
	Mongo     docstore.Config `yaml:"mongo" envPrefix:"MONGO_"`
	Chunking  Chunking        `yaml:"chunking" envPrefix:"CHUNK_"`
}

// Chunking tunes segmentation and dialect detection.
type Chunking struct {
	MaxSize  int `yaml:"max_size" env:"MAX_SIZE"`
	Overlap  int `yaml:"overlap" env:"OVERLAP"`
	MinScore int `yaml:"min_score" env:"MIN_SCORE"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DBPath:    DefaultDBPath,
		LogLevel:  "info",
		LogFormat: string(logger.FormatText),
		Workers:   runtime.NumCPU(),
		Mongo:     docstore.DefaultConfig(),
		Chunking: Chunking{
			MaxSize:  splitter.DefaultSize,
			Overlap:  splitter.DefaultOverlap,
			MinScore: dialect.DefaultMinScore,
		},
	}
}

// Options controls where Load reads from.
type Options struct {
	// File is a YAML config file. Empty means DefaultFile if present.
	File string
	// EnvFiles are dotenv files. Empty means ./.env if present.
	EnvFiles []string
}

// Load builds the configuration from defaults, the YAML file, dotenv files
// and NETCONFIG_* environment variables, later sources winning.
func Load(opts Options) (*Config, error) {
	cfg := Default()

	if err := loadFile(cfg, opts.File); err != nil {
		return nil, err
	}

	if len(opts.EnvFiles) > 0 {
		if err := godotenv.Load(opts.EnvFiles...); err != nil {
			return nil, errors.Join(ErrParsingConfig, err)
		}
	} else {
		// The .env file might not exist and that's ok
		_ = godotenv.Load()
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, errors.Join(ErrParsingConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: %w", ErrParsingConfig, err)
	}

	return decodeYAML(cfg, data, path)
}

// decodeYAML merges data into cfg. The document must be a mapping; an empty
// document leaves cfg unchanged.
func decodeYAML(cfg *Config, data []byte, path string) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrParsingConfig, path, err)
	}
	if len(doc.Content) == 0 {
		return nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return nil
	}
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: %s must contain a top-level mapping", ErrParsingConfig, path)
	}

	if err := root.Decode(cfg); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrParsingConfig, path, err)
	}
	return nil
}

// Validate checks value ranges. A zero Workers count means one per CPU.
func (c *Config) Validate() error {
	var errs []error

	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be >= 0, got %d", c.Workers))
	}
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
	if _, err := splitter.New(c.Chunking.MaxSize, c.Chunking.Overlap); err != nil {
		errs = append(errs, err)
	}
	if c.Chunking.MinScore < 1 {
		errs = append(errs, fmt.Errorf("min_score must be >= 1, got %d", c.Chunking.MinScore))
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if _, err := logger.ParseFormat(c.LogFormat); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidConfig}, errs...)...)
	}
	return nil
}
