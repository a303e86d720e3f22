package config

import (
	"io"
	"log/slog"

	"github.com/dshills/netconfig-mcp/internal/chunker"
	"github.com/dshills/netconfig-mcp/internal/dialect"
	"github.com/dshills/netconfig-mcp/internal/logger"
	"github.com/dshills/netconfig-mcp/internal/splitter"
)

// NewLogger builds the logger described by LogLevel and LogFormat, writing to w
func (c *Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := logger.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	format, err := logger.ParseFormat(c.LogFormat)
	if err != nil {
		return nil, err
	}
	return logger.New(
		logger.WithLevel(level),
		logger.WithFormat(format),
		logger.WithOutput(w),
	), nil
}

// NewChunker builds a chunker with the configured split size and overlap
func (c *Config) NewChunker() (*chunker.Chunker, error) {
	sp, err := splitter.New(c.Chunking.MaxSize, c.Chunking.Overlap)
	if err != nil {
		return nil, err
	}
	return chunker.New(
		chunker.WithSplitter(sp),
		chunker.WithMaxChunkSize(c.Chunking.MaxSize),
	), nil
}

// NewDetector builds a detector with the configured confidence floor
func (c *Config) NewDetector() (*dialect.Detector, error) {
	return dialect.NewDetector(dialect.WithMinScore(c.Chunking.MinScore))
}
