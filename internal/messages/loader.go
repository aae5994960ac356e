package messages

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for YAML files on the local file system.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based catalog loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "messages-loader").Logger(),
	}
}

// Load reads a YAML messages file and returns the resulting catalog.
func (l *fileLoader) Load(ctx context.Context, filePath string) (*Catalog, error) {
	l.logger.Info().Str("file", filePath).Msg("loading messages file")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to read messages file")
		return nil, fmt.Errorf("failed to read messages file %s: %w", filePath, err)
	}

	catalog, err := Parse(content)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("invalid messages file")
		return nil, fmt.Errorf("invalid messages file %s: %w", filePath, err)
	}

	l.logger.Info().Str("file", filePath).Msg("messages file loaded successfully")

	return catalog, nil
}

// fallbackLoader tries S3 first, then the local file, then the built-in replies.
type fallbackLoader struct {
	s3Loader   Loader
	fileLoader Loader
	s3Key      string
	s3Enabled  bool
	logger     zerolog.Logger
}

// NewFallbackLoader creates a loader that tries S3 first, then falls back to
// the local file system and finally to the built-in catalog.
// If s3Loader is nil, S3 is skipped.
func NewFallbackLoader(s3Loader, fileLoader Loader, s3Key string, s3Enabled bool, logger zerolog.Logger) Loader {
	return &fallbackLoader{
		s3Loader:   s3Loader,
		fileLoader: fileLoader,
		s3Key:      s3Key,
		s3Enabled:  s3Enabled,
		logger:     logger.With().Str("component", "messages-fallback-loader").Logger(),
	}
}

// Load returns the first catalog found. An empty filePath means no local
// file is configured; a configured file that fails to load is an error.
func (l *fallbackLoader) Load(ctx context.Context, filePath string) (*Catalog, error) {
	if l.s3Enabled && l.s3Loader != nil {
		l.logger.Info().Str("s3_key", l.s3Key).Msg("attempting to load messages from S3")

		catalog, err := l.s3Loader.Load(ctx, l.s3Key)
		if err == nil {
			return catalog, nil
		}

		l.logger.Warn().
			Err(err).
			Str("s3_key", l.s3Key).
			Msg("failed to load messages from S3, falling back")
	} else {
		l.logger.Debug().
			Bool("s3_enabled", l.s3Enabled).
			Bool("has_s3_loader", l.s3Loader != nil).
			Msg("S3 disabled or not configured")
	}

	if filePath != "" && l.fileLoader != nil {
		return l.fileLoader.Load(ctx, filePath)
	}

	l.logger.Info().Msg("using built-in messages")

	return Default(), nil
}
