package dataset

import (
	"context"
	"errors"
	"fmt"

	"affiliate-locator/internal/models"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// ErrSourceUnavailable is returned when the dataset source cannot be found or read.
var ErrSourceUnavailable = errors.New("dataset source unavailable")

// Loader builds the full affiliates dataset from its source of truth.
type Loader interface {
	Load(ctx context.Context) ([]models.Affiliate, error)
}

// FileLoader loads affiliates from a newline-delimited JSON file.
type FileLoader struct {
	fs     afero.Fs
	path   string
	logger zerolog.Logger
}

// NewFileLoader creates a loader reading path from fs.
func NewFileLoader(fs afero.Fs, path string, logger zerolog.Logger) *FileLoader {
	return &FileLoader{
		fs:     fs,
		path:   path,
		logger: logger.With().Str("component", "file_loader").Str("path", path).Logger(),
	}
}

// Load reads and parses the whole file. Malformed lines are logged and
// skipped; only a missing or unreadable file fails the load.
func (l *FileLoader) Load(ctx context.Context) ([]models.Affiliate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := afero.ReadFile(l.fs, l.path)
	if err != nil {
		return nil, fmt.Errorf("dataset: read %q: %w: %w", l.path, ErrSourceUnavailable, err)
	}

	res := Parse(string(content))
	for _, w := range res.Warnings {
		l.logger.Warn().Int("line", w.Line).Err(w.Err).Msg("skipping invalid affiliate line")
	}

	l.logger.Debug().
		Int("records", len(res.Affiliates)).
		Int("skipped", len(res.Warnings)).
		Msg("affiliates file loaded")

	return res.Affiliates, nil
}
