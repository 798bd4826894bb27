// Package storage provides the local filesystem upload driver.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Local writes uploads below a root directory and returns URLs under a public prefix.
type Local struct {
	fs         afero.Fs
	publicBase string
	logger     zerolog.Logger
}

// NewLocal wraps an existing filesystem. Tests pass afero.NewMemMapFs().
func NewLocal(fs afero.Fs, publicBase string, logger zerolog.Logger) *Local {
	publicBase = "/" + strings.Trim(publicBase, "/")
	return &Local{
		fs:         fs,
		publicBase: publicBase,
		logger:     logger.With().Str("component", "local_storage").Logger(),
	}
}

// NewLocalDisk roots the driver at dir on the host filesystem, creating it when missing.
func NewLocalDisk(dir, publicBase string, logger zerolog.Logger) (*Local, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("local storage directory must not be empty")
	}
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return NewLocal(afero.NewBasePathFs(osFs, dir), publicBase, logger), nil
}

// Upload stores the payload and returns its public URL.
// A directory prefix in name is kept so receipts and media land in separate folders.
func (l *Local) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	clean := strings.TrimPrefix(path.Clean("/"+strings.ReplaceAll(name, "\\", "/")), "/")
	dir, file := path.Split(clean)
	if file == "" {
		return "", fmt.Errorf("file name must not be empty")
	}
	stored := path.Join(dir, uuid.NewString()[:8]+"-"+file)

	if dir != "" {
		if err := l.fs.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create upload folder: %w", err)
		}
	}
	if err := afero.WriteReader(l.fs, stored, reader); err != nil {
		return "", fmt.Errorf("failed to write upload: %w", err)
	}

	l.logger.Info().Str("path", stored).Msg("file stored locally")
	return l.publicBase + "/" + stored, nil
}

// FileSystem exposes the stored files for static serving.
func (l *Local) FileSystem() http.FileSystem {
	return afero.NewHttpFs(l.fs).Dir("/")
}
