package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	apperrors "slide-composer/internal/common/errors"
)

var extensions = map[string]string{
	ContentTypeHTML: ".html",
	ContentTypeJSON: ".json",
}

// FileSink writes artifacts below a directory, one sub-directory per run.
type FileSink struct {
	dir string
}

func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: dir}
}

func (s *FileSink) Save(ctx context.Context, key, contentType string, data []byte) error {
	if err := validateKey(key); err != nil {
		return apperrors.NewStoreWriteFailedError(key, err)
	}
	ext, ok := extensions[contentType]
	if !ok {
		return apperrors.NewStoreWriteFailedError(key, fmt.Errorf("unsupported content type %q", contentType))
	}

	path := filepath.Join(s.dir, filepath.FromSlash(key)+ext)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apperrors.NewStoreWriteFailedError(key, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".artifact-*")
	if err != nil {
		return apperrors.NewStoreWriteFailedError(key, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return apperrors.NewStoreWriteFailedError(key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return apperrors.NewStoreWriteFailedError(key, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return apperrors.NewStoreWriteFailedError(key, err)
	}
	return nil
}

func (s *FileSink) Load(ctx context.Context, key string) (*Artifact, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	for contentType, ext := range extensions {
		path := filepath.Join(s.dir, filepath.FromSlash(key)+ext)
		info, err := os.Stat(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return &Artifact{Key: key, ContentType: contentType, Data: data, CreatedAt: info.ModTime()}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
}
