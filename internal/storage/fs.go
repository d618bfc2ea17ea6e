package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path"
	"time"

	"github.com/spf13/afero"
)

// MediaURLPrefix is where the HTTP server exposes filesystem-backed objects.
const MediaURLPrefix = "/media/"

type fsStorage struct {
	fs afero.Fs
}

// NewOsFS stores objects under root on the local disk.
func NewOsFS(root string) (Storage, error) {
	if root == "" {
		return nil, errors.New("media root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	return NewFS(afero.NewBasePathFs(afero.NewOsFs(), root)), nil
}

// NewMemFS keeps objects in memory.
func NewMemFS() Storage {
	return NewFS(afero.NewMemMapFs())
}

// NewFS wraps an afero filesystem.
func NewFS(fsys afero.Fs) Storage {
	return &fsStorage{fs: fsys}
}

func (s *fsStorage) Backend() string { return "fs" }

func (s *fsStorage) Put(_ context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	if err := s.fs.MkdirAll(path.Dir(key), 0o755); err != nil {
		return ObjectInfo{}, fmt.Errorf("create directory for %s: %w", key, err)
	}
	f, err := s.fs.Create(key)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("create %s: %w", key, err)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = s.fs.Remove(key)
		return ObjectInfo{}, fmt.Errorf("write %s: %w", key, err)
	}
	return ObjectInfo{
		Key:          key,
		Size:         n,
		ContentType:  opt.ContentType,
		LastModified: time.Now(),
		Metadata:     opt.Metadata,
	}, nil
}

func (s *fsStorage) Get(_ context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	f, err := s.fs.Open(key)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ObjectInfo{}, ErrNotFound
	}
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, ObjectInfo{}, err
	}
	if st.IsDir() {
		f.Close()
		return nil, ObjectInfo{}, ErrNotFound
	}
	return f, ObjectInfo{
		Key:          key,
		Size:         st.Size(),
		ContentType:  mime.TypeByExtension(path.Ext(key)),
		LastModified: st.ModTime(),
	}, nil
}

func (s *fsStorage) Delete(_ context.Context, key string) error {
	err := s.fs.Remove(key)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// PresignGet returns the public media path; files are served by the app itself.
func (s *fsStorage) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return MediaURLPrefix + key, nil
}
