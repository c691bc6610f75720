package attachment

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// LocalStore keeps attachments on the local filesystem, keyed by a uuid so
// original names never collide.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) Put(ctx context.Context, reader io.Reader, size int64, originalName, mime string) (string, error) {
	key := uuid.NewString() + filepath.Ext(originalName)
	f, err := os.Create(filepath.Join(s.dir, key))
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, reader); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return key, nil
}

func (s *LocalStore) Delete(ctx context.Context, path string) error {
	err := os.Remove(filepath.Join(s.dir, path))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *LocalStore) Exists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(filepath.Join(s.dir, path))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *LocalStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.dir, path))
}
