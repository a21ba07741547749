package filestorage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type LocalStorage struct {
	baseDir string
}

func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

// path не дает имени выйти за пределы baseDir
func (s *LocalStorage) path(name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid file name: %s", name)
	}
	return filepath.Join(s.baseDir, clean), nil
}

func (s *LocalStorage) Save(ctx context.Context, name string, r io.Reader) (_ string, err error) {
	path, err := s.path(name)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return filepath.Abs(path)
}

func (s *LocalStorage) GetURL(ctx context.Context, name string) (string, error) {
	path, err := s.path(name)
	if err != nil {
		return "", err
	}
	return filepath.Abs(path)
}

func (s *LocalStorage) Type() string {
	return "local"
}
