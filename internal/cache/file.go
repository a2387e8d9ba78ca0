package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"codeberg.org/snonux/wordhoard/internal/lookup"
)

// FileStore keeps one JSON file per word and kind under a data directory
type FileStore struct {
	dir string
}

// NewFileStore creates the kind subdirectories below dir
func NewFileStore(dir string) (*FileStore, error) {
	for _, kind := range lookup.Kinds {
		if err := os.MkdirAll(filepath.Join(dir, kind.String()), 0755); err != nil {
			return nil, fmt.Errorf("cache: creating directory: %w", err)
		}
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the record file for word and kind
func (s *FileStore) Path(kind lookup.Kind, word string) string {
	return filepath.Join(s.dir, kind.String(), SanitizeKey(word)+".json")
}

func (s *FileStore) Exists(ctx context.Context, kind lookup.Kind, word string) (bool, error) {
	_, err := os.Stat(s.Path(kind, word))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("cache: checking %s: %w", word, err)
	}
}

func (s *FileStore) Load(ctx context.Context, kind lookup.Kind, word string) (lookup.Result, error) {
	data, err := os.ReadFile(s.Path(kind, word))
	if errors.Is(err, fs.ErrNotExist) {
		return lookup.Result{}, ErrNotFound
	}
	if err != nil {
		return lookup.Result{}, fmt.Errorf("cache: reading %s: %w", word, err)
	}
	return decodeResult(data)
}

// Save writes the record through a temporary file and a rename, so a
// reader never sees a partial file.
func (s *FileStore) Save(ctx context.Context, kind lookup.Kind, word string, result lookup.Result) error {
	data, err := encodeResult(result)
	if err != nil {
		return err
	}

	path := s.Path(kind, word)
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*.json")
	if err != nil {
		return fmt.Errorf("cache: creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("cache: writing %s: %w", word, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("cache: writing %s: %w", word, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("cache: saving %s: %w", word, err)
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}
