package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"codeberg.org/snonux/wordhoard/internal"
	"codeberg.org/snonux/wordhoard/internal/lookup"
)

// ErrNotFound is returned by Load when no record exists
var ErrNotFound = errors.New("cache: record not found")

const (
	BackendFiles    = "files"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"

	DefaultDir        = "data"
	sqliteDefaultFile = "wordhoard.db"
)

// Store persists lookup results
type Store interface {
	Exists(ctx context.Context, kind lookup.Kind, word string) (bool, error)
	Load(ctx context.Context, kind lookup.Kind, word string) (lookup.Result, error)
	Save(ctx context.Context, kind lookup.Kind, word string, result lookup.Result) error
	Close() error
}

// Config selects and configures a backend
type Config struct {
	Backend     string
	Dir         string
	SQLitePath  string
	PostgresDSN string
}

// SanitizeKey maps a word to its record key
func SanitizeKey(word string) string {
	return internal.SanitizeFilename(word)
}

// Open creates the store selected by config.Backend
func Open(ctx context.Context, config Config) (Store, error) {
	dir := config.Dir
	if dir == "" {
		dir = DefaultDir
	}

	switch strings.ToLower(strings.TrimSpace(config.Backend)) {
	case "", BackendFiles:
		store, err := NewFileStore(dir)
		if err != nil {
			return nil, err
		}
		return store, nil

	case BackendSQLite:
		path := config.SQLitePath
		if path == "" {
			path = filepath.Join(dir, sqliteDefaultFile)
		}
		store, err := NewSQLiteStore(path)
		if err != nil {
			return nil, err
		}
		return store, nil

	case BackendPostgres:
		if config.PostgresDSN == "" {
			return nil, fmt.Errorf("cache: postgres backend requires a DSN")
		}
		store, err := OpenPostgres(ctx, config.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
		return store, nil

	default:
		return nil, fmt.Errorf("cache: unknown backend %q", config.Backend)
	}
}

// encodeResult renders a result as two-space indented JSON with
// non-ASCII and HTML characters left as is.
func encodeResult(result lookup.Result) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func decodeResult(data []byte) (lookup.Result, error) {
	var result lookup.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return lookup.Result{}, fmt.Errorf("decoding cached result: %w", err)
	}
	return result, nil
}
