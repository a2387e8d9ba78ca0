package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"codeberg.org/snonux/wordhoard/internal/lookup"
)

const tableName = "lookup_cache"

const sqliteSchema = `CREATE TABLE IF NOT EXISTS lookup_cache (
	kind TEXT NOT NULL,
	word_key TEXT NOT NULL,
	word TEXT NOT NULL,
	payload TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	PRIMARY KEY (kind, word_key)
)`

const upsertSuffix = "ON CONFLICT (kind, word_key) DO UPDATE SET " +
	"word = excluded.word, payload = excluded.payload, created_at = excluded.created_at"

// SQLiteStore keeps records in a single SQLite database
type SQLiteStore struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

// NewSQLiteStore opens (or creates) the database at path
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("cache: creating directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("cache: opening sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cache: creating schema: %w", err)
	}

	return &SQLiteStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Question).RunWith(db),
	}, nil
}

func (s *SQLiteStore) Exists(ctx context.Context, kind lookup.Kind, word string) (bool, error) {
	var one int
	err := s.builder.Select("1").
		From(tableName).
		Where(sq.Eq{"kind": kind.String(), "word_key": SanitizeKey(word)}).
		Limit(1).
		QueryRowContext(ctx).
		Scan(&one)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	default:
		return false, fmt.Errorf("cache: checking %s: %w", word, err)
	}
}

func (s *SQLiteStore) Load(ctx context.Context, kind lookup.Kind, word string) (lookup.Result, error) {
	var payload string
	err := s.builder.Select("payload").
		From(tableName).
		Where(sq.Eq{"kind": kind.String(), "word_key": SanitizeKey(word)}).
		QueryRowContext(ctx).
		Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return lookup.Result{}, ErrNotFound
	}
	if err != nil {
		return lookup.Result{}, fmt.Errorf("cache: loading %s: %w", word, err)
	}
	return decodeResult([]byte(payload))
}

func (s *SQLiteStore) Save(ctx context.Context, kind lookup.Kind, word string, result lookup.Result) error {
	data, err := encodeResult(result)
	if err != nil {
		return err
	}

	_, err = s.builder.Insert(tableName).
		Columns("kind", "word_key", "word", "payload", "created_at").
		Values(kind.String(), SanitizeKey(word), word, string(data), time.Now().UTC()).
		Suffix(upsertSuffix).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("cache: saving %s: %w", word, err)
	}
	return nil
}

// Count returns the number of stored records
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.builder.Select("COUNT(*)").From(tableName).QueryRowContext(ctx).Scan(&n); err != nil {
		return 0, fmt.Errorf("cache: counting records: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
