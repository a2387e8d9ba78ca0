package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"codeberg.org/snonux/wordhoard/internal/lookup"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS lookup_cache (
	kind TEXT NOT NULL,
	word_key TEXT NOT NULL,
	word TEXT NOT NULL,
	payload TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (kind, word_key)
)`

// Querier is implemented by *pgxpool.Pool and pgx.Tx
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps records in a PostgreSQL table
type PostgresStore struct {
	q       Querier
	builder sq.StatementBuilderType
	close   func()
}

// NewPostgresStore wraps an existing pool or transaction
func NewPostgresStore(q Querier) *PostgresStore {
	return &PostgresStore{
		q:       q,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// OpenPostgres connects to dsn and pings the database
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("cache: parse database DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("cache: create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("cache: ping database: %w", err)
	}

	store := NewPostgresStore(pool)
	store.close = pool.Close
	return store, nil
}

// EnsureSchema creates the cache table when missing
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.q.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("cache: creating schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Exists(ctx context.Context, kind lookup.Kind, word string) (bool, error) {
	query, args, err := s.builder.Select("1").
		From(tableName).
		Where(sq.Eq{"kind": kind.String(), "word_key": SanitizeKey(word)}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("cache: building query: %w", err)
	}

	var one int
	err = s.q.QueryRow(ctx, query, args...).Scan(&one)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, pgx.ErrNoRows):
		return false, nil
	default:
		return false, fmt.Errorf("cache: checking %s: %w", word, err)
	}
}

func (s *PostgresStore) Load(ctx context.Context, kind lookup.Kind, word string) (lookup.Result, error) {
	query, args, err := s.builder.Select("payload").
		From(tableName).
		Where(sq.Eq{"kind": kind.String(), "word_key": SanitizeKey(word)}).
		ToSql()
	if err != nil {
		return lookup.Result{}, fmt.Errorf("cache: building query: %w", err)
	}

	var payload string
	err = s.q.QueryRow(ctx, query, args...).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return lookup.Result{}, ErrNotFound
	}
	if err != nil {
		return lookup.Result{}, fmt.Errorf("cache: loading %s: %w", word, err)
	}
	return decodeResult([]byte(payload))
}

func (s *PostgresStore) Save(ctx context.Context, kind lookup.Kind, word string, result lookup.Result) error {
	data, err := encodeResult(result)
	if err != nil {
		return err
	}

	query, args, err := s.builder.Insert(tableName).
		Columns("kind", "word_key", "word", "payload", "created_at").
		Values(kind.String(), SanitizeKey(word), word, string(data), time.Now().UTC()).
		Suffix(upsertSuffix).
		ToSql()
	if err != nil {
		return fmt.Errorf("cache: building query: %w", err)
	}

	if _, err := s.q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("cache: saving %s: %w", word, err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	if s.close != nil {
		s.close()
	}
	return nil
}
