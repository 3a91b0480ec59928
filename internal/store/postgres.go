package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB defines the database operations used by PostgresStore.
// *pgxpool.Pool satisfies this interface.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// PostgresStore keeps blobs in the blobs table. The version column is a
// counter bumped on every write.
type PostgresStore struct {
	db DB
}

func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, key string) (*Blob, error) {
	var data []byte
	var version int64
	err := s.db.QueryRow(ctx,
		`SELECT data, version FROM blobs WHERE key = $1`, key,
	).Scan(&data, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get blob %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get blob %s: %w", key, err)
	}
	return &Blob{Data: data, Version: strconv.FormatInt(version, 10)}, nil
}

func (s *PostgresStore) Put(ctx context.Context, key string, data []byte, expectedVersion string) (string, error) {
	if expectedVersion == "" {
		tag, err := s.db.Exec(ctx,
			`INSERT INTO blobs (key, data, version, updated_at)
			 VALUES ($1, $2, 1, now())
			 ON CONFLICT (key) DO NOTHING`,
			key, data,
		)
		if err != nil {
			return "", fmt.Errorf("insert blob %s: %w", key, err)
		}
		if tag.RowsAffected() == 0 {
			return "", fmt.Errorf("insert blob %s: %w", key, ErrVersionConflict)
		}
		return "1", nil
	}

	expected, err := strconv.ParseInt(expectedVersion, 10, 64)
	if err != nil {
		return "", fmt.Errorf("update blob %s: invalid version %q: %w", key, expectedVersion, ErrVersionConflict)
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE blobs SET data = $1, version = version + 1, updated_at = now()
		 WHERE key = $2 AND version = $3`,
		data, key, expected,
	)
	if err != nil {
		return "", fmt.Errorf("update blob %s: %w", key, err)
	}
	if tag.RowsAffected() == 0 {
		return "", fmt.Errorf("update blob %s at version %d: %w", key, expected, ErrVersionConflict)
	}
	return strconv.FormatInt(expected+1, 10), nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
