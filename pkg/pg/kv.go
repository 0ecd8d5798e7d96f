package pg

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of *pgxpool.Pool used by KVStore.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const (
	kvSelect = `SELECT value FROM kv_store WHERE key = $1`
	kvUpsert = `INSERT INTO kv_store (key, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
)

// KVStore is a key-value store over the kv_store table.
type KVStore struct {
	db Querier
}

func NewKVStore(db Querier) *KVStore {
	return &KVStore{db: db}
}

// Load returns the value at key. A missing key yields nil data and no error.
func (s *KVStore) Load(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	if err := s.db.QueryRow(ctx, kvSelect, key).Scan(&value); err != nil {
		if IsNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	return value, nil
}

// Store upserts value at key.
func (s *KVStore) Store(ctx context.Context, key string, value []byte) error {
	_, err := s.db.Exec(ctx, kvUpsert, key, value)
	return err
}
