package file

import (
	"context"
	"errors"
	"path"
)

// KV stores each key as a JSON object below dir.
type KV struct {
	storage Storage
	dir     string
}

func NewKV(storage Storage, dir string) *KV {
	return &KV{storage: storage, dir: dir}
}

func (kv *KV) path(key string) string {
	return path.Join(kv.dir, SanitizeFilename(key)+".json")
}

// Load returns the value at key. A missing key yields nil data and no error.
func (kv *KV) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := kv.storage.Get(ctx, kv.path(key))
	if errors.Is(err, ErrFileNotFound) {
		return nil, nil
	}
	return data, err
}

func (kv *KV) Store(ctx context.Context, key string, value []byte) error {
	return kv.storage.Put(ctx, kv.path(key), value, "application/json")
}
