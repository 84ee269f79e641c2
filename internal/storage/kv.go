package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("storage: key not found")

// KV is a small byte-oriented key-value store scoped to one user profile.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

const (
	BackendDisk   = "diskv"
	BackendSQLite = "sqlite"
)

// Open returns the KV backend named by backend rooted at dir.
func Open(ctx context.Context, backend, dir string) (KV, error) {
	switch backend {
	case "", BackendDisk:
		return NewDiskKV(filepath.Join(dir, "overlay")), nil
	case BackendSQLite:
		kv, err := NewSQLiteKV(filepath.Join(dir, "teletext.db"))
		if err != nil {
			return nil, err
		}
		if err := kv.Init(ctx); err != nil {
			_ = kv.Close()
			return nil, err
		}
		return kv, nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", backend)
	}
}

// CheckWritable writes and removes a scratch key.
func CheckWritable(ctx context.Context, kv KV) error {
	const scratch = "teletext_write_check"
	if err := kv.Put(ctx, scratch, []byte("ok")); err != nil {
		return fmt.Errorf("write check key: %w", err)
	}
	if err := kv.Delete(ctx, scratch); err != nil {
		return fmt.Errorf("delete check key: %w", err)
	}
	return nil
}
