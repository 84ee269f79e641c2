package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/peterbourgon/diskv/v3"
)

// DiskKV stores every key as one flat file under basePath.
type DiskKV struct {
	d *diskv.Diskv
}

func NewDiskKV(basePath string) *DiskKV {
	return &DiskKV{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: flatTransform,
		InverseTransform:  flatInverseTransform,
		CacheSizeMax:      256 * 1024,
	})}
}

func (k *DiskKV) Get(_ context.Context, key string) ([]byte, error) {
	val, err := k.d.Read(key)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read key %q: %w", key, err)
	}
	return val, nil
}

func (k *DiskKV) Put(_ context.Context, key string, value []byte) error {
	if err := k.d.Write(key, value); err != nil {
		return fmt.Errorf("write key %q: %w", key, err)
	}
	return nil
}

func (k *DiskKV) Delete(_ context.Context, key string) error {
	if !k.d.Has(key) {
		return nil
	}
	if err := k.d.Erase(key); err != nil {
		return fmt.Errorf("delete key %q: %w", key, err)
	}
	return nil
}

func (k *DiskKV) Keys(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, 8)
	for key := range k.d.Keys(ctx.Done()) {
		keys = append(keys, key)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

func (k *DiskKV) Close() error { return nil }

func flatTransform(key string) *diskv.PathKey {
	return &diskv.PathKey{Path: []string{}, FileName: key}
}

func flatInverseTransform(pathKey *diskv.PathKey) string {
	return pathKey.FileName
}
