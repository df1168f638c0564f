// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package idbridge

import (
	"context"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
)

// LevelKV persists mappings in a local LevelDB directory
type LevelKV struct {
	db *leveldb.DB
}

// OpenLevelKV opens (or creates) the LevelDB database at path
func OpenLevelKV(path string) (*LevelKV, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open mapping store: %w", err)
	}
	return &LevelKV{db: db}, nil
}

func (l *LevelKV) Get(_ context.Context, key string) (string, bool, error) {
	v, err := l.db.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(v), true, nil
}

func (l *LevelKV) Set(_ context.Context, key, value string) error {
	return l.db.Put([]byte(key), []byte(value), nil)
}

func (l *LevelKV) Close() error {
	return l.db.Close()
}
