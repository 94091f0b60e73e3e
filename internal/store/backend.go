package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Backend is the raw key-value medium behind the Adapter. Put must replace the whole
// value atomically: a concurrent Get sees either the old or the new bytes, never a mix.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

type BackendKind string

const (
	BackendSQLite BackendKind = "sqlite"
	BackendFile   BackendKind = "file"
	BackendRedis  BackendKind = "redis"
	BackendMemory BackendKind = "memory"
)

var ErrUnknownBackend = errors.New("unknown storage backend")

type Options struct {
	Kind BackendKind
	// Dir is the store directory for the sqlite and file backends.
	Dir string

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string
}

// Open builds the backend described by opts.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch BackendKind(strings.ToLower(strings.TrimSpace(string(opts.Kind)))) {
	case "", BackendSQLite:
		return OpenSQLite(ctx, opts.Dir)
	case BackendFile:
		return NewFileBackend(opts.Dir)
	case BackendRedis:
		return OpenRedis(ctx, RedisOptions{
			Addr:      opts.RedisAddr,
			Password:  opts.RedisPassword,
			DB:        opts.RedisDB,
			KeyPrefix: opts.RedisKeyPrefix,
		})
	case BackendMemory:
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Kind)
	}
}

func ensureDir(dir string) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return "", errors.New("missing store dir")
	}
	dir = filepath.Clean(dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}
