// Package storage provides the durable key/value medium the client keeps its
// session in, the equivalent of browser local storage.
package storage

import (
	"context"
	"fmt"
)

const (
	// TokenKey holds the raw bearer token attached to outgoing requests.
	TokenKey = "auth_token"
	// SessionKey holds the persisted session snapshot.
	SessionKey = "auth-storage"
)

// Storage is a synchronous string key/value store. Removing an absent key
// is not an error.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

type Options struct {
	Driver        string
	File          string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// Open builds the Storage selected by opts.Driver.
func Open(ctx context.Context, opts Options) (Storage, error) {
	switch opts.Driver {
	case "", "file":
		return OpenFile(opts.File)
	case "memory":
		return NewMemory(), nil
	case "redis":
		return OpenRedis(ctx, RedisOptions{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
			Prefix:   opts.RedisPrefix,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}
