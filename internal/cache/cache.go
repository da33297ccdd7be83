// Package cache provides a small byte cache used to memoise external lookups.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"
)

// ErrCacheMiss indicates a cache miss.
var ErrCacheMiss = errors.New("cache miss")

// Client defines the cache interface.
type Client interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Purge removes every entry under namespace and reports how many went.
	Purge(ctx context.Context, namespace string) (int, error)
	Close() error
}

// Key joins key components with ':'.
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

// HashedKey builds a key under namespace whose last component is the
// sha256 of raw, keeping arbitrary user text out of key names.
func HashedKey(namespace, raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return Key(namespace, hex.EncodeToString(sum[:]))
}
