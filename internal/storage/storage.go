package storage

import (
	"fmt"
	"strings"
	"time"
)

// Package storage persists the client's auth token between runs.

// Store holds the current auth token. An empty token means no session.
type Store interface {
	Close() error
	Get() (string, error)
	Set(token string) error
	Clear() error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	// Namespace separates tokens issued by different backends.
	Namespace string
	TokenTTL  time.Duration
}

const (
	defaultNamespace = "default"
	defaultTokenTTL  = 7 * 24 * time.Hour
)

// Supported store types.
const (
	TypeBBolt  = "bbolt"
	TypeMemory = "memory"
	TypeNone   = "none"
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", TypeNone, "disabled":
		return noopStore{}, nil
	case TypeMemory:
		return newMemoryStore(opts), nil
	case TypeBBolt:
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	opts.Namespace = strings.TrimSpace(opts.Namespace)
	if opts.Namespace == "" {
		opts.Namespace = defaultNamespace
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = defaultTokenTTL
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error         { return nil }
func (noopStore) Get() (string, error) { return "", nil }
func (noopStore) Set(string) error     { return nil }
func (noopStore) Clear() error         { return nil }
