package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	sessionBucket    = "session"
	expiryValueBytes = 8
)

var errBucketMissing = errors.New("session bucket missing")

// boltStore implements a Store backed by BoltDB.
type boltStore struct {
	db       *bolt.DB
	key      []byte
	tokenTTL time.Duration
	now      func() time.Time
}

// openBolt initializes a BoltDB-backed Store and sweeps expired tokens.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(sessionBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	store := &boltStore{
		db:       db,
		key:      []byte(opts.Namespace),
		tokenTTL: opts.TokenTTL,
		now:      time.Now,
	}
	if err := store.cleanupExpired(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sweep expired tokens: %w", err)
	}
	return store, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Get returns the stored token, or "" when absent or expired.
func (b *boltStore) Get() (string, error) {
	if b == nil || b.db == nil {
		return "", nil
	}

	var (
		token   string
		expired bool
	)
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(sessionBucket))
		if bucket == nil {
			return errBucketMissing
		}
		value := bucket.Get(b.key)
		if value == nil {
			return nil
		}
		tok, expiry, ok := decodeToken(value)
		if !ok || !expiry.After(b.now()) {
			expired = true
			return nil
		}
		token = tok
		return nil
	})
	if err != nil {
		return "", err
	}
	if expired {
		return b.dropExpired()
	}
	return token, nil
}

// dropExpired deletes the entry only if it is still expired, returning a token
// written by a concurrent Set instead.
func (b *boltStore) dropExpired() (string, error) {
	var token string
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(sessionBucket))
		if bucket == nil {
			return errBucketMissing
		}
		value := bucket.Get(b.key)
		if value == nil {
			return nil
		}
		if tok, expiry, ok := decodeToken(value); ok && expiry.After(b.now()) {
			token = tok
			return nil
		}
		return bucket.Delete(b.key)
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

// Set stores token with a fresh expiry.
func (b *boltStore) Set(token string) error {
	if b == nil || b.db == nil {
		return nil
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return b.Clear()
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(sessionBucket))
		if bucket == nil {
			return errBucketMissing
		}
		return bucket.Put(b.key, encodeToken(token, b.now().Add(b.tokenTTL)))
	})
}

// Clear removes the token. Clearing an absent token is a no-op.
func (b *boltStore) Clear() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(sessionBucket))
		if bucket == nil {
			return errBucketMissing
		}
		return bucket.Delete(b.key)
	})
}

// cleanupExpired drops expired tokens of every namespace.
func (b *boltStore) cleanupExpired() error {
	now := b.now()
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(sessionBucket))
		if bucket == nil {
			return errBucketMissing
		}

		// Deleting through the cursor while iterating skips entries.
		var stale [][]byte
		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			_, expiry, ok := decodeToken(v)
			if !ok || !expiry.After(now) {
				stale = append(stale, append([]byte(nil), k...))
			}
		}
		for _, k := range stale {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// encodeToken lays out the value as an 8-byte big-endian expiry followed by the token.
func encodeToken(token string, expiry time.Time) []byte {
	buf := make([]byte, expiryValueBytes+len(token))
	binary.BigEndian.PutUint64(buf, uint64(expiry.Unix()))
	copy(buf[expiryValueBytes:], token)
	return buf
}

// decodeToken decodes the token and its expiry from the stored byte slice.
func decodeToken(value []byte) (string, time.Time, bool) {
	if len(value) <= expiryValueBytes {
		return "", time.Time{}, false
	}
	unix := int64(binary.BigEndian.Uint64(value[:expiryValueBytes]))
	if unix <= 0 {
		return "", time.Time{}, false
	}
	return string(value[expiryValueBytes:]), time.Unix(unix, 0), true
}
