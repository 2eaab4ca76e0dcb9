package httpclient

import (
	"context"

	"github.com/samvad-hq/samvad-request-client/internal/domain"
)

// TokenStore exposes the persisted auth token to the client.
// An empty token means the request goes out anonymously.
type TokenStore interface {
	Get() (string, error)
	Clear() error
}

// EvictionListener is notified after the client evicted the stored token.
type EvictionListener interface {
	TokenEvicted(ctx context.Context, ev domain.Eviction)
}

// Logger defines the logging surface the client relies on.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) InfoObj(string, string, interface{})  {}
func (noopLogger) DebugObj(string, string, interface{}) {}
func (noopLogger) WarnObj(string, string, interface{})  {}
func (noopLogger) ErrorObj(string, string, interface{}) {}

type noopTokens struct{}

func (noopTokens) Get() (string, error) { return "", nil }
func (noopTokens) Clear() error         { return nil }

type noopListener struct{}

func (noopListener) TokenEvicted(context.Context, domain.Eviction) {}
