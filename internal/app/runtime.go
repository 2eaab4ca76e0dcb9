package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/samvad-hq/samvad-request-client/internal/config"
	"github.com/samvad-hq/samvad-request-client/internal/logger"
	"github.com/samvad-hq/samvad-request-client/internal/storage"
	"github.com/samvad-hq/samvad-request-client/pkg/httpclient"
	"github.com/samvad-hq/samvad-request-client/pkg/publishers"
)

// Runtime owns the request client together with the token store and the
// eviction publishers it depends on.
type Runtime struct {
	cfg      *config.Config
	log      logger.Logger
	store    storage.Store
	notifier *publishers.Notifier
	client   *httpclient.Client
}

// NewRuntime builds a runtime from config. Publishers are optional.
func NewRuntime(ctx context.Context, cfg *config.Config, log logger.Logger) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := storage.NewStore(cfg.TokenStoreType, cfg.TokenStorePath, storage.Options{
		Namespace: cfg.BaseAPIURL,
		TokenTTL:  cfg.TokenTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("init token store: %w", err)
	}
	log.InfoObj("token store initialized", "token_store_config", map[string]any{
		"type":              cfg.TokenStoreType,
		"path":              cfg.TokenStorePath,
		"token_ttl_seconds": int(cfg.TokenTTL.Seconds()),
	})

	rt := &Runtime{cfg: cfg, log: log, store: store}

	opts := []httpclient.Option{
		httpclient.WithTimeout(cfg.HTTPTimeout),
		httpclient.WithLogger(log),
	}
	if cfg.PublishersFile != "" {
		notifier, err := buildNotifier(ctx, cfg, log)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		rt.notifier = notifier
		opts = append(opts, httpclient.WithEvictionListener(notifier))
	}

	rt.client = httpclient.New(cfg.BaseAPIURL, store, opts...)
	return rt, nil
}

func buildNotifier(ctx context.Context, cfg *config.Config, log logger.Logger) (*publishers.Notifier, error) {
	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	enabled := publisherReg.Enabled()
	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})

	fanout := publishers.NewFanout(pubClients, publishers.WithFanoutLogger(log))
	return publishers.NewNotifier(fanout, cfg.PublishTimeout, log), nil
}

// Client returns the configured request client.
func (r *Runtime) Client() *httpclient.Client { return r.client }

// Tokens returns the token store backing the client.
func (r *Runtime) Tokens() storage.Store { return r.store }

// Close drains pending eviction events, then closes the token store.
func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if r.notifier != nil {
		if err := r.notifier.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publishers: %w", err))
		}
	}
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close token store: %w", err))
		}
	}
	return errors.Join(errs...)
}
