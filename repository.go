package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"flavourkitchen/cms"
	"flavourkitchen/cms/cosmic"
	fsstore "flavourkitchen/cms/firestore"
	"flavourkitchen/config"
)

// openRepository returns the content source selected by cfg, or the fixtures
// file when one is given. The returned close func is never nil.
func openRepository(ctx context.Context, cfg *config.Config, fixtures string, log *slog.Logger) (cms.Repository, func() error, error) {
	noop := func() error { return nil }

	if fixtures != "" {
		repo, err := cms.LoadFixtures(fixtures)
		if err != nil {
			return nil, noop, err
		}
		log.Info("serving content from fixtures", "path", fixtures)
		return repo, noop, nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, noop, err
	}

	switch cfg.CMSBackend {
	case config.BackendFirestore:
		store, err := fsstore.Open(ctx, cfg.FirestoreProjectID, log)
		if err != nil {
			return nil, noop, err
		}
		log.Info("serving content from firestore", "project", cfg.FirestoreProjectID)
		return store, store.Close, nil
	case config.BackendCosmic:
		client, err := cosmic.New(cosmic.Config{
			BaseURL:    cfg.CosmicAPIURL,
			BucketSlug: cfg.CosmicBucketSlug,
			ReadKey:    cfg.CosmicReadKey,
			PageSize:   cfg.CosmicPageSize,
			HTTPClient: &http.Client{Timeout: cfg.HTTPTimeout},
			Logger:     log,
		})
		if err != nil {
			return nil, noop, err
		}
		log.Info("serving content from cosmic", "bucket", cfg.CosmicBucketSlug)
		return client, noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown CMS_BACKEND %q", cfg.CMSBackend)
	}
}
