package main

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/jamesainslie/dirsig/pkg/dirsig/config"
	"github.com/jamesainslie/dirsig/pkg/dirsig/hashcache"
	"github.com/jamesainslie/dirsig/pkg/dirsig/hasher"
	"github.com/jamesainslie/dirsig/pkg/dirsig/logging"
	"github.com/jamesainslie/dirsig/pkg/dirsig/manifest"
	"github.com/jamesainslie/dirsig/pkg/dirsig/store"
)

// newBuilder assembles a manifest builder from the effective settings,
// attaching the digest memo cache when enabled. The returned cleanup
// closes the cache and must always be called.
func newBuilder() (*manifest.Builder, func(), error) {
	builder := manifest.NewBuilder(hasher.New())

	if !viper.GetBool("cache.enabled") {
		return builder, func() {}, nil
	}

	cachePath := viper.GetString("cache.path")
	if cachePath == "" {
		cachePath = config.DefaultCachePath()
	}

	cache, err := hashcache.Open(cachePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open digest cache: %w", err)
	}
	builder.Cache = cache

	return builder, func() {
		if err := cache.Close(); err != nil {
			logging.Get("cli").Warn("failed to close digest cache", "error", err)
		}
	}, nil
}

// storeOptions derives persistent store options from the effective
// settings.
func storeOptions(mode store.Mode) (store.Options, error) {
	format, err := store.ParseFormat(viper.GetString("store_format"))
	if err != nil {
		return store.Options{}, err
	}
	return store.Options{Mode: mode, Format: format}, nil
}
