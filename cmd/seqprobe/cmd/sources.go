package cmd

import (
	"log/slog"

	"github.com/probelabs/seqprobe/internal/config"
	"github.com/probelabs/seqprobe/internal/index"
	"github.com/probelabs/seqprobe/internal/probe"
	"github.com/probelabs/seqprobe/internal/provider"
	"github.com/probelabs/seqprobe/internal/store"
)

// sources bundles the candidate providers built from one configuration,
// plus the handles that need closing when the command finishes.
type sources struct {
	providers []probe.Provider
	online    *provider.Online
	offline   *provider.Offline
	dump      *index.Dump
	names     *index.Names
	cache     *store.Cache
}

// buildSources constructs providers per the configuration. The online
// source gets the persistent response cache; the offline source loads
// the dump files up front.
func buildSources(cfg *config.Config) (*sources, error) {
	s := &sources{}

	if !cfg.Online.Disabled {
		if cfg.Cache.Path != "" {
			cache, err := store.OpenCache(cfg.Cache.Path, cfg.CacheTTL())
			if err != nil {
				// A broken cache degrades to uncached lookups.
				slog.Warn("cache_unavailable", slog.String("error", err.Error()))
			} else {
				s.cache = cache
			}
		}

		timeout, err := cfg.OnlineTimeout()
		if err != nil {
			s.Close()
			return nil, err
		}
		s.online = provider.NewOnline(provider.OnlineConfig{
			BaseURL:       cfg.Online.BaseURL,
			MaxQueryTerms: cfg.Online.MaxQueryTerms,
			Timeout:       timeout,
			UserAgent:     cfg.Online.UserAgent,
		}, s.cache)
		s.providers = append(s.providers, s.online)
	}

	if cfg.Offline.StrippedPath != "" {
		dump, err := index.LoadStripped(cfg.Offline.StrippedPath)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.dump = dump

		if cfg.Offline.NamesPath != "" {
			names, err := index.LoadNames(cfg.Offline.NamesPath)
			if err != nil {
				s.Close()
				return nil, err
			}
			s.names = names
		}

		s.offline = provider.NewOffline(dump, s.names, cfg.Offline.MaxScan)
		s.providers = append(s.providers, s.offline)
	}

	return s, nil
}

// Close releases the cache handle.
func (s *sources) Close() {
	if s.cache != nil {
		_ = s.cache.Close()
	}
}
