package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/probelabs/seqprobe/internal/config"
	"github.com/probelabs/seqprobe/internal/output"
	"github.com/probelabs/seqprobe/internal/store"
)

func newCacheCmd() *cobra.Command {
	var cacheDB string

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the response cache",
	}
	cmd.PersistentFlags().StringVar(&cacheDB, "cache-db", "", "Response cache database path")

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show cache entry counts and size",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCacheStats(cmd.Context(), cmd, cacheDB)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached response",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCacheClear(cmd.Context(), cmd, cacheDB)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "prune",
		Short: "Remove only expired responses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCachePrune(cmd.Context(), cmd, cacheDB)
		},
	})

	return cmd
}

func openCacheFor(cmd *cobra.Command, cacheDB string) (*store.Cache, *output.Writer, error) {
	out := output.New(cmd.OutOrStdout())

	cfg, err := config.Load(".")
	if err != nil {
		out.Errorf("%v", err)
		return nil, out, err
	}
	if cacheDB != "" {
		cfg.Cache.Path = cacheDB
	}

	cache, err := store.OpenCache(cfg.Cache.Path, cfg.CacheTTL())
	if err != nil {
		out.Errorf("%v", err)
		return nil, out, err
	}
	return cache, out, nil
}

func runCacheStats(ctx context.Context, cmd *cobra.Command, cacheDB string) error {
	cache, out, err := openCacheFor(cmd, cacheDB)
	if err != nil {
		return err
	}
	defer cache.Close()

	stats, err := cache.Stats(ctx)
	if err != nil {
		out.Errorf("%v", err)
		return err
	}

	out.Statusf("", "entries: %d", stats.Entries)
	out.Statusf("", "expired: %d", stats.Expired)
	out.Statusf("", "size:    %d bytes", stats.Bytes)
	return nil
}

func runCacheClear(ctx context.Context, cmd *cobra.Command, cacheDB string) error {
	cache, out, err := openCacheFor(cmd, cacheDB)
	if err != nil {
		return err
	}
	defer cache.Close()

	if err := cache.Clear(ctx); err != nil {
		out.Errorf("%v", err)
		return err
	}
	out.Success("cache cleared")
	return nil
}

func runCachePrune(ctx context.Context, cmd *cobra.Command, cacheDB string) error {
	cache, out, err := openCacheFor(cmd, cacheDB)
	if err != nil {
		return err
	}
	defer cache.Close()

	removed, err := cache.Prune(ctx)
	if err != nil {
		out.Errorf("%v", err)
		return err
	}
	out.Successf("removed %d expired entries", removed)
	return nil
}
