package cmd

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/probelabs/seqprobe/internal/config"
	"github.com/probelabs/seqprobe/internal/index"
	"github.com/probelabs/seqprobe/internal/mcp"
)

func newServeCmd() *cobra.Command {
	var noOnline bool
	var strippedPath string
	var namesPath string
	var watch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over stdio",
		Long: `Expose sequence probing to MCP clients over stdio. Stdout carries
JSON-RPC exclusively; diagnostics go to the log file.

With --watch the offline dump files are reloaded when they change on
disk, so a refreshed download is picked up without a restart.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), noOnline, strippedPath, namesPath, watch)
		},
	}

	cmd.Flags().BoolVar(&noOnline, "no-online", false, "Disable the online source")
	cmd.Flags().StringVar(&strippedPath, "offline-stripped", "", "Path to the stripped dump (may be .gz)")
	cmd.Flags().StringVar(&namesPath, "offline-names", "", "Path to the names dump (may be .gz)")
	cmd.Flags().BoolVar(&watch, "watch", false, "Reload dump files when they change")

	return cmd
}

func runServe(ctx context.Context, noOnline bool, strippedPath, namesPath string, watch bool) error {
	// Stdout is reserved for JSON-RPC from here on.
	cfg, err := config.Load(".")
	if err != nil {
		slog.Error("config_load_failed", slog.String("error", err.Error()))
		return err
	}
	if noOnline {
		cfg.Online.Disabled = true
	}
	if strippedPath != "" {
		cfg.Offline.StrippedPath = strippedPath
	}
	if namesPath != "" {
		cfg.Offline.NamesPath = namesPath
	}
	if watch {
		cfg.Offline.WatchDumps = true
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("config_invalid", slog.String("error", err.Error()))
		return err
	}

	srcs, err := buildSources(cfg)
	if err != nil {
		slog.Error("source_setup_failed", slog.String("error", err.Error()))
		return err
	}
	defer srcs.Close()

	var fetcher mcp.Fetcher
	if srcs.online != nil {
		fetcher = srcs.online
	}

	server, err := mcp.NewServer(cfg.ProbeEngineConfig(), srcs.providers, fetcher)
	if err != nil {
		slog.Error("server_setup_failed", slog.String("error", err.Error()))
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Offline.WatchDumps && srcs.dump != nil {
		w, err := index.NewWatcher(500 * time.Millisecond)
		if err != nil {
			return err
		}
		if err := w.Add(cfg.Offline.StrippedPath, srcs.dump); err != nil {
			return err
		}
		if srcs.names != nil {
			if err := w.Add(cfg.Offline.NamesPath, srcs.names); err != nil {
				return err
			}
		}
		g.Go(func() error {
			err := w.Run(gctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	g.Go(func() error {
		return server.Serve(gctx)
	})

	return g.Wait()
}
