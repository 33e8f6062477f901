package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/probelabs/seqprobe/internal/config"
	"github.com/probelabs/seqprobe/internal/output"
)

func newFetchCmd() *cobra.Command {
	var format string
	var baseURL string
	var cacheDB string

	cmd := &cobra.Command{
		Use:   "fetch <identifier>",
		Short: "Fetch one sequence by its catalog identifier",
		Long: `Fetch a single sequence by identifier from the online catalog,
falling back to the offline dump when the online source is disabled.

Examples:
  seqprobe fetch A000045
  seqprobe fetch A000290 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd.Context(), cmd, args[0], format, baseURL, cacheDB)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Catalog base URL")
	cmd.Flags().StringVar(&cacheDB, "cache-db", "", "Response cache database path")

	return cmd
}

func runFetch(ctx context.Context, cmd *cobra.Command, id, format, baseURL, cacheDB string) error {
	out := output.New(cmd.OutOrStdout())

	cfg, err := config.Load(".")
	if err != nil {
		out.Errorf("%v", err)
		return err
	}
	if baseURL != "" {
		cfg.Online.BaseURL = baseURL
	}
	if cmd.Flags().Changed("cache-db") {
		cfg.Cache.Path = cacheDB
	}

	srcs, err := buildSources(cfg)
	if err != nil {
		out.Errorf("%v", err)
		return err
	}
	defer srcs.Close()

	if srcs.online != nil {
		c, err := srcs.online.FetchByID(ctx, id)
		if err != nil {
			out.Errorf("%v", err)
			return err
		}
		if format == "json" {
			return out.RenderCandidateJSON(c)
		}
		out.RenderCandidate(c)
		return nil
	}

	if srcs.offline != nil {
		c, ok := srcs.offline.FetchByID(id)
		if !ok {
			err := fmt.Errorf("%s not found in the offline dump", id)
			out.Errorf("%v", err)
			return err
		}
		if format == "json" {
			return out.RenderCandidateJSON(c)
		}
		out.RenderCandidate(c)
		return nil
	}

	err = fmt.Errorf("no candidate source configured")
	out.Errorf("%v", err)
	return err
}
