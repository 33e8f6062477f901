package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/probelabs/seqprobe/internal/config"
	"github.com/probelabs/seqprobe/internal/index"
	"github.com/probelabs/seqprobe/internal/output"
)

// namesOptions holds CLI flags for names.
type namesOptions struct {
	namesPath string
	indexDir  string
	limit     int
	rebuild   bool
}

func newNamesCmd() *cobra.Command {
	var opts namesOptions

	cmd := &cobra.Command{
		Use:   "names <text>",
		Short: "Full-text search over sequence names",
		Long: `Search sequence names with a full-text index built from the names
dump. The first run builds the index; later runs reuse it unless
--rebuild is given.

Examples:
  seqprobe names "fibonacci"
  seqprobe names --offline-names ~/oeis/names.gz --rebuild "prime gaps"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNames(cmd.Context(), cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringVar(&opts.namesPath, "offline-names", "", "Path to the names dump (may be .gz)")
	cmd.Flags().StringVar(&opts.indexDir, "index-dir", "", "Directory for the full-text index")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 10, "Maximum number of results")
	cmd.Flags().BoolVar(&opts.rebuild, "rebuild", false, "Rebuild the index from the names dump")

	return cmd
}

func runNames(ctx context.Context, cmd *cobra.Command, text string, opts namesOptions) error {
	out := output.New(cmd.OutOrStdout())

	cfg, err := config.Load(".")
	if err != nil {
		out.Errorf("%v", err)
		return err
	}
	if opts.namesPath != "" {
		cfg.Offline.NamesPath = opts.namesPath
	}
	if opts.indexDir != "" {
		cfg.Offline.IndexDir = opts.indexDir
	}

	idx, err := index.OpenNamesIndex(cfg.Offline.IndexDir)
	if err != nil {
		out.Errorf("%v", err)
		return err
	}
	defer idx.Close()

	count, err := idx.DocCount()
	if err != nil {
		out.Errorf("%v", err)
		return err
	}

	if opts.rebuild || count == 0 {
		if cfg.Offline.NamesPath == "" {
			err := fmt.Errorf("the index is empty and no names dump is configured")
			out.Errorf("%v", err)
			out.Status("", "set --offline-names or offline.names_path in the config")
			return err
		}
		names, err := index.LoadNames(cfg.Offline.NamesPath)
		if err != nil {
			out.Errorf("%v", err)
			return err
		}
		out.Statusf("🔧", "indexing %d names", names.Len())
		if err := idx.Build(names); err != nil {
			out.Errorf("%v", err)
			return err
		}
	}

	hits, err := idx.Search(text, opts.limit)
	if err != nil {
		out.Errorf("%v", err)
		return err
	}
	out.RenderNameHits(hits)
	return nil
}
