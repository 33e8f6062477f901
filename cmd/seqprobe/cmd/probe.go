package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/probelabs/seqprobe/internal/config"
	"github.com/probelabs/seqprobe/internal/output"
	"github.com/probelabs/seqprobe/internal/probe"
	"github.com/probelabs/seqprobe/internal/query"
)

// probeOptions holds CLI flags for probe.
type probeOptions struct {
	termsFile     string
	maxHits       int
	maxQueryTerms int
	timeout       string
	baseURL       string
	cacheDB       string
	cacheTTLDays  int
	noOnline      bool
	strippedPath  string
	namesPath     string
	maxScan       int
	minMatchLen   int
	relax         bool
	relaxMinTerms int
	rank          string
	explain       bool
	strictErrors  bool
	format        string
	jsonOut       string
}

func newProbeCmd() *cobra.Command {
	var opts probeOptions

	cmd := &cobra.Command{
		Use:   "probe <terms>",
		Short: "Identify a sequence from its first terms",
		Long: `Match the given terms against the configured sources and print
ranked candidates.

Terms are comma or space separated. An empty result is a normal outcome,
not an error.

Examples:
  seqprobe probe 0,1,1,2,3,5,8,13
  seqprobe probe --relax --min-match-len 6 "1 4 9 16 25 36"
  seqprobe probe --no-online --offline-stripped ~/oeis/stripped.gz 1,2,4,8
  seqprobe probe --explain --format json 1,4,9,16,24`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(cmd.Context(), cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.termsFile, "terms-file", "", "Read terms from a file instead of arguments")
	cmd.Flags().IntVarP(&opts.maxHits, "max-hits", "n", 10, "Maximum number of ranked hits")
	cmd.Flags().IntVar(&opts.maxQueryTerms, "max-query-terms", 40, "Leading terms sent to the online source")
	cmd.Flags().StringVar(&opts.timeout, "timeout", "10s", "Online request timeout")
	cmd.Flags().StringVar(&opts.baseURL, "base-url", "", "Catalog base URL")
	cmd.Flags().StringVar(&opts.cacheDB, "cache-db", "", "Response cache database path")
	cmd.Flags().IntVar(&opts.cacheTTLDays, "cache-ttl-days", 30, "Response cache TTL in days")
	cmd.Flags().BoolVar(&opts.noOnline, "no-online", false, "Disable the online source")
	cmd.Flags().StringVar(&opts.strippedPath, "offline-stripped", "", "Path to the stripped dump (may be .gz)")
	cmd.Flags().StringVar(&opts.namesPath, "offline-names", "", "Path to the names dump (may be .gz)")
	cmd.Flags().IntVar(&opts.maxScan, "offline-max-scan", 1000, "Cap on pre-filtered dump entries per lookup (0 = unbounded)")
	cmd.Flags().IntVar(&opts.minMatchLen, "min-match-len", 0, "Drop hits with a shorter consecutive match")
	cmd.Flags().BoolVar(&opts.relax, "relax", false, "Retry with a shortened query when nothing matches")
	cmd.Flags().IntVar(&opts.relaxMinTerms, "relax-min-terms", 3, "Minimum query length relaxation may shorten to")
	cmd.Flags().StringVar(&opts.rank, "rank", "strict", "Ranking policy: strict, prefer-early")
	cmd.Flags().BoolVar(&opts.explain, "explain", false, "Report where the query first diverges from the top hit")
	cmd.Flags().BoolVar(&opts.strictErrors, "strict-errors", false, "Fail on source errors instead of degrading")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	cmd.Flags().StringVar(&opts.jsonOut, "json-out", "", "Also write the JSON result to a file")

	return cmd
}

func runProbe(ctx context.Context, cmd *cobra.Command, args []string, opts probeOptions) error {
	out := output.New(cmd.OutOrStdout())

	cfg, err := loadProbeConfig(cmd, opts)
	if err != nil {
		out.Errorf("%v", err)
		return err
	}

	text, err := queryText(args, opts.termsFile)
	if err != nil {
		out.Errorf("%v", err)
		return err
	}
	q, err := query.Parse(text)
	if err != nil {
		out.Errorf("%v", err)
		return err
	}

	srcs, err := buildSources(cfg)
	if err != nil {
		out.Errorf("%v", err)
		return err
	}
	defer srcs.Close()

	engine, err := probe.New(cfg.ProbeEngineConfig(), srcs.providers...)
	if err != nil {
		out.Errorf("%v", err)
		return err
	}

	slog.Info("probe_started",
		slog.Int("query_len", q.Len()),
		slog.Int("sources", len(srcs.providers)))

	res, err := engine.Probe(ctx, q)
	if err != nil {
		out.Errorf("%v", err)
		return err
	}

	if opts.jsonOut != "" {
		if err := writeJSONFile(opts.jsonOut, res); err != nil {
			out.Warningf("cannot write %s: %v", opts.jsonOut, err)
		}
	}

	if opts.format == "json" {
		return out.RenderResultJSON(res)
	}
	out.RenderResult(res)
	return nil
}

// loadProbeConfig layers the probe flags over the file/env configuration.
func loadProbeConfig(cmd *cobra.Command, opts probeOptions) (*config.Config, error) {
	cfg, err := config.Load(".")
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("max-hits") {
		cfg.Probe.MaxHits = opts.maxHits
	}
	if flags.Changed("max-query-terms") {
		cfg.Online.MaxQueryTerms = opts.maxQueryTerms
	}
	if flags.Changed("timeout") {
		cfg.Online.Timeout = opts.timeout
	}
	if flags.Changed("base-url") {
		cfg.Online.BaseURL = opts.baseURL
	}
	if flags.Changed("cache-db") {
		cfg.Cache.Path = opts.cacheDB
	}
	if flags.Changed("cache-ttl-days") {
		cfg.Cache.TTLDays = opts.cacheTTLDays
	}
	if opts.noOnline {
		cfg.Online.Disabled = true
	}
	if flags.Changed("offline-stripped") {
		cfg.Offline.StrippedPath = opts.strippedPath
	}
	if flags.Changed("offline-names") {
		cfg.Offline.NamesPath = opts.namesPath
	}
	if flags.Changed("offline-max-scan") {
		cfg.Offline.MaxScan = opts.maxScan
	}
	if flags.Changed("min-match-len") {
		cfg.Probe.MinMatchLen = opts.minMatchLen
	}
	if opts.relax {
		cfg.Probe.Relax = true
	}
	if flags.Changed("relax-min-terms") {
		cfg.Probe.RelaxMinTerms = opts.relaxMinTerms
	}
	if flags.Changed("rank") {
		cfg.Probe.Rank = opts.rank
	}
	if opts.explain {
		cfg.Probe.Explain = true
	}
	if opts.strictErrors {
		cfg.Probe.StrictErrors = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// writeJSONFile writes the JSON rendering of the result to path.
func writeJSONFile(path string, res *probe.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return output.NewPlain(f).RenderResultJSON(res)
}

// queryText resolves the query text from args or --terms-file.
func queryText(args []string, termsFile string) (string, error) {
	if termsFile != "" {
		data, err := os.ReadFile(termsFile)
		if err != nil {
			return "", fmt.Errorf("cannot read terms file %s: %w", termsFile, err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	if len(args) == 0 {
		return "", fmt.Errorf("no terms given: pass them as arguments or via --terms-file")
	}
	return strings.Join(args, " "), nil
}
