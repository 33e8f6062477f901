package mcp

import (
	"context"
	"errors"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/probelabs/seqprobe/internal/probe"
	"github.com/probelabs/seqprobe/internal/query"
	"github.com/probelabs/seqprobe/pkg/version"
)

// Fetcher retrieves a single sequence by its catalog identifier.
type Fetcher interface {
	FetchByID(ctx context.Context, id string) (probe.Candidate, error)
}

// Server exposes sequence probing over MCP.
type Server struct {
	baseCfg   probe.Config
	providers []probe.Provider
	fetcher   Fetcher
	logger    *slog.Logger
	mcp       *mcp.Server
}

// NewServer creates the MCP server over the given sources. fetcher may be
// nil when the online source is disabled; lookup_identifier then reports
// the source as unavailable.
func NewServer(baseCfg probe.Config, providers []probe.Provider, fetcher Fetcher) (*Server, error) {
	if len(providers) == 0 {
		return nil, errors.New("at least one provider is required")
	}

	s := &Server{
		baseCfg:   baseCfg,
		providers: providers,
		fetcher:   fetcher,
		logger:    slog.Default(),
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    "seqprobe",
			Version: version.Version,
		},
		nil, // capabilities are inferred from registered tools
	)
	s.registerTools()

	return s, nil
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Info returns the server name and version.
func (s *Server) Info() (name, ver string) {
	return "seqprobe", version.Version
}

// registerTools registers all tools with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "probe_sequence",
		Description: "Identify an integer sequence. Matches the given terms against the sequence catalog and returns ranked candidates with match quality, offset, and an optional divergence explanation.",
	}, s.probeHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "lookup_identifier",
		Description: "Fetch one sequence by its catalog identifier (e.g. A000045), returning its name and leading terms.",
	}, s.lookupHandler)

	s.logger.Info("MCP tools registered", slog.Int("count", 2))
}

// probeHandler is the MCP SDK handler for the probe_sequence tool.
func (s *Server) probeHandler(ctx context.Context, _ *mcp.CallToolRequest, input ProbeInput) (
	*mcp.CallToolResult,
	ProbeOutput,
	error,
) {
	if input.Terms == "" {
		return nil, ProbeOutput{}, NewInvalidParamsError("terms parameter is required")
	}

	q, err := query.Parse(input.Terms)
	if err != nil {
		return nil, ProbeOutput{}, MapError(err)
	}

	cfg := s.baseCfg
	if input.MaxHits > 0 {
		cfg.MaxHits = input.MaxHits
	}
	if input.MinMatchLen > 0 {
		cfg.MinMatchLen = input.MinMatchLen
	}
	if input.Rank != "" {
		rank, ok := probe.ParseRankPolicy(input.Rank)
		if !ok {
			return nil, ProbeOutput{}, NewInvalidParamsError("rank must be strict or prefer-early")
		}
		cfg.Rank = rank
	}
	if input.Relax {
		cfg.Relax = true
	}
	if input.Explain {
		cfg.Explain = true
	}

	engine, err := probe.New(cfg, s.providers...)
	if err != nil {
		return nil, ProbeOutput{}, MapError(err)
	}

	res, err := engine.Probe(ctx, q)
	if err != nil {
		return nil, ProbeOutput{}, MapError(err)
	}

	s.logger.Debug("probe_sequence",
		slog.Int("query_len", q.Len()),
		slog.Int("hits", len(res.Hits)),
		slog.Bool("relaxed", res.Relaxed))

	return nil, toProbeOutput(res), nil
}

// lookupHandler is the MCP SDK handler for the lookup_identifier tool.
func (s *Server) lookupHandler(ctx context.Context, _ *mcp.CallToolRequest, input LookupInput) (
	*mcp.CallToolResult,
	LookupOutput,
	error,
) {
	if input.ID == "" {
		return nil, LookupOutput{}, NewInvalidParamsError("id parameter is required")
	}
	if s.fetcher == nil {
		return nil, LookupOutput{}, &MCPError{
			Code:    ErrCodeProviderUnavailable,
			Message: "identifier lookup needs the online source, which is disabled",
		}
	}

	c, err := s.fetcher.FetchByID(ctx, input.ID)
	if err != nil {
		return nil, LookupOutput{}, MapError(err)
	}

	return nil, LookupOutput{ID: c.ID, Name: c.Name, Terms: c.Terms}, nil
}

// Serve runs the server over stdio until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("Starting MCP server", slog.String("transport", "stdio"))

	err := s.mcp.Run(ctx, &mcp.StdioTransport{})
	if err != nil && err != context.Canceled {
		s.logger.Error("MCP server stopped with error", slog.String("error", err.Error()))
		return err
	}
	s.logger.Info("MCP server stopped gracefully")
	return nil
}
