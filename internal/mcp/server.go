package mcp

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/slateworks/dimsim/internal/logging"
)

// Server wraps the MCP SDK server around dimsim's tool handlers. Every
// tool is a stateless wrapper over the core operations: the scenario a
// tool works on is fully determined by its arguments.
type Server struct {
	server *sdk.Server
	log    *slog.Logger
	audit  *logging.AuditLogger
}

// Config holds server configuration.
type Config struct {
	Name    string // server name (e.g. "dimsim")
	Version string // server version

	// Logger receives operational output. Stdout belongs to the MCP
	// transport, so a nil Logger defaults to info-level stderr.
	Logger *slog.Logger

	// Audit optionally records tool invocations; nil disables the trail.
	Audit *logging.AuditLogger
}

// NewServer creates an MCP server exposing the dimsim tools.
func NewServer(cfg *Config) (*Server, error) {
	log := cfg.Logger
	if log == nil {
		log = logging.NewLogger("info", os.Stderr)
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &sdk.ServerOptions{
		InitializedHandler: func(ctx context.Context, req *sdk.InitializedRequest) {
			// Client initialized, ready to serve
		},
	})

	s := &Server{
		server: mcpServer,
		log:    log,
		audit:  cfg.Audit,
	}

	if err := s.registerTools(); err != nil {
		return nil, err
	}

	return s, nil
}

// Run starts the MCP server over stdio transport. This blocks until the
// client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		<-sigChan
		cancel()
	}()

	return s.server.Run(ctx, &sdk.StdioTransport{})
}

// RunOn serves a single MCP session over the given transport. It exists
// so tests and embedders can drive the server without stdio.
func (s *Server) RunOn(ctx context.Context, transport sdk.Transport) error {
	return s.server.Run(ctx, transport)
}

// Close releases server resources.
func (s *Server) Close() error {
	s.audit.Close()
	return nil
}
