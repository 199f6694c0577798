package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/louisbranch/deliberate.thinking/internal/platform/branding"
	"github.com/louisbranch/deliberate.thinking/internal/services/mcp/domain"
	"github.com/louisbranch/deliberate.thinking/internal/services/mcp/ledger"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// TransportKind identifies the MCP transport implementation.
type TransportKind string

const (
	// TransportStdio uses standard input/output for MCP.
	TransportStdio TransportKind = "stdio"
	// TransportHTTP runs MCP over streamable HTTP for remote clients.
	TransportHTTP TransportKind = "http"
)

// Config configures the MCP server.
type Config struct {
	Transport TransportKind
	// HTTPAddr is the listen address for the HTTP transport. Defaults to localhost:8081.
	HTTPAddr string
	// AllowedHosts extends the loopback-only Host/Origin allowlist.
	AllowedHosts []string
	// RateLimit is the sustained HTTP requests per second; zero disables limiting.
	RateLimit float64
	RateBurst int
}

// Server hosts the MCP server and the thought ledger it mutates.
type Server struct {
	mcpServer *mcp.Server
	ledger    *ledger.Ledger
}

// New creates an MCP server with an empty thought ledger whose gauges track
// every accepted submission.
func New() (*Server, error) {
	return newServer(ledger.New(ledger.WithProjectionObserver(domain.ObserveProjection)), log.Printf)
}

// newServer registers tool and resource handlers once against a single
// ledger shared by every session of this process.
func newServer(l *ledger.Ledger, logf domain.Logf) (*Server, error) {
	if l == nil {
		return nil, fmt.Errorf("thought ledger is required")
	}
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: branding.AppName, Version: branding.Version}, &mcp.ServerOptions{
		CompletionHandler:  completionHandler,
		SubscribeHandler:   resourceSubscribeHandler,
		UnsubscribeHandler: resourceUnsubscribeHandler,
	})

	server := &Server{mcpServer: mcpServer, ledger: l}
	resourceNotifier := func(ctx context.Context, uri string) {
		if strings.TrimSpace(uri) == "" {
			return
		}
		if ctx == nil {
			ctx = context.Background()
		}
		if err := mcpServer.ResourceUpdated(ctx, &mcp.ResourceUpdatedNotificationParams{URI: uri}); err != nil {
			log.Printf("mcp resource updated notify failed: uri=%s err=%v", uri, err)
		}
	}

	for _, module := range newMCPRegistrationModules(server, resourceNotifier, logf) {
		if err := module.register(mcpServerRegistrationAdapter{server: mcpServer}); err != nil {
			return nil, fmt.Errorf("register MCP module %q: %w", module.name, err)
		}
	}

	return server, nil
}

// completionHandler answers completion/complete with no suggestions; the
// server exposes no prompts or resource templates to complete.
func completionHandler(context.Context, *mcp.CompleteRequest) (*mcp.CompleteResult, error) {
	return &mcp.CompleteResult{
		Completion: mcp.CompletionResultDetails{
			Values: []string{},
		},
	}, nil
}

// resourceSubscribeHandler accepts resource subscriptions with a valid URI.
func resourceSubscribeHandler(_ context.Context, req *mcp.SubscribeRequest) error {
	if req == nil || req.Params == nil || strings.TrimSpace(req.Params.URI) == "" {
		return fmt.Errorf("resource uri is required")
	}
	return nil
}

// resourceUnsubscribeHandler accepts resource unsubscriptions with a valid URI.
func resourceUnsubscribeHandler(_ context.Context, req *mcp.UnsubscribeRequest) error {
	if req == nil || req.Params == nil || strings.TrimSpace(req.Params.URI) == "" {
		return fmt.Errorf("resource uri is required")
	}
	return nil
}

// Run is the service entrypoint for MCP and blocks until context cancellation.
// Both transports serve the same ledger-backed handlers.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}

	switch cfg.Transport {
	case TransportStdio:
		return runWithTransport(ctx, &mcp.StdioTransport{})
	case TransportHTTP:
		return runWithHTTPTransport(ctx, cfg)
	default:
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}
}

// runWithHTTPTransport creates a server and serves it over HTTP until ctx ends.
func runWithHTTPTransport(ctx context.Context, cfg Config) error {
	server, err := New()
	if err != nil {
		return err
	}
	return NewHTTPTransport(cfg, server.mcpServer).Start(ctx)
}

// Serve starts the MCP server on stdio and blocks until it stops or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

// serveWithTransport starts the MCP server using the provided transport.
// Cancellation is a clean shutdown, not an error.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

// runWithTransport creates a server and serves it over the provided transport.
func runWithTransport(ctx context.Context, transport mcp.Transport) error {
	server, err := New()
	if err != nil {
		return err
	}
	return server.serveWithTransport(ctx, transport)
}
