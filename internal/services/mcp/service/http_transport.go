package service

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"

	"github.com/louisbranch/deliberate.thinking/internal/platform/timeouts"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

var listenTCP = net.Listen

const defaultHTTPAddr = "localhost:8081"

// HTTPTransport serves MCP over streamable HTTP alongside health and metrics
// endpoints. Every route shares the Host/Origin guard; only /mcp is rate limited.
type HTTPTransport struct {
	addr         string
	allowedHosts hostAllowlist
	server       *mcp.Server
	limiter      *rate.Limiter
	httpServer   *http.Server
}

// NewHTTPTransport creates an HTTP transport for server. It defaults to
// localhost-only binding unless cfg names another address.
func NewHTTPTransport(cfg Config, server *mcp.Server) *HTTPTransport {
	addr := strings.TrimSpace(cfg.HTTPAddr)
	if addr == "" {
		addr = defaultHTTPAddr
	}
	return &HTTPTransport{
		addr:         addr,
		allowedHosts: newHostAllowlist(cfg.AllowedHosts),
		server:       server,
		limiter:      newRequestLimiter(cfg.RateLimit, cfg.RateBurst),
	}
}

// newRequestLimiter returns nil when limiting is disabled.
func newRequestLimiter(limit float64, burst int) *rate.Limiter {
	if limit <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(limit), burst)
}

// handler builds the route table served by Start.
func (t *HTTPTransport) handler() http.Handler {
	mcpHandler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return t.server
	}, nil)

	mux := http.NewServeMux()
	mux.Handle("/mcp", t.guard(t.rateLimit(mcpHandler)))
	mux.HandleFunc("/mcp/health", t.handleHealth)
	mux.Handle("/metrics", t.guard(promhttp.Handler()))
	return mux
}

// guard rejects requests whose Host or Origin is not allowed.
func (t *HTTPTransport) guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := t.checkRequestOrigin(r); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// rateLimit answers 429 once the token bucket is empty.
func (t *HTTPTransport) rateLimit(next http.Handler) http.Handler {
	if t.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !t.limiter.Allow() {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Start serves HTTP until ctx is canceled, then shuts down gracefully.
func (t *HTTPTransport) Start(ctx context.Context) error {
	if t == nil || t.server == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	listener, err := listenTCP("tcp", t.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", t.addr, err)
	}

	t.httpServer = &http.Server{
		Addr:              t.addr,
		Handler:           t.handler(),
		ReadHeaderTimeout: timeouts.ReadHeader,
	}

	log.Printf("Starting MCP HTTP server on %s", listener.Addr())

	errChan := make(chan error, 1)
	go func() {
		if err := t.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		log.Printf("Shutting down MCP HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := t.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown HTTP server: %w", err)
		}
		<-errChan
		return nil
	case err, ok := <-errChan:
		if !ok {
			return nil
		}
		return fmt.Errorf("HTTP server error: %w", err)
	}
}
