package service

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func newTestTransport(t *testing.T, cfg Config) *HTTPTransport {
	t.Helper()
	server := mcp.NewServer(&mcp.Implementation{Name: "test", Version: "v0"}, nil)
	return NewHTTPTransport(cfg, server)
}

func TestNewHTTPTransportDefaults(t *testing.T) {
	transport := newTestTransport(t, Config{})
	if transport.addr != "localhost:8081" {
		t.Fatalf("expected default addr, got %q", transport.addr)
	}
	if transport.limiter != nil {
		t.Fatal("expected rate limiting disabled for zero limit")
	}

	limited := newTestTransport(t, Config{HTTPAddr: "127.0.0.1:9000", RateLimit: 5, RateBurst: 0})
	if limited.addr != "127.0.0.1:9000" {
		t.Fatalf("unexpected addr %q", limited.addr)
	}
	if limited.limiter == nil || limited.limiter.Burst() != 1 {
		t.Fatal("expected limiter with minimum burst 1")
	}
}

func TestCheckRequestOrigin(t *testing.T) {
	transport := newTestTransport(t, Config{AllowedHosts: []string{" Example.com ", ""}})

	tests := []struct {
		name    string
		host    string
		origin  string
		wantErr string
	}{
		{name: "localhost", host: "localhost:8081"},
		{name: "ipv4 loopback", host: "127.0.0.1"},
		{name: "ipv6 loopback", host: "[::1]:8081"},
		{name: "configured host", host: "example.com:443"},
		{name: "configured origin", host: "localhost", origin: "https://example.com"},
		{name: "remote host", host: "evil.test", wantErr: "invalid host"},
		{name: "empty host", host: "", wantErr: "invalid host"},
		{name: "remote origin", host: "localhost", origin: "http://evil.test", wantErr: "invalid origin"},
		{name: "opaque origin", host: "localhost", origin: "null", wantErr: "invalid origin"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/mcp/health", nil)
			req.Host = tc.host
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			err := transport.checkRequestOrigin(req)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || err.Error() != tc.wantErr {
				t.Fatalf("expected %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestHostname(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{in: "localhost:80", want: "localhost", wantOK: true},
		{in: "[::1]", want: "::1", wantOK: true},
		{in: "::1", want: "::1", wantOK: true},
		{in: "[::1", wantOK: false},
		{in: "  ", wantOK: false},
	}
	for _, tc := range tests {
		got, ok := hostname(tc.in)
		if ok != tc.wantOK || got != tc.want {
			t.Errorf("hostname(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestHandlerHealth(t *testing.T) {
	handler := newTestTransport(t, Config{}).handler()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/mcp/health", nil)
	req.Host = "localhost"
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Fatalf("expected 200 OK, got %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/mcp/health", nil)
	req.Host = "localhost"
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestHandlerRejectsForeignHost(t *testing.T) {
	handler := newTestTransport(t, Config{}).handler()

	for _, path := range []string{"/mcp", "/mcp/health", "/metrics"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Host = "evil.test"
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, rec.Code)
		}
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	handler := newTestTransport(t, Config{}).handler()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Host = "localhost"
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "deliberate_branches") {
		t.Fatal("expected deliberate_branches in metrics output")
	}
}

func TestHandlerRateLimitsMCP(t *testing.T) {
	handler := newTestTransport(t, Config{RateLimit: 0.001, RateBurst: 1}).handler()

	// The first request spends the only token; its MCP status is irrelevant.
	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/mcp", nil)
	req.Host = "localhost"
	handler.ServeHTTP(first, req)
	if first.Code == http.StatusTooManyRequests {
		t.Fatal("expected first request to pass the limiter")
	}

	second := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/mcp", nil)
	req.Host = "localhost"
	handler.ServeHTTP(second, req)
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", second.Code)
	}

	// Health checks bypass the limiter.
	health := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/mcp/health", nil)
	req.Host = "localhost"
	handler.ServeHTTP(health, req)
	if health.Code != http.StatusOK {
		t.Fatalf("expected health 200, got %d", health.Code)
	}
}

func TestStartServesAndStops(t *testing.T) {
	addrs := make(chan string, 1)
	original := listenTCP
	listenTCP = func(network, _ string) (net.Listener, error) {
		listener, err := net.Listen(network, "127.0.0.1:0")
		if err == nil {
			addrs <- listener.Addr().String()
		}
		return listener, err
	}
	t.Cleanup(func() { listenTCP = original })

	transport := newTestTransport(t, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	startErr := make(chan error, 1)
	go func() {
		startErr <- transport.Start(ctx)
	}()

	var addr string
	select {
	case addr = <-addrs:
	case <-time.After(2 * time.Second):
		t.Fatal("server did not start listening")
	}

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + addr + "/mcp/health")
	if err != nil {
		t.Fatalf("health request: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	client.CloseIdleConnections()
	if resp.StatusCode != http.StatusOK || string(body) != "OK" {
		t.Fatalf("expected 200 OK, got %d %q", resp.StatusCode, body)
	}

	cancel()
	select {
	case err := <-startErr:
		if err != nil {
			t.Fatalf("start returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}

func TestStartReportsListenError(t *testing.T) {
	original := listenTCP
	listenTCP = func(string, string) (net.Listener, error) {
		return nil, errors.New("address in use")
	}
	t.Cleanup(func() { listenTCP = original })

	err := newTestTransport(t, Config{}).Start(context.Background())
	if err == nil || !strings.Contains(err.Error(), "address in use") {
		t.Fatalf("expected listen error, got %v", err)
	}
}

func TestStartRequiresServer(t *testing.T) {
	if err := NewHTTPTransport(Config{}, nil).Start(context.Background()); err == nil {
		t.Fatal("expected error for missing MCP server")
	}
}

func TestHostAllowlist(t *testing.T) {
	allowed := newHostAllowlist([]string{" Docs.Example ", "", "  "})
	if len(allowed) != 1 {
		t.Fatalf("expected one entry, got %v", allowed)
	}
	for _, authority := range []string{"docs.example", "DOCS.example:8443", "localhost:1", "[::1]:80"} {
		if !allowed.permits(authority) {
			t.Errorf("expected %q to be permitted", authority)
		}
	}
	for _, authority := range []string{"example", "docs.example.evil", "", "[::1"} {
		if allowed.permits(authority) {
			t.Errorf("expected %q to be rejected", authority)
		}
	}
}
