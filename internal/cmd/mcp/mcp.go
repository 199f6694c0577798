// Package mcp parses MCP command flags and selects stdio or HTTP transport.
package mcp

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/deliberate.thinking/internal/platform/cmd"
	"github.com/louisbranch/deliberate.thinking/internal/services/mcp/service"
)

// Config holds MCP command configuration.
type Config struct {
	Transport    string   `env:"DELIBERATE_MCP_TRANSPORT"     envDefault:"stdio"`
	HTTPAddr     string   `env:"DELIBERATE_MCP_HTTP_ADDR"     envDefault:"localhost:8081"`
	AllowedHosts []string `env:"DELIBERATE_MCP_ALLOWED_HOSTS" envSeparator:","`
	RateLimit    float64  `env:"DELIBERATE_MCP_RATE_LIMIT"    envDefault:"20"`
	RateBurst    int      `env:"DELIBERATE_MCP_RATE_BURST"    envDefault:"40"`
}

// ParseConfig parses environ (the process environment when nil) and flags
// into a Config. Flags win over the environment.
func ParseConfig(fs *flag.FlagSet, args []string, environ map[string]string) (Config, error) {
	var cfg Config
	fs.StringVar(&cfg.Transport, "transport", "stdio", "Transport type: stdio or http")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", "localhost:8081", "HTTP server address (for HTTP transport)")
	fs.Float64Var(&cfg.RateLimit, "rate-limit", 20, "HTTP requests per second on /mcp (0 disables)")
	fs.IntVar(&cfg.RateBurst, "rate-burst", 40, "HTTP request burst on /mcp")
	if err := entrypoint.ParseConfigFromArgs(&cfg, environ, fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP server with telemetry configured.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMCP, func(ctx context.Context) error {
		return service.Run(ctx, cfg.serviceConfig())
	})
}

func (c Config) serviceConfig() service.Config {
	return service.Config{
		Transport:    service.TransportKind(c.Transport),
		HTTPAddr:     c.HTTPAddr,
		AllowedHosts: c.AllowedHosts,
		RateLimit:    c.RateLimit,
		RateBurst:    c.RateBurst,
	}
}
