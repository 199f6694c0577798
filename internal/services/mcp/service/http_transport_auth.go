package service

import (
	"errors"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
)

var (
	errForeignHost   = errors.New("invalid host")
	errForeignOrigin = errors.New("invalid origin")
)

// hostAllowlist holds lowercase hostnames accepted in addition to loopback.
type hostAllowlist map[string]struct{}

func newHostAllowlist(hosts []string) hostAllowlist {
	allowed := make(hostAllowlist, len(hosts))
	for _, host := range hosts {
		host = strings.ToLower(strings.TrimSpace(host))
		if host != "" {
			allowed[host] = struct{}{}
		}
	}
	return allowed
}

// permits reports whether a Host or Origin authority names loopback or an
// allowlisted hostname. Ports are ignored.
func (a hostAllowlist) permits(authority string) bool {
	name, ok := hostname(authority)
	if !ok {
		return false
	}
	if isLoopbackHost(name) {
		return true
	}
	_, ok = a[strings.ToLower(name)]
	return ok
}

// checkRequestOrigin keeps browsers on other sites from driving the ledger
// through DNS rebinding: Host must be permitted, and so must Origin when sent.
func (t *HTTPTransport) checkRequestOrigin(r *http.Request) error {
	if r == nil || !t.allowedHosts.permits(r.Host) {
		return errForeignHost
	}
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return nil
	}
	parsed, err := url.Parse(origin)
	if err != nil || !t.allowedHosts.permits(parsed.Host) {
		return errForeignOrigin
	}
	return nil
}

func isLoopbackHost(name string) bool {
	switch strings.ToLower(name) {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

// hostname strips the port and IPv6 brackets from an authority. Bare IPv6
// literals pass through unchanged.
func hostname(authority string) (string, bool) {
	authority = strings.TrimSpace(authority)
	switch {
	case authority == "":
		return "", false
	case strings.HasPrefix(authority, "["):
		if name, _, err := net.SplitHostPort(authority); err == nil {
			return name, true
		}
		if strings.HasSuffix(authority, "]") {
			return authority[1 : len(authority)-1], true
		}
		return "", false
	case strings.Count(authority, ":") > 1:
		return authority, true
	case strings.Contains(authority, ":"):
		name, _, err := net.SplitHostPort(authority)
		return name, err == nil
	default:
		return authority, true
	}
}

// handleHealth answers GET /mcp/health with OK.
func (t *HTTPTransport) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := t.checkRequestOrigin(r); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		log.Printf("write health response: %v", err)
	}
}
