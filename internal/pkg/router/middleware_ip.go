package router

import (
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/shandysiswandi/skillbridge/internal/pkg/config"
)

func trustedProxies(cfg config.Config) []netip.Prefix {
	if cfg == nil {
		return nil
	}

	var out []netip.Prefix
	for _, raw := range cfg.GetArray("app.server.http.trusted_proxies") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if !strings.Contains(raw, "/") {
			if addr, err := netip.ParseAddr(raw); err == nil {
				out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
				continue
			}
		}
		p, err := netip.ParsePrefix(raw)
		if err != nil {
			slog.Warn("ignoring invalid trusted proxy", "value", raw)
			continue
		}
		out = append(out, p.Masked())
	}
	return out
}

// middlewareIP rewrites RemoteAddr to the client address. Forwarding
// headers are honored only when the direct peer is a trusted proxy.
func middlewareIP(trusted []netip.Prefix) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ip := clientIP(r, trusted); ip != "" {
				r.RemoteAddr = ip
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request, trusted []netip.Prefix) string {
	peer := r.RemoteAddr
	if host, _, err := net.SplitHostPort(peer); err == nil {
		peer = host
	}
	addr, err := netip.ParseAddr(peer)
	if err != nil {
		return ""
	}
	if !isTrusted(addr, trusted) {
		return addr.String()
	}

	for _, h := range []string{"True-Client-IP", "X-Real-IP"} {
		if v, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get(h))); err == nil {
			return v.String()
		}
	}

	// Walk X-Forwarded-For from the right, skipping our own proxies.
	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		v, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			break
		}
		if !isTrusted(v, trusted) {
			return v.String()
		}
	}

	return addr.String()
}

func isTrusted(addr netip.Addr, trusted []netip.Prefix) bool {
	addr = addr.Unmap()
	for _, p := range trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
