package http

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ProxyTrust decides whether forwarding headers on a request can be believed.
// Only peers inside one of the configured prefixes may set X-Forwarded-For or
// X-Real-IP.
type ProxyTrust struct {
	prefixes []netip.Prefix
}

// NewProxyTrust parses CIDR ranges of trusted reverse proxies.
func NewProxyTrust(cidrs []string) (*ProxyTrust, error) {
	pt := &ProxyTrust{}
	for _, c := range cidrs {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		prefix, err := netip.ParsePrefix(c)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", c, err)
		}
		pt.prefixes = append(pt.prefixes, prefix.Masked())
	}
	return pt, nil
}

// ClientIP returns the address of the caller. A nil ProxyTrust trusts nobody.
// X-Forwarded-For is walked from the right and the first hop outside the
// trusted prefixes wins, since only the entries our own proxies appended can
// be believed. X-Real-IP is consulted only when X-Forwarded-For is absent.
func (pt *ProxyTrust) ClientIP(r *http.Request) string {
	peer := peerAddr(r)
	if pt == nil || !pt.trusts(peer) {
		return peer
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		client := peer
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			addr, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
			if err != nil {
				break
			}
			client = addr.Unmap().String()
			if !pt.trustsAddr(addr) {
				break
			}
		}
		return client
	}
	if addr, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return addr.Unmap().String()
	}
	return peer
}

func (pt *ProxyTrust) trusts(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	return pt.trustsAddr(addr)
}

func (pt *ProxyTrust) trustsAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, p := range pt.prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func peerAddr(r *http.Request) string {
	if r.RemoteAddr == "" {
		return "unknown"
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
