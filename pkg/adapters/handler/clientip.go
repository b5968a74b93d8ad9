package handler

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ClientIPs works out which address a request came from. Proxy headers are
// only believed when the connection itself comes from a trusted proxy.
type ClientIPs struct {
	trusted []netip.Prefix
}

// NewClientIPs accepts CIDR ranges or single addresses of trusted proxies.
// With none configured only the connection address is used.
func NewClientIPs(proxies []string) (*ClientIPs, error) {
	c := &ClientIPs{}
	for _, p := range proxies {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if prefix, err := netip.ParsePrefix(p); err == nil {
			c.trusted = append(c.trusted, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(p)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: not an address or CIDR", p)
		}
		c.trusted = append(c.trusted, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
	}
	return c, nil
}

// From returns the client address of r. A nil ClientIPs trusts no proxy.
func (c *ClientIPs) From(r *http.Request) string {
	remote := remoteHost(r)
	if !c.isTrusted(remote) {
		return remote
	}

	// Walk X-Forwarded-For from the nearest hop back, skipping our own proxies.
	if fwd := r.Header.Values("X-Forwarded-For"); len(fwd) > 0 {
		hops := strings.Split(strings.Join(fwd, ","), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop == "" {
				continue
			}
			if !c.isTrusted(hop) {
				return hop
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	return remote
}

func (c *ClientIPs) isTrusted(ip string) bool {
	if c == nil || len(c.trusted) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range c.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
