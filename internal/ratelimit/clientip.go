package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// GetClientIP extracts the client IP from a request. Forwarding headers are
// read only when trustProxy is set and the peer itself is on a private
// network; then the rightmost public address in X-Forwarded-For wins,
// followed by X-Real-IP. Otherwise the peer address is used.
func GetClientIP(r *http.Request, trustProxy bool) string {
	peer := remoteHost(r.RemoteAddr)
	if !trustProxy || !isPrivateIP(peer) {
		return peer
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		for i := len(parts) - 1; i >= 0; i-- {
			ip := strings.TrimSpace(parts[i])
			if ip != "" && !isPrivateIP(ip) {
				return ip
			}
		}
		if last := strings.TrimSpace(parts[len(parts)-1]); last != "" {
			return last
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return peer
}

// remoteHost strips the port from a RemoteAddr value.
func remoteHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err == nil {
		return host
	}
	if net.ParseIP(remoteAddr) != nil {
		return remoteAddr
	}
	if idx := strings.LastIndex(remoteAddr, ":"); idx != -1 {
		if candidate := remoteAddr[:idx]; net.ParseIP(candidate) != nil {
			return candidate
		}
	}
	return remoteAddr
}

var privateNetworks = mustParseCIDRs(
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"127.0.0.0/8",
	"::1/128",
	"fc00::/7",
	"fe80::/10",
)

func mustParseCIDRs(cidrs ...string) []*net.IPNet {
	networks := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic("invalid private CIDR: " + cidr)
		}
		networks = append(networks, network)
	}
	return networks
}

// isPrivateIP treats IPv4-mapped IPv6 addresses like their IPv4 form.
func isPrivateIP(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}
	if ipv4 := ip.To4(); ipv4 != nil {
		ip = ipv4
	}
	for _, network := range privateNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
