// Package net provides networking utilities for Playlistarr.
package net

import (
	"net"
	"net/url"
	"strings"

	"playlistarr/internal/utils/logging"
)

// IsPrivateNetwork reports whether the host of a URL or host:port string
// points into a LAN. Self-hosted media servers commonly run on such
// addresses with self-signed certificates.
func IsPrivateNetwork(rawURL string) bool {
	host := hostOf(rawURL)
	if host == "" {
		return false
	}

	if strings.EqualFold(host, "localhost") {
		return true
	}

	if ip := net.ParseIP(host); ip != nil {
		return privateIP(ip)
	}
	return resolvesPrivate(host)
}

// hostOf extracts the bare hostname from a URL, host:port pair or plain host.
func hostOf(raw string) string {
	if u, err := url.Parse(raw); err == nil && u.Hostname() != "" {
		return u.Hostname()
	}
	if h, _, err := net.SplitHostPort(raw); err == nil {
		return h
	}
	return raw
}

// privateIP covers loopback, RFC 1918/4193 and link-local ranges.
func privateIP(ip net.IP) bool {
	return ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast()
}

// resolvesPrivate looks the hostname up and checks the resolved addresses.
func resolvesPrivate(host string) bool {
	ips, err := net.LookupIP(host)
	if err != nil {
		logging.D(2, "Could not resolve host %q: %v", host, err)
		return false
	}

	for _, ip := range ips {
		if privateIP(ip) {
			logging.D(1, "Host %q resolved to private address %q", host, ip)
			return true
		}
	}
	return false
}
