// Package fetcher retrieves raw article HTML over HTTP with retry, circuit
// breaking, size limiting, and SSRF-safe URL validation.
package fetcher

import (
	"errors"
	"fmt"
	"net"
	"net/url"
)

var (
	// ErrInvalidURL indicates a URL that cannot be fetched at all: bad
	// syntax, a non-http scheme, or an empty hostname.
	ErrInvalidURL = errors.New("invalid url")

	// ErrPrivateIP indicates a hostname resolving to a private, loopback,
	// or link-local address while DenyPrivateIPs is on.
	ErrPrivateIP = errors.New("url resolves to private address")

	// ErrBodyTooLarge indicates a response body exceeding MaxBodySize.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrTooManyRedirects indicates a redirect chain past MaxRedirects.
	ErrTooManyRedirects = errors.New("too many redirects")
)

// validateURL checks a URL before any request is made. Only http and https
// are allowed; with denyPrivateIPs the hostname is resolved and every
// address checked against private ranges.
func validateURL(urlStr string, denyPrivateIPs bool) error {
	u, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("%w: parse error: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q not allowed", ErrInvalidURL, u.Scheme)
	}
	hostname := u.Hostname()
	if hostname == "" {
		return fmt.Errorf("%w: empty hostname", ErrInvalidURL)
	}

	if !denyPrivateIPs {
		return nil
	}

	ips, err := net.LookupIP(hostname)
	if err != nil {
		return fmt.Errorf("%w: dns lookup failed for %s: %v", ErrInvalidURL, hostname, err)
	}
	for _, ip := range ips {
		if isPrivateIP(ip) {
			return fmt.Errorf("%w: %s resolves to %s", ErrPrivateIP, hostname, ip)
		}
	}
	return nil
}

// isPrivateIP reports whether an address is loopback, private, or
// link-local, for both IPv4 and IPv6.
func isPrivateIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast()
}
