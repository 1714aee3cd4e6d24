package notify

import (
	"errors"
	"net"
	"net/url"
	"strings"
)

var (
	// ErrInvalidScheme is returned when URL scheme is not HTTPS.
	ErrInvalidScheme = errors.New("only HTTPS allowed")
	// ErrPrivateIP is returned when URL resolves to private IP.
	ErrPrivateIP = errors.New("private IP addresses not allowed")
	// ErrLocalhostBlocked is returned when localhost is used.
	ErrLocalhostBlocked = errors.New("localhost not allowed")
	// ErrInvalidPort is returned when non-standard port is used.
	ErrInvalidPort = errors.New("only port 443 allowed")
	// ErrInvalidURL is returned when URL parsing fails.
	ErrInvalidURL = errors.New("invalid URL format")
	// ErrEmptyHost is returned when URL has no host.
	ErrEmptyHost = errors.New("URL must have a host")
)

var blockedCIDRs = []string{
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"127.0.0.0/8",
	"169.254.0.0/16",
	"0.0.0.0/8",
	"::1/128",
	"fc00::/7",
	"fe80::/10",
}

var blockedNetworks = func() []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(blockedCIDRs))
	for _, cidr := range blockedCIDRs {
		if _, n, err := net.ParseCIDR(cidr); err == nil {
			nets = append(nets, n)
		}
	}
	return nets
}()

// ValidateTargetURL checks the notification URL. Outside development it
// must be HTTPS on 443 and must not point at loopback or private ranges.
// allowInsecure only keeps the URL syntax checks.
func ValidateTargetURL(targetURL string, allowInsecure bool) error {
	parsed, err := url.Parse(targetURL)
	if err != nil {
		return ErrInvalidURL
	}
	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return ErrInvalidURL
	}

	host := parsed.Hostname()
	if host == "" {
		return ErrEmptyHost
	}
	if allowInsecure {
		return nil
	}

	if parsed.Scheme != "https" {
		return ErrInvalidScheme
	}
	if isLocalhostHostname(host) {
		return ErrLocalhostBlocked
	}

	// Resolution failures surface at delivery time instead.
	if ips, err := net.LookupIP(host); err == nil {
		for _, ip := range ips {
			if isBlockedIP(ip) {
				return ErrPrivateIP
			}
		}
	}

	if port := parsed.Port(); port != "" && port != "443" {
		return ErrInvalidPort
	}
	return nil
}

func isLocalhostHostname(host string) bool {
	host = strings.ToLower(host)
	return host == "localhost" ||
		strings.HasSuffix(host, ".localhost") ||
		strings.HasSuffix(host, ".local") ||
		host == "127.0.0.1" ||
		host == "::1"
}

func isBlockedIP(ip net.IP) bool {
	for _, network := range blockedNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// ExtractHost returns the host of targetURL for logging. Paths and queries
// may carry secrets and are never logged.
func ExtractHost(targetURL string) string {
	parsed, err := url.Parse(targetURL)
	if err != nil {
		return "(invalid)"
	}
	return parsed.Host
}
