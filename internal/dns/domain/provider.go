package domain

import (
	"fmt"
	"strings"
)

// Provider identifies one of the built-in encrypted DNS providers.
type Provider string

// Built-in provider identifiers.
const (
	ProviderCloudflare Provider = "cloudflare"
	ProviderGoogle     Provider = "google"
	ProviderQuad9      Provider = "quad9"
	ProviderNextDNS    Provider = "nextdns"
)

// allProviders is the fixed provider order used for racing and fallback.
var allProviders = []Provider{
	ProviderCloudflare,
	ProviderGoogle,
	ProviderQuad9,
	ProviderNextDNS,
}

// AllProviders returns a fresh copy of every known provider, in declaration
// order. Callers may reorder the returned slice freely.
func AllProviders() []Provider {
	out := make([]Provider, len(allProviders))
	copy(out, allProviders)
	return out
}

// ParseProvider converts a user-supplied provider name into a Provider.
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", fmt.Errorf("unknown provider: %q", s)
	}
	return p, nil
}

// IsValid returns true if the Provider is one of the built-in providers.
func (p Provider) IsValid() bool {
	_, ok := providerEndpoints[p]
	return ok
}

// String returns the display name of the provider.
func (p Provider) String() string {
	switch p {
	case ProviderCloudflare:
		return "Cloudflare"
	case ProviderGoogle:
		return "Google"
	case ProviderQuad9:
		return "Quad9"
	case ProviderNextDNS:
		return "NextDNS"
	default:
		return string(p)
	}
}

// Endpoints holds the per-transport endpoint configuration for one provider.
// Instances are immutable value types shared freely across goroutines.
type Endpoints struct {
	// DoH (HTTP/2)
	DoHURL string

	// DoT
	DoTHost       string
	DoTPort       uint16
	DoTServerName string

	// DoH3 (HTTP/3 over QUIC)
	DoH3URL        string
	DoH3Host       string
	DoH3Port       uint16
	DoH3ServerName string
}

// providerEndpoints is the compiled-in endpoint table. It is built once at
// init and never mutated.
var providerEndpoints = map[Provider]Endpoints{
	ProviderCloudflare: {
		DoHURL:         "https://cloudflare-dns.com/dns-query",
		DoTHost:        "1.1.1.1",
		DoTPort:        853,
		DoTServerName:  "cloudflare-dns.com",
		DoH3URL:        "https://cloudflare-dns.com/dns-query",
		DoH3Host:       "1.1.1.1",
		DoH3Port:       443,
		DoH3ServerName: "cloudflare-dns.com",
	},
	ProviderGoogle: {
		DoHURL:         "https://dns.google/dns-query",
		DoTHost:        "8.8.8.8",
		DoTPort:        853,
		DoTServerName:  "dns.google",
		DoH3URL:        "https://dns.google/dns-query",
		DoH3Host:       "8.8.8.8",
		DoH3Port:       443,
		DoH3ServerName: "dns.google",
	},
	ProviderQuad9: {
		DoHURL:         "https://dns.quad9.net/dns-query",
		DoTHost:        "9.9.9.9",
		DoTPort:        853,
		DoTServerName:  "dns.quad9.net",
		DoH3URL:        "https://dns.quad9.net/dns-query",
		DoH3Host:       "9.9.9.9",
		DoH3Port:       443,
		DoH3ServerName: "dns.quad9.net",
	},
	ProviderNextDNS: {
		DoHURL:         "https://dns.nextdns.io/dns-query",
		DoTHost:        "45.90.28.0",
		DoTPort:        853,
		DoTServerName:  "dns.nextdns.io",
		DoH3URL:        "https://dns.nextdns.io/dns-query",
		DoH3Host:       "45.90.28.0",
		DoH3Port:       443,
		DoH3ServerName: "dns.nextdns.io",
	},
}

// EndpointsFor returns the endpoint configuration for the given provider.
func EndpointsFor(p Provider) (Endpoints, error) {
	ep, ok := providerEndpoints[p]
	if !ok {
		return Endpoints{}, fmt.Errorf("unknown provider: %q", string(p))
	}
	return ep, nil
}
