package domain

import (
	"fmt"
	"strings"
)

// Protocol selects which encrypted transport carries a DNS query.
type Protocol string

// Supported transports.
const (
	ProtocolDoH  Protocol = "doh"  // DNS-over-HTTPS (HTTP/2)
	ProtocolDoT  Protocol = "dot"  // DNS-over-TLS
	ProtocolDoH3 Protocol = "doh3" // DNS-over-HTTPS using HTTP/3 (QUIC)
)

// AllProtocols returns every supported protocol.
func AllProtocols() []Protocol {
	return []Protocol{ProtocolDoH, ProtocolDoT, ProtocolDoH3}
}

// ParseProtocol converts a user-supplied protocol name into a Protocol.
func ParseProtocol(s string) (Protocol, error) {
	p := Protocol(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", fmt.Errorf("unknown protocol: %q", s)
	}
	return p, nil
}

// IsValid returns true if the Protocol is one of the supported transports.
func (p Protocol) IsValid() bool {
	switch p {
	case ProtocolDoH, ProtocolDoT, ProtocolDoH3:
		return true
	default:
		return false
	}
}

// String returns the display name of the protocol.
func (p Protocol) String() string {
	switch p {
	case ProtocolDoH:
		return "DoH"
	case ProtocolDoT:
		return "DoT"
	case ProtocolDoH3:
		return "DoH3"
	default:
		return string(p)
	}
}
