// Package transport implements the encrypted DNS client transports: DoH
// (RFC 8484 over HTTP/2), DoT (RFC 7858), and DoH3 (RFC 8484 over HTTP/3).
// Each transport performs a single query/response exchange against one
// provider endpoint and classifies network failures into domain errors.
package transport

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"time"

	"github.com/miekg/dns"

	"github.com/haukened/sr-dns/internal/dns/common/log"
	"github.com/haukened/sr-dns/internal/dns/domain"
	"github.com/haukened/sr-dns/internal/dns/gateways/wire"
	"github.com/haukened/sr-dns/internal/dns/services/resolver"
)

const (
	// dialTimeout bounds connection establishment to a provider.
	dialTimeout = 2 * time.Second
	// readTimeout bounds waiting for a response once connected.
	readTimeout = 2 * time.Second
	// maxResponseSize caps the DNS response body read from a provider (64 KiB).
	maxResponseSize = 64 * 1024
	// contentType is the MIME type for DNS wire-format messages (RFC 8484).
	contentType = "application/dns-message"
)

// DialFunc establishes a network connection. Injectable for tests.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// exchanger performs one wire-format DNS exchange against a provider
// endpoint. Each protocol implements it once; query decoding is shared.
type exchanger interface {
	exchange(ctx context.Context, msg *dns.Msg, ep domain.Endpoints) (*dns.Msg, error)
}

// core holds the collaborators shared by every transport implementation and
// provides the common query flow: build, exchange, decode.
type core struct {
	codec  wire.Codec
	logger log.Logger
	proto  domain.Protocol
	x      exchanger
}

// Protocol reports which encrypted transport this instance speaks.
func (c *core) Protocol() domain.Protocol {
	return c.proto
}

// Query resolves hostname/rtype against the provider and returns the decoded
// presentation strings of the answer records.
func (c *core) Query(ctx context.Context, hostname string, rtype domain.RRType, provider domain.Provider) ([]string, error) {
	resp, err := c.roundTrip(ctx, hostname, rtype, provider)
	if err != nil {
		return nil, err
	}
	return c.codec.DecodeRecords(resp)
}

// QueryRaw resolves hostname/rtype against the provider and returns the raw
// RDATA bytes of the first answer record.
func (c *core) QueryRaw(ctx context.Context, hostname string, rtype domain.RRType, provider domain.Provider) ([]byte, error) {
	resp, err := c.roundTrip(ctx, hostname, rtype, provider)
	if err != nil {
		return nil, err
	}
	return c.codec.ExtractRDATA(resp)
}

func (c *core) roundTrip(ctx context.Context, hostname string, rtype domain.RRType, provider domain.Provider) (*dns.Msg, error) {
	msg, err := c.codec.NewQuery(hostname, rtype)
	if err != nil {
		return nil, err
	}
	ep, err := domain.EndpointsFor(provider)
	if err != nil {
		return nil, domain.QueryFailure(err)
	}

	start := time.Now()
	resp, err := c.x.exchange(ctx, msg, ep)
	if err != nil {
		c.logger.Debug(map[string]any{
			"protocol": string(c.proto),
			"provider": string(provider),
			"hostname": hostname,
			"type":     rtype.String(),
			"error":    err.Error(),
		}, "Exchange failed")
		return nil, classify(err)
	}

	c.logger.Debug(map[string]any{
		"protocol": string(c.proto),
		"provider": string(provider),
		"hostname": hostname,
		"type":     rtype.String(),
		"elapsed":  time.Since(start).String(),
	}, "Exchange completed")
	return resp, nil
}

// classify maps a transport-level error onto the domain error taxonomy.
// Certificate problems become TLS failures, everything else that happens
// before a response arrives is a connection failure. Errors already carrying
// a domain kind pass through unchanged.
func classify(err error) error {
	var resErr *domain.ResolutionError
	if errors.As(err, &resErr) {
		return err
	}

	var certErr *tls.CertificateVerificationError
	var unknownAuthErr x509.UnknownAuthorityError
	var hostnameErr x509.HostnameError
	var certInvalidErr x509.CertificateInvalidError
	if errors.As(err, &certErr) ||
		errors.As(err, &unknownAuthErr) ||
		errors.As(err, &hostnameErr) ||
		errors.As(err, &certInvalidErr) {
		return domain.TLSFailure(err)
	}

	return domain.ConnectionFailure(err)
}

var (
	_ resolver.Transport = (*dohTransport)(nil)
	_ resolver.Transport = (*dotTransport)(nil)
	_ resolver.Transport = (*doh3Transport)(nil)
)
