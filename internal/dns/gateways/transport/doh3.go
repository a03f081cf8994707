package transport

import (
	"context"
	"crypto/tls"
	"net/http"

	"github.com/miekg/dns"
	"github.com/quic-go/quic-go/http3"

	"github.com/haukened/sr-dns/internal/dns/common/log"
	"github.com/haukened/sr-dns/internal/dns/domain"
	"github.com/haukened/sr-dns/internal/dns/gateways/wire"
)

// doh3Transport speaks DNS-over-HTTPS (RFC 8484) over HTTP/3 (QUIC). The
// application layer is identical to DoH; only the HTTP transport differs.
type doh3Transport struct {
	core
	client    *http.Client
	transport *http3.Transport
}

// NewDoH3 creates a DNS-over-HTTPS transport using HTTP/3. QUIC mandates
// TLS 1.3 as the minimum protocol version.
func NewDoH3(codec wire.Codec, logger log.Logger) *doh3Transport {
	h3 := &http3.Transport{
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS13,
		},
	}
	t := &doh3Transport{
		transport: h3,
		client: &http.Client{
			Transport: h3,
			Timeout:   dialTimeout + readTimeout,
		},
	}
	t.core = core{codec: codec, logger: logger, proto: domain.ProtocolDoH3, x: t}
	return t
}

func (t *doh3Transport) exchange(ctx context.Context, msg *dns.Msg, ep domain.Endpoints) (*dns.Msg, error) {
	return postWireQuery(ctx, t.client, ep.DoH3URL, msg)
}

// Close shuts down the QUIC transport and its connections.
func (t *doh3Transport) Close() error {
	return t.transport.Close()
}
