package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/miekg/dns"
	"golang.org/x/net/http2"

	"github.com/haukened/sr-dns/internal/dns/common/log"
	"github.com/haukened/sr-dns/internal/dns/domain"
	"github.com/haukened/sr-dns/internal/dns/gateways/wire"
)

// dohTransport speaks DNS-over-HTTPS (RFC 8484) using HTTP POST over HTTP/2.
type dohTransport struct {
	core
	client *http.Client
}

// NewDoH creates a DNS-over-HTTPS transport. The underlying HTTP client pools
// connections across queries to the same provider.
func NewDoH(codec wire.Codec, logger log.Logger) *dohTransport {
	t := &dohTransport{
		client: newHTTP2Client(),
	}
	t.core = core{codec: codec, logger: logger, proto: domain.ProtocolDoH, x: t}
	return t
}

// newHTTP2Client builds an http.Client backed by an HTTP/2-capable transport.
func newHTTP2Client() *http.Client {
	tr := &http.Transport{
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		ForceAttemptHTTP2:   true,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout: dialTimeout,
		}).DialContext,
	}
	// Registers the HTTP/2 protocol explicitly so h2 is negotiated even when
	// the transport is later cloned or reconfigured.
	_ = http2.ConfigureTransport(tr)
	return &http.Client{
		Transport: tr,
		Timeout:   dialTimeout + readTimeout,
	}
}

func (t *dohTransport) exchange(ctx context.Context, msg *dns.Msg, ep domain.Endpoints) (*dns.Msg, error) {
	return postWireQuery(ctx, t.client, ep.DoHURL, msg)
}

// Close releases idle pooled connections.
func (t *dohTransport) Close() error {
	if tr, ok := t.client.Transport.(*http.Transport); ok {
		tr.CloseIdleConnections()
	}
	return nil
}

// postWireQuery performs one RFC 8484 POST exchange: the query is sent in
// binary wire format and the reply is unpacked from the response body.
// Shared by the HTTP/2 and HTTP/3 transports.
func postWireQuery(ctx context.Context, client *http.Client, url string, msg *dns.Msg) (*dns.Msg, error) {
	packed, err := msg.Pack()
	if err != nil {
		return nil, domain.QueryFailure(fmt.Errorf("pack query: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(packed))
	if err != nil {
		return nil, domain.QueryFailure(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", contentType)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		// Drain so the connection returns to the pool.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.TransportFailure(resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	reply := new(dns.Msg)
	if err := reply.Unpack(body); err != nil {
		return nil, domain.QueryFailure(fmt.Errorf("unpack response: %w", err))
	}
	return reply, nil
}
