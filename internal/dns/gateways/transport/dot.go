package transport

import (
	"context"
	"crypto/tls"
	"net"
	"strconv"

	"github.com/miekg/dns"

	"github.com/haukened/sr-dns/internal/dns/common/log"
	"github.com/haukened/sr-dns/internal/dns/domain"
	"github.com/haukened/sr-dns/internal/dns/gateways/wire"
)

// dotTransport speaks DNS-over-TLS (RFC 7858): a TLS session to port 853
// carrying length-prefixed DNS messages.
type dotTransport struct {
	core
	dial DialFunc
	// tlsConfig overrides the per-endpoint TLS client config when non-nil.
	tlsConfig *tls.Config
}

// NewDoT creates a DNS-over-TLS transport. A nil dial falls back to a
// standard TCP dialer.
func NewDoT(codec wire.Codec, logger log.Logger, dial DialFunc) *dotTransport {
	if dial == nil {
		dial = (&net.Dialer{Timeout: dialTimeout}).DialContext
	}
	t := &dotTransport{dial: dial}
	t.core = core{codec: codec, logger: logger, proto: domain.ProtocolDoT, x: t}
	return t
}

func (t *dotTransport) exchange(ctx context.Context, msg *dns.Msg, ep domain.Endpoints) (*dns.Msg, error) {
	addr := net.JoinHostPort(ep.DoTHost, strconv.Itoa(int(ep.DoTPort)))

	rawConn, err := t.dial(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	cfg := t.tlsConfig
	if cfg == nil {
		cfg = &tls.Config{
			ServerName: ep.DoTServerName,
			MinVersion: tls.VersionTLS12,
		}
	}
	tlsConn := tls.Client(rawConn, cfg)
	if deadline, ok := ctx.Deadline(); ok {
		_ = tlsConn.SetDeadline(deadline)
	}
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		_ = rawConn.Close()
		return nil, err
	}

	conn := &dns.Conn{Conn: tlsConn}
	defer conn.Close()

	type result struct {
		reply *dns.Msg
		err   error
	}
	resultChan := make(chan result, 1)

	go func() {
		if err := conn.WriteMsg(msg); err != nil {
			resultChan <- result{err: err}
			return
		}
		reply, err := conn.ReadMsg()
		resultChan <- result{reply: reply, err: err}
	}()

	select {
	case res := <-resultChan:
		return res.reply, res.err
	case <-ctx.Done():
		// Unblocks the reader goroutine.
		_ = tlsConn.Close()
		return nil, ctx.Err()
	}
}
