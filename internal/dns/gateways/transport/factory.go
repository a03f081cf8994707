package transport

import (
	"fmt"

	"github.com/haukened/sr-dns/internal/dns/common/log"
	"github.com/haukened/sr-dns/internal/dns/domain"
	"github.com/haukened/sr-dns/internal/dns/gateways/wire"
	"github.com/haukened/sr-dns/internal/dns/services/resolver"
)

// New creates a transport for the given protocol.
func New(protocol domain.Protocol, codec wire.Codec, logger log.Logger) (resolver.Transport, error) {
	switch protocol {
	case domain.ProtocolDoH:
		return NewDoH(codec, logger), nil
	case domain.ProtocolDoT:
		return NewDoT(codec, logger, nil), nil
	case domain.ProtocolDoH3:
		return NewDoH3(codec, logger), nil
	default:
		return nil, fmt.Errorf("unsupported protocol: %s", protocol)
	}
}

// All creates one transport per supported protocol, keyed by protocol.
func All(codec wire.Codec, logger log.Logger) map[domain.Protocol]resolver.Transport {
	return map[domain.Protocol]resolver.Transport{
		domain.ProtocolDoH:  NewDoH(codec, logger),
		domain.ProtocolDoT:  NewDoT(codec, logger, nil),
		domain.ProtocolDoH3: NewDoH3(codec, logger),
	}
}
