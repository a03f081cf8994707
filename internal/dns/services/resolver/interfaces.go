package resolver

import (
	"context"

	"github.com/haukened/sr-dns/internal/dns/domain"
)

// Transport performs a single encrypted DNS exchange against one provider.
// Implementations handle all network protocol details; the service layer only
// sees decoded answers or raw RDATA bytes.
type Transport interface {
	// Query returns the decoded presentation strings of the answer records.
	Query(ctx context.Context, hostname string, rtype domain.RRType, provider domain.Provider) ([]string, error)

	// QueryRaw returns the raw RDATA bytes of the first answer record.
	QueryRaw(ctx context.Context, hostname string, rtype domain.RRType, provider domain.Provider) ([]byte, error)

	// Protocol reports which encrypted transport this instance speaks.
	Protocol() domain.Protocol
}

// Cache stores decoded answer sets keyed by question, provider, and protocol.
type Cache interface {
	Get(key string) ([]string, bool)
	Set(key string, records []string)
}
