package resolver

import (
	"time"

	"github.com/haukened/sr-dns/internal/dns/domain"
)

// Result is the outcome of one decoded lookup within a batch. Results are
// returned in the same order as the hostnames that produced them.
type Result struct {
	Hostname string
	Records  []string
	Err      error
}

// RawResult is the outcome of one raw lookup within a batch.
type RawResult struct {
	Hostname string
	RDATA    []byte
	Err      error
}

// RaceResult is the outcome of racing all providers for one hostname.
// Provider identifies the winner; Elapsed is the time until its answer
// arrived. On total failure Err carries the last provider error.
type RaceResult struct {
	Records  []string
	Provider domain.Provider
	Elapsed  time.Duration
	Err      error
}

// RawRaceResult is the raw-bytes variant of RaceResult.
type RawRaceResult struct {
	RDATA    []byte
	Provider domain.Provider
	Elapsed  time.Duration
	Err      error
}

// FallbackResult is the outcome of trying providers one at a time in random
// order. Provider identifies the one that answered.
type FallbackResult struct {
	Records  []string
	Provider domain.Provider
	Err      error
}

// RawFallbackResult is the raw-bytes variant of FallbackResult.
type RawFallbackResult struct {
	RDATA    []byte
	Provider domain.Provider
	Err      error
}
