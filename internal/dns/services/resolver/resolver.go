// Package resolver contains the core resolution orchestration: single
// lookups, ordered batch fan-out, provider racing, and shuffled sequential
// fallback. The orchestrator's only external dependency is the Transport
// interface; retry and provider selection policy live here, never in the
// transports.
package resolver

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/haukened/sr-dns/internal/dns/common/clock"
	"github.com/haukened/sr-dns/internal/dns/common/log"
	"github.com/haukened/sr-dns/internal/dns/domain"
)

// Error message constants for consistent error handling
const (
	errNoTransports       = "no transports provided"
	errUnknownProtocol    = "no transport registered for protocol %q"
	errAttemptPanicked    = "resolution attempt panicked: %v"
	errNoProvidersToRace  = "no providers to race"
	errNoProvidersToChain = "no providers to try"
)

// Resolver orchestrates encrypted DNS lookups across providers and
// transports. All methods are safe for concurrent use.
type Resolver struct {
	transports map[domain.Protocol]Transport
	cache      Cache
	clock      clock.Clock
	logger     log.Logger
	providers  []domain.Provider
	shuffle    func([]domain.Provider)
}

// Options defines configuration parameters for the Resolver.
type Options struct {
	// required parameters
	Transports map[domain.Protocol]Transport
	Logger     log.Logger
	// Cache is optional; nil disables answer caching.
	Cache Cache
	// options to inject for testing purposes
	Clock     clock.Clock
	Providers []domain.Provider
	Shuffle   func([]domain.Provider)
}

// New creates a new Resolver with the specified options. Returns an error if
// no transports are provided. Providers defaults to the full built-in
// provider list and Shuffle to a uniform random permutation.
func New(opts Options) (*Resolver, error) {
	if len(opts.Transports) == 0 {
		return nil, fmt.Errorf(errNoTransports)
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNoopLogger()
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	if opts.Providers == nil {
		opts.Providers = domain.AllProviders()
	}
	if opts.Shuffle == nil {
		opts.Shuffle = func(ps []domain.Provider) {
			rand.Shuffle(len(ps), func(i, j int) {
				ps[i], ps[j] = ps[j], ps[i]
			})
		}
	}
	return &Resolver{
		transports: opts.Transports,
		cache:      opts.Cache,
		clock:      opts.Clock,
		logger:     opts.Logger,
		providers:  opts.Providers,
		shuffle:    opts.Shuffle,
	}, nil
}

// CacheKey builds the cache key for a question against a specific provider
// and transport. Answers from different providers or transports never
// collide.
func CacheKey(hostname string, rtype domain.RRType, provider domain.Provider, protocol domain.Protocol) string {
	return fmt.Sprintf("%s|%s|%s|%s", strings.ToLower(hostname), rtype, string(provider), string(protocol))
}

// transportFor selects the transport registered for the protocol.
func (r *Resolver) transportFor(protocol domain.Protocol) (Transport, error) {
	t, ok := r.transports[protocol]
	if !ok {
		return nil, domain.QueryFailure(fmt.Errorf(errUnknownProtocol, protocol))
	}
	return t, nil
}

// Resolve performs exactly one lookup against the given provider and
// protocol. No retry. Decoded answers are served from and stored into the
// cache when one is configured.
func (r *Resolver) Resolve(ctx context.Context, hostname string, rtype domain.RRType, provider domain.Provider, protocol domain.Protocol) ([]string, error) {
	t, err := r.transportFor(protocol)
	if err != nil {
		return nil, err
	}

	key := CacheKey(hostname, rtype, provider, protocol)
	if r.cache != nil {
		if records, ok := r.cache.Get(key); ok {
			r.logger.Debug(map[string]any{
				"hostname": hostname,
				"type":     rtype.String(),
				"provider": string(provider),
			}, "Answer served from cache")
			return records, nil
		}
	}

	records, err := t.Query(ctx, hostname, rtype, provider)
	if err != nil {
		return nil, err
	}
	if r.cache != nil {
		r.cache.Set(key, records)
	}
	return records, nil
}

// ResolveRaw performs exactly one lookup and returns the raw RDATA bytes of
// the first answer. Raw answers bypass the cache.
func (r *Resolver) ResolveRaw(ctx context.Context, hostname string, rtype domain.RRType, provider domain.Provider, protocol domain.Protocol) ([]byte, error) {
	t, err := r.transportFor(protocol)
	if err != nil {
		return nil, err
	}
	return t.QueryRaw(ctx, hostname, rtype, provider)
}

// ResolveBatch resolves every hostname concurrently against the same
// provider and protocol. The returned slice is index-aligned with hostnames;
// one hostname's failure never affects another's result.
func (r *Resolver) ResolveBatch(ctx context.Context, hostnames []string, rtype domain.RRType, provider domain.Provider, protocol domain.Protocol) []Result {
	return fanOut(hostnames, func(hostname string) Result {
		records, err := safeAttempt(func() ([]string, error) {
			return r.Resolve(ctx, hostname, rtype, provider, protocol)
		})
		return Result{Hostname: hostname, Records: records, Err: err}
	})
}

// ResolveBatchRaw is the raw-bytes variant of ResolveBatch.
func (r *Resolver) ResolveBatchRaw(ctx context.Context, hostnames []string, rtype domain.RRType, provider domain.Provider, protocol domain.Protocol) []RawResult {
	return fanOut(hostnames, func(hostname string) RawResult {
		rdata, err := safeAttempt(func() ([]byte, error) {
			return r.ResolveRaw(ctx, hostname, rtype, provider, protocol)
		})
		return RawResult{Hostname: hostname, RDATA: rdata, Err: err}
	})
}

// Race queries every provider concurrently with the same protocol and
// returns the first successful answer. Losing attempts are cancelled and
// their outcomes discarded. When every provider fails the error is
// AllProvidersFailed carrying only the last observed failure.
func (r *Resolver) Race(ctx context.Context, hostname string, rtype domain.RRType, protocol domain.Protocol) RaceResult {
	records, winner, elapsed, err := race(ctx, r, func(ctx context.Context, t Transport, p domain.Provider) ([]string, error) {
		return t.Query(ctx, hostname, rtype, p)
	}, protocol, hostname, rtype)
	return RaceResult{Records: records, Provider: winner, Elapsed: elapsed, Err: err}
}

// RaceRaw is the raw-bytes variant of Race.
func (r *Resolver) RaceRaw(ctx context.Context, hostname string, rtype domain.RRType, protocol domain.Protocol) RawRaceResult {
	rdata, winner, elapsed, err := race(ctx, r, func(ctx context.Context, t Transport, p domain.Provider) ([]byte, error) {
		return t.QueryRaw(ctx, hostname, rtype, p)
	}, protocol, hostname, rtype)
	return RawRaceResult{RDATA: rdata, Provider: winner, Elapsed: elapsed, Err: err}
}

// RaceBatch races providers independently for every hostname; all races run
// concurrently and results are index-aligned with hostnames.
func (r *Resolver) RaceBatch(ctx context.Context, hostnames []string, rtype domain.RRType, protocol domain.Protocol) []RaceResult {
	return fanOut(hostnames, func(hostname string) RaceResult {
		return r.Race(ctx, hostname, rtype, protocol)
	})
}

// RaceBatchRaw is the raw-bytes variant of RaceBatch.
func (r *Resolver) RaceBatchRaw(ctx context.Context, hostnames []string, rtype domain.RRType, protocol domain.Protocol) []RawRaceResult {
	return fanOut(hostnames, func(hostname string) RawRaceResult {
		return r.RaceRaw(ctx, hostname, rtype, protocol)
	})
}

// ResolveWithFallback shuffles the provider list into a fresh random order
// and tries providers one at a time, stopping at the first success. On
// exhaustion it returns the error from the last attempted provider.
func (r *Resolver) ResolveWithFallback(ctx context.Context, hostname string, rtype domain.RRType, protocol domain.Protocol) FallbackResult {
	records, used, err := fallback(ctx, r, func(ctx context.Context, t Transport, p domain.Provider) ([]string, error) {
		return t.Query(ctx, hostname, rtype, p)
	}, protocol, hostname, rtype)
	return FallbackResult{Records: records, Provider: used, Err: err}
}

// ResolveWithFallbackRaw is the raw-bytes variant of ResolveWithFallback.
func (r *Resolver) ResolveWithFallbackRaw(ctx context.Context, hostname string, rtype domain.RRType, protocol domain.Protocol) RawFallbackResult {
	rdata, used, err := fallback(ctx, r, func(ctx context.Context, t Transport, p domain.Provider) ([]byte, error) {
		return t.QueryRaw(ctx, hostname, rtype, p)
	}, protocol, hostname, rtype)
	return RawFallbackResult{RDATA: rdata, Provider: used, Err: err}
}

// FallbackBatch applies ResolveWithFallback per hostname, all hostnames
// concurrently; results are index-aligned with hostnames.
func (r *Resolver) FallbackBatch(ctx context.Context, hostnames []string, rtype domain.RRType, protocol domain.Protocol) []FallbackResult {
	return fanOut(hostnames, func(hostname string) FallbackResult {
		return r.ResolveWithFallback(ctx, hostname, rtype, protocol)
	})
}

// FallbackBatchRaw is the raw-bytes variant of FallbackBatch.
func (r *Resolver) FallbackBatchRaw(ctx context.Context, hostnames []string, rtype domain.RRType, protocol domain.Protocol) []RawFallbackResult {
	return fanOut(hostnames, func(hostname string) RawFallbackResult {
		return r.ResolveWithFallbackRaw(ctx, hostname, rtype, protocol)
	})
}

// fanOut runs fn once per input in its own goroutine and reassembles results
// by original index, not completion order.
func fanOut[In, Out any](inputs []In, fn func(In) Out) []Out {
	results := make([]Out, len(inputs))
	var wg sync.WaitGroup
	for i, in := range inputs {
		wg.Add(1)
		go func(i int, in In) {
			defer wg.Done()
			results[i] = fn(in)
		}(i, in)
	}
	wg.Wait()
	return results
}

// safeAttempt runs fn, converting a panic into a QueryFailure so one crashed
// unit cannot take down its batch.
func safeAttempt[T any](fn func() (T, error)) (result T, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			var zero T
			result = zero
			err = domain.QueryFailure(fmt.Errorf(errAttemptPanicked, rec))
		}
	}()
	return fn()
}

// race launches one attempt per provider and returns the first success.
// The shared context is cancelled as soon as a winner is found, tearing down
// the losers' in-flight network operations. Only the last failure is
// retained; earlier ones are visible in debug logs only.
func race[T any](ctx context.Context, r *Resolver, attempt func(context.Context, Transport, domain.Provider) (T, error), protocol domain.Protocol, hostname string, rtype domain.RRType) (T, domain.Provider, time.Duration, error) {
	var zero T

	t, err := r.transportFor(protocol)
	if err != nil {
		return zero, "", 0, err
	}
	if len(r.providers) == 0 {
		return zero, "", 0, domain.AllProvidersFailed(fmt.Errorf(errNoProvidersToRace))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		payload  T
		provider domain.Provider
		err      error
	}
	// Buffered so abandoned losers never block on send.
	outcomes := make(chan outcome, len(r.providers))

	start := r.clock.Now()
	for _, provider := range r.providers {
		go func(p domain.Provider) {
			payload, err := safeAttempt(func() (T, error) {
				return attempt(ctx, t, p)
			})
			outcomes <- outcome{payload: payload, provider: p, err: err}
		}(provider)
	}

	var lastErr error
	for range r.providers {
		o := <-outcomes
		if o.err == nil {
			elapsed := r.clock.Now().Sub(start)
			r.logger.Debug(map[string]any{
				"hostname": hostname,
				"type":     rtype.String(),
				"provider": string(o.provider),
				"elapsed":  elapsed.String(),
			}, "Race won")
			return o.payload, o.provider, elapsed, nil
		}
		r.logger.Debug(map[string]any{
			"hostname": hostname,
			"type":     rtype.String(),
			"provider": string(o.provider),
			"error":    o.err.Error(),
		}, "Race attempt failed")
		lastErr = o.err
	}
	return zero, "", 0, domain.AllProvidersFailed(lastErr)
}

// fallback tries providers sequentially in a fresh random order, stopping at
// the first success. The last attempt's error is returned unwrapped.
func fallback[T any](ctx context.Context, r *Resolver, attempt func(context.Context, Transport, domain.Provider) (T, error), protocol domain.Protocol, hostname string, rtype domain.RRType) (T, domain.Provider, error) {
	var zero T

	t, err := r.transportFor(protocol)
	if err != nil {
		return zero, "", err
	}
	if len(r.providers) == 0 {
		return zero, "", domain.QueryFailure(fmt.Errorf(errNoProvidersToChain))
	}

	order := make([]domain.Provider, len(r.providers))
	copy(order, r.providers)
	r.shuffle(order)

	var lastErr error
	for _, provider := range order {
		payload, err := safeAttempt(func() (T, error) {
			return attempt(ctx, t, provider)
		})
		if err == nil {
			return payload, provider, nil
		}
		r.logger.Debug(map[string]any{
			"hostname": hostname,
			"type":     rtype.String(),
			"provider": string(provider),
			"error":    err.Error(),
		}, "Provider failed, falling back to next")
		lastErr = err
	}
	return zero, "", lastErr
}
