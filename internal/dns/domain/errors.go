package domain

import "fmt"

// ErrorKind classifies a ResolutionError. The set is closed: every failure
// surfaced by the resolver or a transport belongs to exactly one kind.
type ErrorKind string

const (
	// KindConnectionFailure covers transport-level connect problems.
	KindConnectionFailure ErrorKind = "connection failed"
	// KindQueryFailure covers failures after the transport accepted the
	// connection but the DNS exchange itself failed.
	KindQueryFailure ErrorKind = "query failed"
	// KindNoRecordsFound means the exchange succeeded but the answer
	// section was empty.
	KindNoRecordsFound ErrorKind = "no records found"
	// KindAllProvidersFailed means a race exhausted every provider.
	KindAllProvidersFailed ErrorKind = "all providers failed"
	// KindInvalidHostname means the input name is malformed.
	KindInvalidHostname ErrorKind = "invalid hostname"
	// KindTLSFailure covers TLS handshake and verification problems.
	KindTLSFailure ErrorKind = "TLS error"
	// KindTransportFailure means an HTTP-based transport returned a
	// non-success status.
	KindTransportFailure ErrorKind = "transport error"
)

// ResolutionError is the error type produced by transports and the
// resolution orchestrator. Kind identifies the failure class; Err, when
// non-nil, is the wrapped cause. Status is set only for KindTransportFailure.
type ResolutionError struct {
	Kind   ErrorKind
	Err    error
	Status int
}

func (e *ResolutionError) Error() string {
	switch {
	case e.Kind == KindTransportFailure && e.Err == nil:
		return fmt.Sprintf("%s: HTTP status %d", e.Kind, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return string(e.Kind)
	}
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Is matches any ResolutionError of the same kind, so callers can use
// errors.Is with the Err* sentinels below.
func (e *ResolutionError) Is(target error) bool {
	t, ok := target.(*ResolutionError)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is matching by kind.
var (
	ErrConnectionFailure  = &ResolutionError{Kind: KindConnectionFailure}
	ErrQueryFailure       = &ResolutionError{Kind: KindQueryFailure}
	ErrNoRecordsFound     = &ResolutionError{Kind: KindNoRecordsFound}
	ErrAllProvidersFailed = &ResolutionError{Kind: KindAllProvidersFailed}
	ErrInvalidHostname    = &ResolutionError{Kind: KindInvalidHostname}
	ErrTLSFailure         = &ResolutionError{Kind: KindTLSFailure}
	ErrTransportFailure   = &ResolutionError{Kind: KindTransportFailure}
)

// ConnectionFailure wraps err as a transport-level connection error.
func ConnectionFailure(err error) error {
	return &ResolutionError{Kind: KindConnectionFailure, Err: err}
}

// QueryFailure wraps err as an application-level query error.
func QueryFailure(err error) error {
	return &ResolutionError{Kind: KindQueryFailure, Err: err}
}

// NoRecordsFound reports an empty answer section.
func NoRecordsFound() error {
	return &ResolutionError{Kind: KindNoRecordsFound}
}

// AllProvidersFailed reports race exhaustion; last is the most recent
// provider failure observed. Earlier failures are not retained.
func AllProvidersFailed(last error) error {
	return &ResolutionError{Kind: KindAllProvidersFailed, Err: last}
}

// InvalidHostname reports a malformed input name.
func InvalidHostname(name string) error {
	return &ResolutionError{Kind: KindInvalidHostname, Err: fmt.Errorf("%q", name)}
}

// TLSFailure wraps err as a TLS handshake or verification error.
func TLSFailure(err error) error {
	return &ResolutionError{Kind: KindTLSFailure, Err: err}
}

// TransportFailure reports a non-success HTTP status from a DoH transport.
func TransportFailure(status int) error {
	return &ResolutionError{Kind: KindTransportFailure, Status: status}
}
