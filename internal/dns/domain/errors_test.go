package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestResolutionError_Is(t *testing.T) {
	cases := []struct {
		err      error
		sentinel error
	}{
		{ConnectionFailure(errors.New("dial tcp: refused")), ErrConnectionFailure},
		{QueryFailure(errors.New("bad rcode")), ErrQueryFailure},
		{NoRecordsFound(), ErrNoRecordsFound},
		{AllProvidersFailed(errors.New("timeout")), ErrAllProvidersFailed},
		{InvalidHostname("not a name"), ErrInvalidHostname},
		{TLSFailure(errors.New("bad cert")), ErrTLSFailure},
		{TransportFailure(502), ErrTransportFailure},
	}
	for _, tc := range cases {
		if !errors.Is(tc.err, tc.sentinel) {
			t.Errorf("errors.Is(%v, %v) = false, want true", tc.err, tc.sentinel)
		}
	}
	// kinds must not cross-match
	if errors.Is(NoRecordsFound(), ErrQueryFailure) {
		t.Error("NoRecordsFound matched ErrQueryFailure")
	}
}

func TestResolutionError_Unwrap(t *testing.T) {
	cause := errors.New("handshake failed")
	err := TLSFailure(fmt.Errorf("connect 1.1.1.1:853: %w", cause))
	if !errors.Is(err, cause) {
		t.Error("wrapped cause not reachable via errors.Is")
	}
}

func TestResolutionError_Error(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{TransportFailure(429), "transport error: HTTP status 429"},
		{NoRecordsFound(), "no records found"},
		{AllProvidersFailed(errors.New("last one")), "all providers failed: last one"},
	}
	for _, tc := range cases {
		if got := tc.err.Error(); got != tc.want {
			t.Errorf("Error() = %q, want %q", got, tc.want)
		}
	}
}
