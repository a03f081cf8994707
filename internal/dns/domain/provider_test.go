package domain

import (
	"strings"
	"testing"
)

func TestAllProviders(t *testing.T) {
	providers := AllProviders()
	if len(providers) != 4 {
		t.Fatalf("AllProviders() returned %d providers, want 4", len(providers))
	}
	// returned slice must be a copy the caller may mutate
	providers[0] = Provider("mutated")
	if AllProviders()[0] != ProviderCloudflare {
		t.Error("AllProviders() returned a shared slice")
	}
}

func TestParseProvider(t *testing.T) {
	cases := []struct {
		input   string
		want    Provider
		wantErr bool
	}{
		{"cloudflare", ProviderCloudflare, false},
		{"Google", ProviderGoogle, false},
		{" QUAD9 ", ProviderQuad9, false},
		{"nextdns", ProviderNextDNS, false},
		{"opendns", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := ParseProvider(tc.input)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseProvider(%q) error = %v, wantErr %v", tc.input, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseProvider(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestEndpointsFor(t *testing.T) {
	for _, p := range AllProviders() {
		ep, err := EndpointsFor(p)
		if err != nil {
			t.Fatalf("EndpointsFor(%v) returned error: %v", p, err)
		}
		if !strings.HasPrefix(ep.DoHURL, "https://") {
			t.Errorf("%v: DoH URL %q is not https", p, ep.DoHURL)
		}
		if ep.DoTHost == "" || ep.DoTPort != 853 {
			t.Errorf("%v: bad DoT endpoint %s:%d", p, ep.DoTHost, ep.DoTPort)
		}
		if ep.DoTServerName == "" || ep.DoH3ServerName == "" {
			t.Errorf("%v: missing TLS server name", p)
		}
		if ep.DoH3Port != 443 {
			t.Errorf("%v: DoH3 port = %d, want 443", p, ep.DoH3Port)
		}
	}

	if _, err := EndpointsFor(Provider("bogus")); err == nil {
		t.Error("EndpointsFor(bogus) expected error, got nil")
	}
}

func TestProvider_String(t *testing.T) {
	cases := []struct {
		provider Provider
		want     string
	}{
		{ProviderCloudflare, "Cloudflare"},
		{ProviderGoogle, "Google"},
		{ProviderQuad9, "Quad9"},
		{ProviderNextDNS, "NextDNS"},
		{Provider("other"), "other"},
	}
	for _, tc := range cases {
		if got := tc.provider.String(); got != tc.want {
			t.Errorf("String(%q) = %q, want %q", string(tc.provider), got, tc.want)
		}
	}
}
