package domain

import "testing"

func TestParseProtocol(t *testing.T) {
	cases := []struct {
		input   string
		want    Protocol
		wantErr bool
	}{
		{"doh", ProtocolDoH, false},
		{"DoT", ProtocolDoT, false},
		{" DOH3 ", ProtocolDoH3, false},
		{"udp", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := ParseProtocol(tc.input)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseProtocol(%q) error = %v, wantErr %v", tc.input, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseProtocol(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestProtocol_String(t *testing.T) {
	cases := []struct {
		protocol Protocol
		want     string
	}{
		{ProtocolDoH, "DoH"},
		{ProtocolDoT, "DoT"},
		{ProtocolDoH3, "DoH3"},
		{Protocol("quic"), "quic"},
	}
	for _, tc := range cases {
		if got := tc.protocol.String(); got != tc.want {
			t.Errorf("String(%q) = %q, want %q", string(tc.protocol), got, tc.want)
		}
	}
}
