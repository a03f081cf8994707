package domain

import (
	"fmt"
	"strings"
)

// RRType represents a DNS resource record type (e.g. A, AAAA, MX).
// Only the query types supported by the resolver are enumerated here;
// the numeric values are the IANA-assigned codes.
type RRType uint16

// Supported DNS resource record type constants
const (
	RRTypeA     RRType = 1  // A - IPv4 address
	RRTypeNS    RRType = 2  // NS - Name server
	RRTypeCNAME RRType = 5  // CNAME - Canonical name
	RRTypeMX    RRType = 15 // MX - Mail exchange
	RRTypeTXT   RRType = 16 // TXT - Text
	RRTypeAAAA  RRType = 28 // AAAA - IPv6 address
	RRTypeSVCB  RRType = 64 // SVCB - Service binding
	RRTypeHTTPS RRType = 65 // HTTPS - HTTPS binding
)

// AllRRTypes returns every supported record type in ascending code order.
func AllRRTypes() []RRType {
	return []RRType{RRTypeA, RRTypeNS, RRTypeCNAME, RRTypeMX, RRTypeTXT, RRTypeAAAA, RRTypeSVCB, RRTypeHTTPS}
}

// IsValid returns true if the RRType is one of the supported types.
func (t RRType) IsValid() bool {
	switch t {
	case RRTypeA, RRTypeNS, RRTypeCNAME, RRTypeMX, RRTypeTXT, RRTypeAAAA, RRTypeSVCB, RRTypeHTTPS:
		return true
	default:
		return false
	}
}

// Code returns the numeric DNS type code.
func (t RRType) Code() uint16 {
	return uint16(t)
}

// RRTypeFromCode converts a numeric DNS type code into an RRType.
// Unsupported codes are rejected so the name/code mapping stays total
// in both directions.
func RRTypeFromCode(code uint16) (RRType, error) {
	t := RRType(code)
	if !t.IsValid() {
		return 0, fmt.Errorf("unsupported record type code: %d", code)
	}
	return t, nil
}

// ParseRRType converts a textual record type name into an RRType.
func ParseRRType(s string) (RRType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A":
		return RRTypeA, nil
	case "NS":
		return RRTypeNS, nil
	case "CNAME":
		return RRTypeCNAME, nil
	case "MX":
		return RRTypeMX, nil
	case "TXT":
		return RRTypeTXT, nil
	case "AAAA":
		return RRTypeAAAA, nil
	case "SVCB":
		return RRTypeSVCB, nil
	case "HTTPS":
		return RRTypeHTTPS, nil
	default:
		return 0, fmt.Errorf("unsupported record type: %q", s)
	}
}

// String returns the textual representation of the RRType.
// For unknown types, it returns "UNKNOWN(<value>)".
func (t RRType) String() string {
	switch t {
	case RRTypeA:
		return "A"
	case RRTypeNS:
		return "NS"
	case RRTypeCNAME:
		return "CNAME"
	case RRTypeMX:
		return "MX"
	case RRTypeTXT:
		return "TXT"
	case RRTypeAAAA:
		return "AAAA"
	case RRTypeSVCB:
		return "SVCB"
	case RRTypeHTTPS:
		return "HTTPS"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint16(t))
	}
}
