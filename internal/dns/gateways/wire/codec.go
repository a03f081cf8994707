// Package wire translates between resolver queries and DNS wire-format
// messages, and decodes the answers coming back from encrypted transports.
// Message encoding and decoding is delegated to github.com/miekg/dns; this
// package only adds hostname validation, record presentation and raw RDATA
// extraction on top.
package wire

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/miekg/dns"

	"github.com/haukened/sr-dns/internal/dns/common/log"
	"github.com/haukened/sr-dns/internal/dns/domain"
)

// Codec builds DNS query messages and decodes responses.
type Codec interface {
	// NewQuery builds a single-question query message for hostname/rtype.
	NewQuery(hostname string, rtype domain.RRType) (*dns.Msg, error)

	// DecodeRecords returns the presentation form of every answer record.
	DecodeRecords(msg *dns.Msg) ([]string, error)

	// ExtractRDATA returns the raw RDATA bytes of the first answer record.
	ExtractRDATA(msg *dns.Msg) ([]byte, error)
}

// dnsCodec implements Codec on top of miekg/dns.
type dnsCodec struct {
	logger log.Logger
}

// NewCodec creates a Codec using the provided logger.
func NewCodec(logger log.Logger) *dnsCodec {
	return &dnsCodec{logger: logger}
}

// NewQuery builds a recursion-desired query with a fresh random message ID.
// The hostname is canonicalized first; names that are not valid DNS names
// are rejected with an InvalidHostname error.
func (c *dnsCodec) NewQuery(hostname string, rtype domain.RRType) (*dns.Msg, error) {
	name := domain.CanonicalHostname(hostname)
	if name == "" {
		return nil, domain.InvalidHostname(hostname)
	}
	if _, ok := dns.IsDomainName(name); !ok {
		return nil, domain.InvalidHostname(hostname)
	}

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), rtype.Code())
	return msg, nil
}

// DecodeRecords converts the answer section into presentation strings with
// the owner/TTL/class/type header stripped, leaving only the record data
// (e.g. "93.184.216.34" for an A record).
func (c *dnsCodec) DecodeRecords(msg *dns.Msg) ([]string, error) {
	if msg.Rcode != dns.RcodeSuccess {
		return nil, domain.QueryFailure(fmt.Errorf("server returned %s", rcodeString(msg.Rcode)))
	}

	records := make([]string, 0, len(msg.Answer))
	for _, rr := range msg.Answer {
		records = append(records, rdataPresentation(rr))
	}
	if len(records) == 0 {
		return nil, domain.NoRecordsFound()
	}

	c.logger.Debug(map[string]any{
		"count": len(records),
	}, "decoded answer records")

	return records, nil
}

// ExtractRDATA packs the first answer record and slices out its RDATA bytes.
// This is the input format the ECH parser consumes for HTTPS/SVCB answers.
func (c *dnsCodec) ExtractRDATA(msg *dns.Msg) ([]byte, error) {
	if msg.Rcode != dns.RcodeSuccess {
		return nil, domain.QueryFailure(fmt.Errorf("server returned %s", rcodeString(msg.Rcode)))
	}

	for _, rr := range msg.Answer {
		rdata, err := packRDATA(rr)
		if err != nil {
			c.logger.Debug(map[string]any{"error": err}, "skipping unpackable answer record")
			continue
		}
		return rdata, nil
	}
	return nil, domain.NoRecordsFound()
}

// packRDATA packs a single RR to wire format and returns only the RDATA
// portion. The RR header is owner name + type(2) + class(2) + TTL(4) +
// RDLENGTH(2); everything after that is RDATA.
func packRDATA(rr dns.RR) ([]byte, error) {
	buf := make([]byte, dns.Len(rr))
	off, err := dns.PackRR(rr, buf, 0, nil, false)
	if err != nil {
		return nil, err
	}

	_, nameEnd, err := dns.UnpackDomainName(buf, 0)
	if err != nil {
		return nil, err
	}
	rdataStart := nameEnd + 10
	if rdataStart > off {
		return nil, fmt.Errorf("malformed resource record header")
	}
	rdlen := int(binary.BigEndian.Uint16(buf[nameEnd+8 : nameEnd+10]))
	if rdataStart+rdlen > off {
		return nil, fmt.Errorf("RDATA length %d overruns packed record", rdlen)
	}
	return buf[rdataStart : rdataStart+rdlen], nil
}

// rdataPresentation strips the header fields from an RR's presentation form.
func rdataPresentation(rr dns.RR) string {
	full := rr.String()
	header := rr.Header().String()
	if strings.HasPrefix(full, header) {
		return strings.TrimSpace(full[len(header):])
	}
	return full
}

func rcodeString(rcode int) string {
	if s, ok := dns.RcodeToString[rcode]; ok {
		return s
	}
	return fmt.Sprint(rcode)
}
