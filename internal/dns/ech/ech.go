// Package ech extracts Encrypted Client Hello configurations from the RDATA
// of SVCB/HTTPS resource records (the SvcParam with key 5).
//
// Parsing is strictly best-effort: the input is attacker-controlled network
// data, so every bounds violation degrades to "stop early" or to a raw
// base64 fallback entry. Parse never panics and never returns an error.
package ech

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strings"
	"unicode/utf8"
)

// echParamKey is the SvcParamKey carrying an ECHConfigList (RFC 9460 §14.3.2).
const echParamKey = 5

// ECH draft versions whose contents layout we understand.
const (
	versionDraft13 = 0xfe0d
	versionDraft14 = 0xfe0e
)

// Config is one decoded entry from an ECHConfigList.
//
// Three shapes occur:
//   - Parsed: Version, ConfigID, KEMID and PublicName are all set.
//   - version-only: Parsed is false; only Version and Base64 are meaningful.
//   - Raw fallback: Raw is true and Base64 covers the whole undecodable value.
//
// Base64 always round-trips to the exact original bytes of the entry.
type Config struct {
	Version    uint16
	ConfigID   uint8
	KEMID      uint16
	PublicName string
	Base64     string
	Parsed     bool
	Raw        bool
}

// String renders the entry for display.
func (c Config) String() string {
	switch {
	case c.Raw:
		return fmt.Sprintf("Raw ECH Config (base64): %s", c.Base64)
	case c.Parsed:
		return fmt.Sprintf("ECH Config v%d: ConfigID=%d, KEM=0x%04X, PublicName=%q, Base64: %s",
			c.Version, c.ConfigID, c.KEMID, c.PublicName, c.Base64)
	default:
		return fmt.Sprintf("ECH Config v%d: Base64: %s", c.Version, c.Base64)
	}
}

// Parse scans the raw RDATA of an SVCB/HTTPS record and returns every ECH
// configuration it carries. A nil result means no ECH parameter was found,
// or the parameter was present but yielded no entries.
func Parse(raw []byte) []Config {
	if len(raw) < 3 {
		return nil
	}

	// SVCB/HTTPS RDATA layout: 2-byte priority, target name, SvcParams.
	pos := 2

	// Skip the target name: length-prefixed labels terminated by a zero
	// length octet. A missing terminator stops at end of buffer rather
	// than failing the whole parse.
	for pos < len(raw) {
		labelLen := int(raw[pos])
		if labelLen == 0 {
			pos++
			break
		}
		pos += 1 + labelLen
	}

	var configs []Config

	// SvcParams: 2-byte key, 2-byte value length, value bytes. A declared
	// length overrunning the buffer means the record is truncated; stop
	// iterating without failing.
	for pos+4 <= len(raw) {
		key := binary.BigEndian.Uint16(raw[pos : pos+2])
		valLen := int(binary.BigEndian.Uint16(raw[pos+2 : pos+4]))
		pos += 4

		if pos+valLen > len(raw) {
			break
		}
		if key == echParamKey {
			configs = append(configs, parseConfigList(raw[pos:pos+valLen])...)
		}
		pos += valLen
	}

	if len(configs) == 0 {
		return nil
	}
	return configs
}

// parseConfigList decodes an ECHConfigList (2-byte length followed by a
// sequence of ECHConfig structures). When the structure is undecodable, a
// single raw fallback entry covering the whole value is returned instead.
func parseConfigList(data []byte) []Config {
	if len(data) < 2 {
		return nil
	}

	listLen := int(binary.BigEndian.Uint16(data[:2]))
	if len(data) < 2+listLen {
		return []Config{rawFallback(data)}
	}

	var configs []Config
	pos := 2

	// Each ECHConfig: 2-byte version, 2-byte length, contents.
	for pos+4 <= len(data) && pos < 2+listLen {
		version := binary.BigEndian.Uint16(data[pos : pos+2])
		contentsLen := int(binary.BigEndian.Uint16(data[pos+2 : pos+4]))

		if pos+4+contentsLen > len(data) {
			break
		}

		entry := Config{
			Version: version,
			Base64:  base64.StdEncoding.EncodeToString(data[pos : pos+4+contentsLen]),
		}
		if contents, ok := parseContents(version, data[pos+4:pos+4+contentsLen]); ok {
			entry.ConfigID = contents.configID
			entry.KEMID = contents.kemID
			entry.PublicName = contents.publicName
			entry.Parsed = true
		}
		configs = append(configs, entry)

		pos += 4 + contentsLen
	}

	// A nonzero declared length that produced no configs is undecodable.
	if len(configs) == 0 {
		return []Config{rawFallback(data)}
	}
	return configs
}

func rawFallback(data []byte) Config {
	return Config{
		Raw:    true,
		Base64: base64.StdEncoding.EncodeToString(data),
	}
}

type configContents struct {
	configID   uint8
	kemID      uint16
	publicName string
}

// parseContents decodes ECHConfigContents for the draft versions we
// recognize. Any length field overrunning the buffer aborts parsing of this
// config only.
func parseContents(version uint16, data []byte) (configContents, bool) {
	if version != versionDraft13 && version != versionDraft14 {
		return configContents{}, false
	}
	if len(data) < 10 {
		return configContents{}, false
	}

	pos := 0
	configID := data[pos]
	pos++

	kemID := binary.BigEndian.Uint16(data[pos : pos+2])
	pos += 2

	// public key: 2-byte length, value discarded
	pkLen := int(binary.BigEndian.Uint16(data[pos : pos+2]))
	pos += 2
	if pos+pkLen > len(data) {
		return configContents{}, false
	}
	pos += pkLen

	// cipher suites: 2-byte length, value discarded
	if pos+2 > len(data) {
		return configContents{}, false
	}
	csLen := int(binary.BigEndian.Uint16(data[pos : pos+2]))
	pos += 2
	if pos+csLen > len(data) {
		return configContents{}, false
	}
	pos += csLen

	// maximum name length: 1 byte, discarded
	if pos >= len(data) {
		return configContents{}, false
	}
	pos++

	// public name: 1-byte length + UTF-8 text, decoded lossily
	if pos >= len(data) {
		return configContents{}, false
	}
	nameLen := int(data[pos])
	pos++
	if pos+nameLen > len(data) {
		return configContents{}, false
	}

	return configContents{
		configID:   configID,
		kemID:      kemID,
		publicName: lossyString(data[pos : pos+nameLen]),
	}, true
}

// lossyString decodes bytes as UTF-8, substituting the replacement rune for
// invalid sequences.
func lossyString(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}
