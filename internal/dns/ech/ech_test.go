package ech

import (
	"encoding/base64"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildContents assembles ECHConfigContents wire bytes.
func buildContents(configID uint8, kemID uint16, pubkey, suites []byte, maxNameLen uint8, publicName string) []byte {
	var out []byte
	out = append(out, configID)
	out = binary.BigEndian.AppendUint16(out, kemID)
	out = binary.BigEndian.AppendUint16(out, uint16(len(pubkey)))
	out = append(out, pubkey...)
	out = binary.BigEndian.AppendUint16(out, uint16(len(suites)))
	out = append(out, suites...)
	out = append(out, maxNameLen)
	out = append(out, uint8(len(publicName)))
	out = append(out, publicName...)
	return out
}

// buildConfig wraps contents in an ECHConfig (version + length + contents).
func buildConfig(version uint16, contents []byte) []byte {
	var out []byte
	out = binary.BigEndian.AppendUint16(out, version)
	out = binary.BigEndian.AppendUint16(out, uint16(len(contents)))
	out = append(out, contents...)
	return out
}

// buildList wraps configs in an ECHConfigList (2-byte total length).
func buildList(configs ...[]byte) []byte {
	var body []byte
	for _, c := range configs {
		body = append(body, c...)
	}
	out := binary.BigEndian.AppendUint16(nil, uint16(len(body)))
	return append(out, body...)
}

// buildRDATA assembles SVCB/HTTPS RDATA: priority, root target name, params.
func buildRDATA(params ...[]byte) []byte {
	out := []byte{0x00, 0x01, 0x00} // priority 1, root name
	for _, p := range params {
		out = append(out, p...)
	}
	return out
}

// buildParam assembles one SvcParam (key, length, value).
func buildParam(key uint16, value []byte) []byte {
	var out []byte
	out = binary.BigEndian.AppendUint16(out, key)
	out = binary.BigEndian.AppendUint16(out, uint16(len(value)))
	return append(out, value...)
}

func TestParse_ShortInput(t *testing.T) {
	assert.Nil(t, Parse(nil))
	assert.Nil(t, Parse([]byte{}))
	assert.Nil(t, Parse([]byte{0x00}))
	assert.Nil(t, Parse([]byte{0x00, 0x01}))
}

func TestParse_NoEchParam(t *testing.T) {
	// alpn=h2 only, no key-5 param
	rdata := buildRDATA(buildParam(1, []byte{0x02, 'h', '2'}))
	assert.Nil(t, Parse(rdata))
}

func TestParse_SingleDraft13Config(t *testing.T) {
	contents := buildContents(7, 0x0020, []byte("0123456789abcdef0123456789abcdef"), []byte{0x00, 0x01, 0x00, 0x01}, 64, "public.example.com")
	cfg := buildConfig(0xfe0d, contents)
	rdata := buildRDATA(buildParam(echParamKey, buildList(cfg)))

	got := Parse(rdata)
	require.Len(t, got, 1)

	entry := got[0]
	assert.True(t, entry.Parsed)
	assert.False(t, entry.Raw)
	assert.Equal(t, uint16(0xfe0d), entry.Version)
	assert.Equal(t, uint8(7), entry.ConfigID)
	assert.Equal(t, uint16(0x0020), entry.KEMID)
	assert.Equal(t, "public.example.com", entry.PublicName)

	decoded, err := base64.StdEncoding.DecodeString(entry.Base64)
	require.NoError(t, err)
	assert.Equal(t, cfg, decoded, "base64 must round-trip to the exact config bytes")
}

func TestParse_UnknownVersionIsVersionOnly(t *testing.T) {
	contents := buildContents(1, 0x0020, []byte("key"), nil, 0, "example.com")
	cfg := buildConfig(0xabcd, contents)
	rdata := buildRDATA(buildParam(echParamKey, buildList(cfg)))

	got := Parse(rdata)
	require.Len(t, got, 1)
	assert.False(t, got[0].Parsed)
	assert.False(t, got[0].Raw)
	assert.Equal(t, uint16(0xabcd), got[0].Version)

	decoded, err := base64.StdEncoding.DecodeString(got[0].Base64)
	require.NoError(t, err)
	assert.Equal(t, cfg, decoded)
}

func TestParse_ListLengthOverrunFallsBackToRaw(t *testing.T) {
	// declared list length exceeds available bytes
	value := binary.BigEndian.AppendUint16(nil, 500)
	value = append(value, 0xde, 0xad, 0xbe, 0xef)
	rdata := buildRDATA(buildParam(echParamKey, value))

	got := Parse(rdata)
	require.Len(t, got, 1)
	assert.True(t, got[0].Raw)

	decoded, err := base64.StdEncoding.DecodeString(got[0].Base64)
	require.NoError(t, err)
	assert.Equal(t, value, decoded, "raw fallback must base64 the entire value")
}

func TestParse_NonzeroLengthZeroConfigsFallsBackToRaw(t *testing.T) {
	// list declares 3 bytes of body but the body cannot hold one config header
	value := binary.BigEndian.AppendUint16(nil, 3)
	value = append(value, 0x01, 0x02, 0x03)
	rdata := buildRDATA(buildParam(echParamKey, value))

	got := Parse(rdata)
	require.Len(t, got, 1)
	assert.True(t, got[0].Raw)
}

func TestParse_MultipleConfigsInOneList(t *testing.T) {
	c13 := buildConfig(0xfe0d, buildContents(1, 0x0020, []byte("pk-one"), nil, 64, "one.example"))
	c14 := buildConfig(0xfe0e, buildContents(2, 0x0010, []byte("pk-two"), nil, 64, "two.example"))
	rdata := buildRDATA(buildParam(echParamKey, buildList(c13, c14)))

	got := Parse(rdata)
	require.Len(t, got, 2)
	assert.Equal(t, "one.example", got[0].PublicName)
	assert.Equal(t, uint16(0xfe0d), got[0].Version)
	assert.Equal(t, "two.example", got[1].PublicName)
	assert.Equal(t, uint16(0xfe0e), got[1].Version)
}

func TestParse_MultipleEchParams(t *testing.T) {
	first := buildParam(echParamKey, buildList(buildConfig(0xfe0d, buildContents(1, 0x0020, []byte("pk"), nil, 64, "a.example"))))
	second := buildParam(echParamKey, buildList(buildConfig(0xfe0d, buildContents(2, 0x0020, []byte("pk"), nil, 64, "b.example"))))
	rdata := buildRDATA(first, second)

	got := Parse(rdata)
	require.Len(t, got, 2)
	assert.Equal(t, "a.example", got[0].PublicName)
	assert.Equal(t, "b.example", got[1].PublicName)
}

func TestParse_TruncatedSvcParamStopsIteration(t *testing.T) {
	good := buildParam(echParamKey, buildList(buildConfig(0xfe0d, buildContents(1, 0x0020, []byte("pk"), nil, 64, "ok.example"))))
	// param declares 100 bytes of value but supplies 2
	truncated := binary.BigEndian.AppendUint16(nil, 9)
	truncated = binary.BigEndian.AppendUint16(truncated, 100)
	truncated = append(truncated, 0x00, 0x00)
	rdata := buildRDATA(good, truncated)

	got := Parse(rdata)
	require.Len(t, got, 1)
	assert.Equal(t, "ok.example", got[0].PublicName)
}

func TestParse_TargetNameWithoutTerminator(t *testing.T) {
	// a label that claims to run past the end of the buffer
	rdata := []byte{0x00, 0x01, 0x3f, 'x', 'y'}
	assert.Nil(t, Parse(rdata))
}

func TestParse_ContentsOverrunIsVersionOnly(t *testing.T) {
	// valid config framing, but the public key length inside the contents
	// overruns the contents buffer
	contents := []byte{
		0x01,       // config id
		0x00, 0x20, // kem id
		0xff, 0xff, // public key length: way past the end
		0x00, 0x00, 0x00, 0x00, 0x00,
	}
	cfg := buildConfig(0xfe0d, contents)
	rdata := buildRDATA(buildParam(echParamKey, buildList(cfg)))

	got := Parse(rdata)
	require.Len(t, got, 1)
	assert.False(t, got[0].Parsed, "overrun must abort contents parsing only")
	assert.Equal(t, uint16(0xfe0d), got[0].Version)
}

func TestParse_NeverPanics(t *testing.T) {
	inputs := [][]byte{
		{0x00, 0x01, 0x00, 0x00, 0x05, 0xff, 0xff},
		{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		buildRDATA(buildParam(echParamKey, []byte{0x00})),
		buildRDATA(buildParam(echParamKey, nil)),
		append(buildRDATA(), 0x00, 0x05, 0x00, 0x02, 0xfe),
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() { Parse(in) })
	}
}

func TestConfig_String(t *testing.T) {
	parsed := Config{Version: 0xfe0d, ConfigID: 3, KEMID: 0x0020, PublicName: "example.com", Base64: "QUJD", Parsed: true}
	s := parsed.String()
	assert.Contains(t, s, "v65037")
	assert.Contains(t, s, "ConfigID=3")
	assert.Contains(t, s, "KEM=0x0020")
	assert.Contains(t, s, `"example.com"`)

	raw := Config{Raw: true, Base64: "QUJD"}
	assert.True(t, strings.HasPrefix(raw.String(), "Raw ECH Config"))

	plain := Config{Version: 0xfe0e, Base64: "QUJD"}
	assert.Equal(t, "ECH Config v65038: Base64: QUJD", plain.String())
}
