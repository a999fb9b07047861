// Package codec implements the wire forms of the protocol: the binary
// challenge token, the signing payload a wallet signs, the replay key
// derived from a challenge, and the Authorization / WWW-Authenticate
// header grammar.
//
// Encoding is canonical. Every field is written in a fixed order with an
// explicit length prefix and fixed-width big-endian integers, so a given
// challenge has exactly one token and a decoded token re-encodes to the
// same bytes. Decoding is strict: unknown flag bits, truncated fields and
// trailing bytes are all rejected.
package codec

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"github.com/webx403/webx403-go/core"
)

// Flag bits carried by the challenge token.
const (
	flagRequestBound byte = 1 << 0 // method and path fields present
	flagOriginBound  byte = 1 << 1 // origin field present
)

// maxFieldLen caps variable-length string fields on both encode and decode.
const maxFieldLen = 1024

var tokenEncoding = base64.RawURLEncoding.Strict()

// EncodeChallenge serializes a challenge into its URL-safe token form.
// The challenge must be complete and well formed, a zero-value or
// partially filled challenge is an error, not a malformed token.
func EncodeChallenge(c core.Challenge) (string, error) {
	raw, err := marshalChallenge(c)
	if err != nil {
		return "", err
	}
	return tokenEncoding.EncodeToString(raw), nil
}

// DecodeChallenge parses a token back into a challenge. Any deviation
// from the canonical encoding yields core.ErrMalformedChallenge.
func DecodeChallenge(token string) (core.Challenge, error) {
	raw, err := tokenEncoding.DecodeString(token)
	if err != nil {
		return core.Challenge{}, fmt.Errorf("token is not base64url: %w", core.ErrMalformedChallenge)
	}
	return unmarshalChallenge(raw)
}

func marshalChallenge(c core.Challenge) ([]byte, error) {
	if c.Version != core.ProtocolVersion {
		return nil, fmt.Errorf("unsupported challenge version %d", c.Version)
	}
	if c.Issuer == "" || len(c.Issuer) > maxFieldLen {
		return nil, fmt.Errorf("issuer length %d out of range", len(c.Issuer))
	}
	if c.Audience == "" || len(c.Audience) > maxFieldLen {
		return nil, fmt.Errorf("audience length %d out of range", len(c.Audience))
	}
	if len(c.Nonce) != core.NonceSize {
		return nil, fmt.Errorf("nonce is %d bytes, want %d", len(c.Nonce), core.NonceSize)
	}
	if c.IssuedAt < 0 {
		return nil, fmt.Errorf("issued-at %d is negative", c.IssuedAt)
	}
	if c.TTL == 0 {
		return nil, fmt.Errorf("ttl must be positive")
	}
	if (c.Method == "") != (c.Path == "") {
		return nil, fmt.Errorf("method and path must be bound together")
	}
	if len(c.Method) > 255 || len(c.Path) > maxFieldLen || len(c.Origin) > maxFieldLen {
		return nil, fmt.Errorf("bound field too long")
	}

	var flags byte
	if c.BindsRequest() {
		flags |= flagRequestBound
	}
	if c.BindsOrigin() {
		flags |= flagOriginBound
	}

	buf := make([]byte, 0, 64+len(c.Issuer)+len(c.Audience)+len(c.Method)+len(c.Path)+len(c.Origin))
	buf = append(buf, c.Version)
	buf = appendString16(buf, c.Issuer)
	buf = appendString16(buf, c.Audience)
	buf = append(buf, byte(len(c.Nonce)))
	buf = append(buf, c.Nonce...)
	buf = binary.BigEndian.AppendUint64(buf, uint64(c.IssuedAt))
	buf = binary.BigEndian.AppendUint32(buf, c.TTL)
	buf = append(buf, flags)
	if flags&flagRequestBound != 0 {
		buf = append(buf, byte(len(c.Method)))
		buf = append(buf, c.Method...)
		buf = appendString16(buf, c.Path)
	}
	if flags&flagOriginBound != 0 {
		buf = appendString16(buf, c.Origin)
	}
	return buf, nil
}

func unmarshalChallenge(raw []byte) (core.Challenge, error) {
	r := reader{data: raw}
	var c core.Challenge

	c.Version = r.byte("version")
	if r.err == nil && c.Version != core.ProtocolVersion {
		return core.Challenge{}, fmt.Errorf("unsupported version %d: %w", c.Version, core.ErrMalformedChallenge)
	}
	c.Issuer = r.string16("issuer")
	c.Audience = r.string16("audience")
	nonceLen := r.byte("nonce length")
	if r.err == nil && int(nonceLen) != core.NonceSize {
		return core.Challenge{}, fmt.Errorf("nonce is %d bytes, want %d: %w", nonceLen, core.NonceSize, core.ErrMalformedChallenge)
	}
	c.Nonce = r.bytes(int(nonceLen), "nonce")
	c.IssuedAt = int64(r.uint64("issued-at"))
	c.TTL = r.uint32("ttl")
	flags := r.byte("flags")

	if r.err == nil && flags&^(flagRequestBound|flagOriginBound) != 0 {
		return core.Challenge{}, fmt.Errorf("unknown flag bits 0x%02x: %w", flags, core.ErrMalformedChallenge)
	}
	if flags&flagRequestBound != 0 {
		c.Method = r.string8("method")
		c.Path = r.string16("path")
	}
	if flags&flagOriginBound != 0 {
		c.Origin = r.string16("origin")
	}
	if err := r.finish(); err != nil {
		return core.Challenge{}, err
	}

	switch {
	case c.Issuer == "" || len(c.Issuer) > maxFieldLen:
		return core.Challenge{}, fmt.Errorf("issuer length out of range: %w", core.ErrMalformedChallenge)
	case c.Audience == "" || len(c.Audience) > maxFieldLen:
		return core.Challenge{}, fmt.Errorf("audience length out of range: %w", core.ErrMalformedChallenge)
	case c.IssuedAt < 0:
		return core.Challenge{}, fmt.Errorf("negative issued-at: %w", core.ErrMalformedChallenge)
	case c.TTL == 0:
		return core.Challenge{}, fmt.Errorf("zero ttl: %w", core.ErrMalformedChallenge)
	case flags&flagRequestBound != 0 && (c.Method == "" || c.Path == "" || len(c.Path) > maxFieldLen):
		return core.Challenge{}, fmt.Errorf("bound method or path out of range: %w", core.ErrMalformedChallenge)
	case flags&flagOriginBound != 0 && (c.Origin == "" || len(c.Origin) > maxFieldLen):
		return core.Challenge{}, fmt.Errorf("bound origin out of range: %w", core.ErrMalformedChallenge)
	}
	return c, nil
}

func appendString16(buf []byte, s string) []byte {
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(s)))
	return append(buf, s...)
}

// reader is a strict cursor over a decoded token. The first failure sticks,
// subsequent reads return zero values and finish reports the error.
type reader struct {
	data []byte
	pos  int
	err  error
}

func (r *reader) bytes(n int, field string) []byte {
	if r.err != nil {
		return nil
	}
	if r.pos+n > len(r.data) {
		r.err = fmt.Errorf("truncated %s: %w", field, core.ErrMalformedChallenge)
		return nil
	}
	out := make([]byte, n)
	copy(out, r.data[r.pos:r.pos+n])
	r.pos += n
	return out
}

func (r *reader) byte(field string) byte {
	b := r.bytes(1, field)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) uint32(field string) uint32 {
	b := r.bytes(4, field)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

func (r *reader) uint64(field string) uint64 {
	b := r.bytes(8, field)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

func (r *reader) string8(field string) string {
	n := r.byte(field + " length")
	return string(r.bytes(int(n), field))
}

func (r *reader) string16(field string) string {
	b := r.bytes(2, field+" length")
	if b == nil {
		return ""
	}
	return string(r.bytes(int(binary.BigEndian.Uint16(b)), field))
}

func (r *reader) finish() error {
	if r.err != nil {
		return r.err
	}
	if r.pos != len(r.data) {
		return fmt.Errorf("%d trailing bytes: %w", len(r.data)-r.pos, core.ErrMalformedChallenge)
	}
	return nil
}
