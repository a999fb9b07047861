package core

import "time"

// ProtocolVersion is the challenge wire format version this module speaks.
const ProtocolVersion uint8 = 1

// NonceSize is the exact length of a challenge nonce in bytes.
const NonceSize = 16

// Challenge is the server-minted statement a wallet signs to authenticate.
// A challenge is self-describing: everything needed to verify it later is
// carried inside the token, the server keeps no per-challenge state.
type Challenge struct {
	Version  uint8  // wire format version, must equal ProtocolVersion
	Issuer   string // identifier of the deployment that minted the challenge
	Audience string // origin of the protected service, e.g. "https://api.example.com"
	Nonce    []byte // NonceSize random bytes, unique per challenge
	IssuedAt int64  // unix seconds at mint time
	TTL      uint32 // validity window in seconds, counted from IssuedAt
	Method   string // bound HTTP method, empty when method/path binding is off
	Path     string // bound canonical path, empty when method/path binding is off
	Origin   string // bound Origin header value, empty when origin binding is off
}

// BindsRequest reports whether the challenge pins an HTTP method and path.
// Method and path are always bound together.
func (c Challenge) BindsRequest() bool {
	return c.Method != ""
}

// BindsOrigin reports whether the challenge pins a browser Origin.
func (c Challenge) BindsOrigin() bool {
	return c.Origin != ""
}

// ExpiresAt returns the instant the challenge stops being valid,
// before any clock skew allowance is applied.
func (c Challenge) ExpiresAt() time.Time {
	return time.Unix(c.IssuedAt+int64(c.TTL), 0)
}

// RequestDescriptor captures the properties of an incoming HTTP request
// that a challenge may be bound to.
type RequestDescriptor struct {
	Method string // HTTP method as received, canonicalized during checks
	Path   string // URL path as received, canonicalized during checks
	Origin string // Origin header value, empty when the header is absent
}

// SignedResponse is the client's answer to a challenge, decoded from the
// Authorization header: the original token plus the wallet's signature over
// the challenge signing payload.
type SignedResponse struct {
	ChallengeToken string // encoded challenge exactly as issued
	Address        string // wallet address in the scheme's string encoding
	Signature      []byte // signature over the signing payload
}

// WalletIdentity is the authenticated caller established by a successful
// verification.
type WalletIdentity struct {
	Address string // canonical string encoding of the wallet address
}
