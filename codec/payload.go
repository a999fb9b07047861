package codec

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/webx403/webx403-go/core"
)

// signingDomain separates challenge signatures from any other payload a
// wallet might sign. Changing the wire format bumps the version suffix.
const signingDomain = "webx403:challenge:v1"

// SigningPayload returns the exact bytes a wallet signs for a challenge:
// the domain separator followed by the canonical challenge encoding.
// Because the encoding is canonical, verifier and client always derive
// the same payload from the same token.
func SigningPayload(c core.Challenge) ([]byte, error) {
	raw, err := marshalChallenge(c)
	if err != nil {
		return nil, err
	}
	payload := make([]byte, 0, len(signingDomain)+len(raw))
	payload = append(payload, signingDomain...)
	return append(payload, raw...), nil
}

// SigningPayloadFromToken derives the signing payload straight from an
// encoded token. The token is validated first so a client never signs
// bytes that do not parse as a challenge.
func SigningPayloadFromToken(token string) ([]byte, error) {
	raw, err := tokenEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("token is not base64url: %w", core.ErrMalformedChallenge)
	}
	if _, err := unmarshalChallenge(raw); err != nil {
		return nil, err
	}
	payload := make([]byte, 0, len(signingDomain)+len(raw))
	payload = append(payload, signingDomain...)
	return append(payload, raw...), nil
}

// ReplayKey derives the replay store key for a challenge. The key covers
// issuer and nonce, so distinct deployments sharing one store cannot
// shadow each other's nonces. The issuer is length-prefixed to keep the
// digest input unambiguous.
func ReplayKey(c core.Challenge) string {
	h := sha256.New()
	var issuerLen [2]byte
	binary.BigEndian.PutUint16(issuerLen[:], uint16(len(c.Issuer)))
	h.Write(issuerLen[:])
	h.Write([]byte(c.Issuer))
	h.Write(c.Nonce)
	return hex.EncodeToString(h.Sum(nil))
}
