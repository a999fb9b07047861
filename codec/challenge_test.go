package codec_test

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/webx403/webx403-go/codec"
	"github.com/webx403/webx403-go/core"
)

func baseChallenge() core.Challenge {
	return core.Challenge{
		Version:  core.ProtocolVersion,
		Issuer:   "test",
		Audience: "http://localhost:9000",
		Nonce:    bytes.Repeat([]byte{0xAB}, core.NonceSize),
		IssuedAt: 1700000000,
		TTL:      60,
	}
}

func TestChallengeTokenRoundTrip(t *testing.T) {
	requestBound := baseChallenge()
	requestBound.Method = "GET"
	requestBound.Path = "/hello"

	originBound := baseChallenge()
	originBound.Origin = "https://app.example.com"

	fullyBound := baseChallenge()
	fullyBound.Method = "POST"
	fullyBound.Path = "/api/orders"
	fullyBound.Origin = "https://app.example.com"

	tests := map[string]core.Challenge{
		"unbound":       baseChallenge(),
		"request bound": requestBound,
		"origin bound":  originBound,
		"fully bound":   fullyBound,
	}

	for name, challenge := range tests {
		t.Run(name, func(t *testing.T) {
			token, err := codec.EncodeChallenge(challenge)
			require.NoError(t, err)

			decoded, err := codec.DecodeChallenge(token)
			require.NoError(t, err)
			require.Equal(t, challenge, decoded)
		})
	}
}

func TestEncodeChallengeIsDeterministic(t *testing.T) {
	challenge := baseChallenge()
	challenge.Method = "GET"
	challenge.Path = "/hello"

	first, err := codec.EncodeChallenge(challenge)
	require.NoError(t, err)
	second, err := codec.EncodeChallenge(challenge)
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestEncodeChallengeRejectsIncompleteChallenges(t *testing.T) {
	mutations := map[string]func(*core.Challenge){
		"wrong version":       func(c *core.Challenge) { c.Version = 2 },
		"empty issuer":        func(c *core.Challenge) { c.Issuer = "" },
		"empty audience":      func(c *core.Challenge) { c.Audience = "" },
		"short nonce":         func(c *core.Challenge) { c.Nonce = c.Nonce[:8] },
		"zero ttl":            func(c *core.Challenge) { c.TTL = 0 },
		"negative issued-at":  func(c *core.Challenge) { c.IssuedAt = -1 },
		"method without path": func(c *core.Challenge) { c.Method = "GET" },
		"path without method": func(c *core.Challenge) { c.Path = "/hello" },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			challenge := baseChallenge()
			mutate(&challenge)

			_, err := codec.EncodeChallenge(challenge)
			require.Error(t, err)
		})
	}
}

// tamper decodes a token, lets the mutation rewrite the raw bytes and
// re-encodes the result.
func tamper(t *testing.T, token string, mutate func([]byte) []byte) string {
	t.Helper()
	raw, err := base64.RawURLEncoding.DecodeString(token)
	require.NoError(t, err)
	return base64.RawURLEncoding.EncodeToString(mutate(raw))
}

func TestDecodeChallengeRejectsMalformedTokens(t *testing.T) {
	challenge := baseChallenge()
	token, err := codec.EncodeChallenge(challenge)
	require.NoError(t, err)

	// For the unbound layout the trailing bytes are ttl (4) and flags (1).
	tests := map[string]string{
		"not base64url": "!!!not-base64!!!",
		"empty token":   "",
		"truncated": tamper(t, token, func(raw []byte) []byte {
			return raw[:len(raw)-3]
		}),
		"trailing bytes": tamper(t, token, func(raw []byte) []byte {
			return append(raw, 0x00)
		}),
		"unsupported version": tamper(t, token, func(raw []byte) []byte {
			raw[0] = 9
			return raw
		}),
		"unknown flag bits": tamper(t, token, func(raw []byte) []byte {
			raw[len(raw)-1] = 0x04
			return raw
		}),
		"bound flag without fields": tamper(t, token, func(raw []byte) []byte {
			raw[len(raw)-1] = 0x01
			return raw
		}),
		"zero ttl": tamper(t, token, func(raw []byte) []byte {
			for i := len(raw) - 5; i < len(raw)-1; i++ {
				raw[i] = 0
			}
			return raw
		}),
		"wrong nonce length": tamper(t, token, func(raw []byte) []byte {
			noncePos := 1 + 2 + len(challenge.Issuer) + 2 + len(challenge.Audience)
			raw[noncePos] = 15
			return raw
		}),
	}

	for name, malformed := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := codec.DecodeChallenge(malformed)
			require.ErrorIs(t, err, core.ErrMalformedChallenge)
		})
	}
}

func TestDecodeChallengeAcceptsPaddinglessBase64Only(t *testing.T) {
	token, err := codec.EncodeChallenge(baseChallenge())
	require.NoError(t, err)

	_, err = codec.DecodeChallenge(token + "==")
	require.ErrorIs(t, err, core.ErrMalformedChallenge)
}
