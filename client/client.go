// Package client implements the wallet side of the protocol: signing
// challenge tokens and transparently answering challenges during HTTP
// calls. It is what tests and command line tools use to talk to a server
// guarded by the middleware.
package client

import (
	"crypto/ed25519"
	"fmt"
	"io"
	"net/http"

	"github.com/webx403/webx403-go/adapters/scheme"
	"github.com/webx403/webx403-go/codec"
	"github.com/webx403/webx403-go/core"
)

// Client holds an ed25519 wallet key and signs challenges with it.
type Client struct {
	key     ed25519.PrivateKey
	address string
}

// New creates a client around an ed25519 private key.
func New(key ed25519.PrivateKey) *Client {
	pub := key.Public().(ed25519.PublicKey)
	return &Client{
		key:     key,
		address: scheme.NewEd25519().EncodeAddress(pub),
	}
}

// NewFromSeed creates a client from a 32-byte ed25519 seed.
func NewFromSeed(seed []byte) (*Client, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return New(ed25519.NewKeyFromSeed(seed)), nil
}

// Address returns the wallet address in base58.
func (c *Client) Address() string {
	return c.address
}

// Authorize signs a challenge token and returns the Authorization value
// answering it. The token is validated before signing so the wallet never
// signs bytes that do not parse as a challenge.
func (c *Client) Authorize(token string) (string, error) {
	payload, err := codec.SigningPayloadFromToken(token)
	if err != nil {
		return "", err
	}
	signature := ed25519.Sign(c.key, payload)
	return codec.FormatAuthorization(core.SignedResponse{
		ChallengeToken: token,
		Address:        c.address,
		Signature:      signature,
	}), nil
}

// Do performs req and, when the server answers with a challenge, signs it
// and retries once. Responses that are not a challenge pass through
// untouched. Requests with a body need GetBody set so the retry can
// rewind it, which http.NewRequest does for the common body types.
func (c *Client) Do(hc *http.Client, req *http.Request) (*http.Response, error) {
	if hc == nil {
		hc = http.DefaultClient
	}

	first, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	token, ok := challengeFrom(first)
	if !ok {
		return first, nil
	}
	_, _ = io.Copy(io.Discard, first.Body)
	_ = first.Body.Close()

	authorization, err := c.Authorize(token)
	if err != nil {
		return nil, fmt.Errorf("failed to answer challenge: %w", err)
	}
	retry, err := rewound(req)
	if err != nil {
		return nil, err
	}
	retry.Header.Set("Authorization", authorization)
	return hc.Do(retry)
}

func challengeFrom(resp *http.Response) (string, bool) {
	if resp.StatusCode != http.StatusForbidden {
		return "", false
	}
	token, err := codec.ParseChallengeHeader(resp.Header.Get("WWW-Authenticate"))
	if err != nil {
		return "", false
	}
	return token, true
}

func rewound(req *http.Request) (*http.Request, error) {
	retry := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return retry, nil
	}
	if req.GetBody == nil {
		return nil, fmt.Errorf("request body cannot be replayed, set GetBody")
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("failed to rewind request body: %w", err)
	}
	retry.Body = body
	return retry, nil
}
