package service

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/webx403/webx403-go/codec"
	"github.com/webx403/webx403-go/core"
)

// Issuer mints challenges for requests that arrive without authorization.
type Issuer struct {
	issuer      string
	audience    string
	ttl         time.Duration
	bindRequest bool
	bindOrigin  bool
	now         func() time.Time
}

// NewIssuer creates an issuer from a filled config. NewEngine builds one
// internally, standalone use is for servers that deliver challenges out
// of band.
func NewIssuer(cfg Config) *Issuer {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Issuer{
		issuer:      cfg.Issuer,
		audience:    cfg.Audience,
		ttl:         cfg.TTL,
		bindRequest: cfg.BindRequest,
		bindOrigin:  cfg.BindOrigin,
		now:         now,
	}
}

// Issue mints a challenge for the given request and returns it along with
// its encoded token. Each call draws a fresh random nonce.
func (i *Issuer) Issue(desc core.RequestDescriptor) (core.Challenge, string, error) {
	nonce := make([]byte, core.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return core.Challenge{}, "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	c := core.Challenge{
		Version:  core.ProtocolVersion,
		Issuer:   i.issuer,
		Audience: i.audience,
		Nonce:    nonce,
		IssuedAt: i.now().Unix(),
		TTL:      uint32(i.ttl / time.Second),
	}
	if i.bindRequest {
		c.Method = codec.CanonicalMethod(desc.Method)
		c.Path = codec.CanonicalPath(desc.Path)
	}
	if i.bindOrigin && desc.Origin != "" {
		c.Origin = desc.Origin
	}

	token, err := codec.EncodeChallenge(c)
	if err != nil {
		return core.Challenge{}, "", fmt.Errorf("failed to encode challenge: %w", err)
	}
	return c, token, nil
}
