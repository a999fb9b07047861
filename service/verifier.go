package service

import (
	"context"
	"fmt"
	"time"

	"github.com/webx403/webx403-go/codec"
	"github.com/webx403/webx403-go/core"
	"github.com/webx403/webx403-go/ports"
)

// Verifier runs the verification pipeline over a signed response. Checks
// run in a fixed order and the first failure wins, most importantly the
// nonce is consumed last: a response failing any earlier check leaves its
// nonce untouched, so a client whose request was rejected for a clock or
// binding problem has not burned the challenge.
type Verifier struct {
	issuer   string
	audience string
	skew     time.Duration
	scheme   ports.WalletScheme
	replay   ports.ReplayStore
}

// NewVerifier creates a verifier from a filled config. NewEngine builds
// one internally, standalone use is for non-HTTP entry points.
func NewVerifier(cfg Config) *Verifier {
	return &Verifier{
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		skew:     cfg.ClockSkew,
		scheme:   cfg.Scheme,
		replay:   cfg.Replay,
	}
}

// Verify checks a signed response against the incoming request at time
// now. On success it returns the authenticated wallet with its address in
// canonical form and the challenge nonce is consumed. Every failure maps
// to one sentinel from the core package.
func (v *Verifier) Verify(ctx context.Context, sr core.SignedResponse, desc core.RequestDescriptor, now time.Time) (core.WalletIdentity, error) {
	c, err := codec.DecodeChallenge(sr.ChallengeToken)
	if err != nil {
		return core.WalletIdentity{}, err
	}

	rawAddr, err := v.scheme.DecodeAddress(sr.Address)
	if err != nil {
		return core.WalletIdentity{}, err
	}

	payload, err := codec.SigningPayload(c)
	if err != nil {
		return core.WalletIdentity{}, fmt.Errorf("%v: %w", err, core.ErrMalformedChallenge)
	}
	if err := v.scheme.Verify(sr.Address, payload, sr.Signature); err != nil {
		return core.WalletIdentity{}, err
	}

	issued := time.Unix(c.IssuedAt, 0)
	notBefore := issued.Add(-v.skew)
	notAfter := issued.Add(time.Duration(c.TTL)*time.Second + v.skew)
	if now.Before(notBefore) || now.After(notAfter) {
		return core.WalletIdentity{}, core.ErrChallengeExpired
	}

	if c.Issuer != v.issuer {
		return core.WalletIdentity{}, core.ErrIssuerMismatch
	}
	if c.Audience != v.audience {
		return core.WalletIdentity{}, core.ErrAudienceMismatch
	}

	// Binding follows the challenge, not the current server config, so
	// challenges minted under an older binding policy verify coherently.
	if c.BindsRequest() {
		if codec.CanonicalMethod(desc.Method) != c.Method || codec.CanonicalPath(desc.Path) != c.Path {
			return core.WalletIdentity{}, core.ErrBindingMismatch
		}
	}
	if c.BindsOrigin() && desc.Origin != c.Origin {
		return core.WalletIdentity{}, core.ErrOriginMismatch
	}

	// Reserve until the challenge itself can no longer verify.
	reserveFor := notAfter.Sub(now)
	if reserveFor < time.Second {
		reserveFor = time.Second
	}
	outcome, err := v.replay.CheckAndReserve(ctx, codec.ReplayKey(c), reserveFor)
	if err != nil {
		return core.WalletIdentity{}, fmt.Errorf("%v: %w", err, core.ErrReplayUnavailable)
	}
	if outcome == ports.ReplayAlreadyUsed {
		return core.WalletIdentity{}, core.ErrNonceReplayed
	}

	return core.WalletIdentity{Address: v.scheme.EncodeAddress(rawAddr)}, nil
}
