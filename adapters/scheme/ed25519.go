// Package scheme provides the built-in wallet schemes: ed25519 keys with
// base58 addresses, and secp256k1 accounts with hex addresses signing
// under the personal-message prefix.
package scheme

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/webx403/webx403-go/core"
	"github.com/webx403/webx403-go/ports"
)

// Ed25519 is the default wallet scheme. The address is the base58
// encoding of the 32-byte public key and the signature is a detached
// 64-byte ed25519 signature over the raw signing payload.
type Ed25519 struct{}

// NewEd25519 creates the default ed25519 wallet scheme.
func NewEd25519() *Ed25519 {
	return &Ed25519{}
}

// Name implements ports.WalletScheme.
func (*Ed25519) Name() string {
	return "ed25519"
}

// DecodeAddress parses a base58 address into the raw public key.
func (*Ed25519) DecodeAddress(address string) ([]byte, error) {
	raw, err := base58.Decode(address)
	if err != nil {
		return nil, fmt.Errorf("address is not base58: %w", core.ErrMalformedAddress)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("decoded address is %d bytes, want %d: %w", len(raw), ed25519.PublicKeySize, core.ErrMalformedAddress)
	}
	return raw, nil
}

// EncodeAddress renders a raw public key as a base58 address.
func (*Ed25519) EncodeAddress(raw []byte) string {
	return base58.Encode(raw)
}

// Verify checks an ed25519 signature over payload against the address.
func (s *Ed25519) Verify(address string, payload, signature []byte) error {
	pub, err := s.DecodeAddress(address)
	if err != nil {
		return err
	}
	if len(signature) != ed25519.SignatureSize {
		return fmt.Errorf("signature must be %d bytes: %w", ed25519.SignatureSize, core.ErrInvalidSignature)
	}
	if !ed25519.Verify(ed25519.PublicKey(pub), payload, signature) {
		return core.ErrInvalidSignature
	}
	return nil
}

var _ ports.WalletScheme = (*Ed25519)(nil)
