package scheme

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/webx403/webx403-go/core"
	"github.com/webx403/webx403-go/ports"
)

// Ethereum is a wallet scheme for secp256k1 accounts. The address is the
// usual 20-byte hex account and the signature is the 65-byte [R || S || V]
// form produced by personal_sign, i.e. over the keccak256 of the payload
// under the "\x19Ethereum Signed Message" prefix.
type Ethereum struct{}

// NewEthereum creates the Ethereum wallet scheme.
func NewEthereum() *Ethereum {
	return &Ethereum{}
}

// Name implements ports.WalletScheme.
func (*Ethereum) Name() string {
	return "ethereum"
}

// DecodeAddress parses a 0x-prefixed hex address into its 20 raw bytes.
func (*Ethereum) DecodeAddress(address string) ([]byte, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("address is not a hex account: %w", core.ErrMalformedAddress)
	}
	return common.HexToAddress(address).Bytes(), nil
}

// EncodeAddress renders raw account bytes in EIP-55 checksummed hex.
func (*Ethereum) EncodeAddress(raw []byte) string {
	return common.BytesToAddress(raw).Hex()
}

// Verify recovers the signer from the signature and compares it to the
// claimed address.
func (s *Ethereum) Verify(address string, payload, signature []byte) error {
	if _, err := s.DecodeAddress(address); err != nil {
		return err
	}
	if len(signature) != 65 {
		return fmt.Errorf("signature must be 65 bytes: %w", core.ErrInvalidSignature)
	}

	// Wallets emit V as 27/28, crypto.SigToPub wants 0/1.
	sig := make([]byte, 65)
	copy(sig, signature)
	if sig[64] >= 27 {
		sig[64] -= 27
	}
	if sig[64] > 1 {
		return fmt.Errorf("invalid recovery id: %w", core.ErrInvalidSignature)
	}

	digest := personalDigest(payload)
	pub, err := crypto.SigToPub(digest, sig)
	if err != nil {
		return fmt.Errorf("failed to recover signer: %w", core.ErrInvalidSignature)
	}
	if crypto.PubkeyToAddress(*pub) != common.HexToAddress(address) {
		return core.ErrInvalidSignature
	}
	return nil
}

func personalDigest(payload []byte) []byte {
	prefix := fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(payload))
	return crypto.Keccak256(append([]byte(prefix), payload...))
}

var _ ports.WalletScheme = (*Ethereum)(nil)
