package ports

// WalletScheme couples an address encoding with its signature algorithm.
// Implementations report malformed addresses with core.ErrMalformedAddress
// and failed verification with core.ErrInvalidSignature.
type WalletScheme interface {
	// Name identifies the scheme, e.g. "ed25519".
	Name() string
	// DecodeAddress parses the string form into raw key or account bytes.
	DecodeAddress(address string) ([]byte, error)
	// EncodeAddress renders raw bytes into the canonical string form.
	EncodeAddress(raw []byte) string
	// Verify checks signature over payload against the given address.
	Verify(address string, payload, signature []byte) error
}
