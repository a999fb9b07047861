package ports

import "context"

// TokenGate adds an authorization layer on top of authentication: after a
// wallet proves control of its key, the gate decides whether that wallet
// may proceed, typically by consulting holdings or an allowlist.
type TokenGate interface {
	// Allow reports whether the authenticated address is admitted.
	// Returning an error means the gate could not decide, which is
	// distinct from a deny.
	Allow(ctx context.Context, address string) (bool, error)
}

// TokenGateFunc adapts a plain function to the TokenGate interface.
type TokenGateFunc func(ctx context.Context, address string) (bool, error)

// Allow implements TokenGate.
func (f TokenGateFunc) Allow(ctx context.Context, address string) (bool, error) {
	return f(ctx, address)
}
