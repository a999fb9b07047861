package http

import (
	"context"

	"github.com/webx403/webx403-go/core"
)

type contextKey struct{}

var identityKey contextKey

// WithIdentity returns a context carrying the authenticated wallet.
func WithIdentity(ctx context.Context, wallet core.WalletIdentity) context.Context {
	return context.WithValue(ctx, identityKey, wallet)
}

// IdentityFromContext retrieves the authenticated wallet from the request
// context. The second return is false on handlers reached without the
// middleware.
func IdentityFromContext(ctx context.Context) (core.WalletIdentity, bool) {
	wallet, ok := ctx.Value(identityKey).(core.WalletIdentity)
	return wallet, ok
}
