// Package ginadapter exposes the wallet authentication middleware as a
// Gin handler. It wraps the net/http middleware rather than reimplement
// the decision flow.
package ginadapter

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/webx403/webx403-go/service"
	httptransport "github.com/webx403/webx403-go/transport/http"
)

// WalletAddressKey is the gin context key holding the authenticated
// wallet address.
const WalletAddressKey = "walletAddress"

// Middleware creates a Gin handler enforcing wallet authentication.
func Middleware(engine *service.Engine, opts ...func(*httptransport.Options)) gin.HandlerFunc {
	mw := httptransport.NewMiddleware(engine, opts...)

	return func(c *gin.Context) {
		handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Request = r
			if wallet, ok := httptransport.IdentityFromContext(r.Context()); ok {
				c.Set(WalletAddressKey, wallet.Address)
			}
			c.Next()
		}))

		handler.ServeHTTP(c.Writer, c.Request)

		if c.Writer.Written() {
			c.Abort()
		}
	}
}

// WalletAddress returns the authenticated wallet address set by the
// middleware.
func WalletAddress(c *gin.Context) (string, bool) {
	value, ok := c.Get(WalletAddressKey)
	if !ok {
		return "", false
	}
	address, ok := value.(string)
	return address, ok
}
