// Package http adapts the authentication engine to net/http. The
// middleware answers unauthenticated requests with a challenge, rejects
// failed responses and passes authenticated ones through with the wallet
// identity in the request context.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-softwarelab/common/pkg/optional"
	"github.com/go-softwarelab/common/pkg/to"

	"github.com/webx403/webx403-go/codec"
	"github.com/webx403/webx403-go/core"
	"github.com/webx403/webx403-go/internal/logging"
	"github.com/webx403/webx403-go/service"
)

// DefaultRealm names the protection space advertised in WWW-Authenticate.
const DefaultRealm = "webx403"

// Options tune the middleware around the engine.
type Options struct {
	Realm  string
	Logger *slog.Logger
}

// WithRealm overrides the advertised realm.
func WithRealm(realm string) func(*Options) {
	return func(o *Options) { o.Realm = realm }
}

// WithLogger sets the middleware logger.
func WithLogger(logger *slog.Logger) func(*Options) {
	return func(o *Options) { o.Logger = logger }
}

// Middleware guards handlers with wallet authentication.
type Middleware struct {
	engine *service.Engine
	realm  string
	log    *slog.Logger
}

// NewMiddleware creates middleware on top of an engine.
func NewMiddleware(engine *service.Engine, opts ...func(*Options)) *Middleware {
	o := to.OptionsWithDefault(Options{Realm: DefaultRealm}, opts...)
	return &Middleware{
		engine: engine,
		realm:  o.Realm,
		log:    logging.Child(o.Logger, "http"),
	}
}

// Handler wraps next so it only runs for authenticated requests.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := optional.OfValue(r.Context()).OrElseGet(context.Background)

		result, err := m.engine.Evaluate(ctx, Descriptor(r), r.Header.Get("Authorization"))
		if err != nil {
			m.log.ErrorContext(ctx, "engine evaluation failed", logging.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "internal"})
			return
		}

		switch result.Decision {
		case core.DecisionChallenge:
			w.Header().Set("WWW-Authenticate", codec.FormatChallengeHeader(m.realm, result.Challenge))
			writeJSON(w, http.StatusForbidden, map[string]string{
				"error":     "challenge_required",
				"challenge": result.Challenge,
			})
		case core.DecisionRejected:
			writeJSON(w, http.StatusForbidden, map[string]string{
				"error": core.ReasonCode(result.Err),
			})
		case core.DecisionAuthenticated:
			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, result.Wallet)))
		}
	})
}

// Descriptor extracts the request properties a challenge can bind to.
// The path keeps its URL escaping so the bound form is exactly what the
// client requested, query strings are never included.
func Descriptor(r *http.Request) core.RequestDescriptor {
	return core.RequestDescriptor{
		Method: r.Method,
		Path:   r.URL.EscapedPath(),
		Origin: r.Header.Get("Origin"),
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
