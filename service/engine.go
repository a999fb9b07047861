// Package service implements the authentication flow on top of the ports:
// minting challenges, verifying signed responses and deciding requests.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-softwarelab/common/pkg/to"

	"github.com/webx403/webx403-go/adapters/scheme"
	"github.com/webx403/webx403-go/adapters/store"
	"github.com/webx403/webx403-go/codec"
	"github.com/webx403/webx403-go/core"
	"github.com/webx403/webx403-go/internal/logging"
)

// Engine turns one incoming request into one authentication decision.
// It is stateless apart from the replay store and safe for concurrent use.
type Engine struct {
	cfg      Config
	issuer   *Issuer
	verifier *Verifier
	log      *slog.Logger

	ownedStore *store.MemoryStore
}

// NewEngine builds an engine for the given audience. Unset options fall
// back to defaults: ed25519 wallets, an in-memory replay store, a 60
// second challenge lifetime with 120 seconds of tolerated clock skew and
// method/path binding switched on.
func NewEngine(audience string, opts ...func(*Config)) (*Engine, error) {
	cfg := to.OptionsWithDefault(Config{
		Issuer:      DefaultIssuer,
		Audience:    audience,
		TTL:         DefaultTTL,
		ClockSkew:   DefaultClockSkew,
		BindRequest: true,
		Now:         time.Now,
	}, opts...)

	if cfg.Scheme == nil {
		cfg.Scheme = scheme.NewEd25519()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	var owned *store.MemoryStore
	if cfg.Replay == nil {
		s, err := store.NewMemoryStore(store.DefaultCapacity)
		if err != nil {
			return nil, fmt.Errorf("failed to create default replay store: %w", err)
		}
		cfg.Replay = s
		owned = s
	}

	if err := cfg.validate(); err != nil {
		if owned != nil {
			owned.Close()
		}
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}

	return &Engine{
		cfg:        cfg,
		issuer:     NewIssuer(cfg),
		verifier:   NewVerifier(cfg),
		log:        logging.Child(cfg.Logger, "engine"),
		ownedStore: owned,
	}, nil
}

// Evaluate decides one request. An empty authorization mints a challenge,
// anything else is parsed, verified and optionally gated. The returned
// error is reserved for internal failures such as exhausted entropy,
// protocol-level rejections travel inside the result.
func (e *Engine) Evaluate(ctx context.Context, desc core.RequestDescriptor, authorization string) (core.AuthResult, error) {
	if strings.TrimSpace(authorization) == "" {
		_, token, err := e.issuer.Issue(desc)
		if err != nil {
			return core.AuthResult{}, fmt.Errorf("failed to issue challenge: %w", err)
		}
		e.log.DebugContext(ctx, "challenge issued",
			slog.String("method", desc.Method),
			slog.String("path", desc.Path))
		return core.ChallengeRequired(token), nil
	}

	sr, err := codec.ParseAuthorization(authorization)
	if err != nil {
		return e.reject(ctx, desc, "", err), nil
	}

	identity, err := e.verifier.Verify(ctx, sr, desc, e.cfg.Now())
	if err != nil {
		return e.reject(ctx, desc, sr.Address, err), nil
	}

	if e.cfg.Gate != nil {
		allowed, gateErr := e.cfg.Gate.Allow(ctx, identity.Address)
		if gateErr != nil {
			return e.reject(ctx, desc, identity.Address, fmt.Errorf("%v: %w", gateErr, core.ErrGateError)), nil
		}
		if !allowed {
			return e.reject(ctx, desc, identity.Address, core.ErrGateDenied), nil
		}
	}

	e.log.InfoContext(ctx, "wallet authenticated",
		slog.String("address", identity.Address),
		slog.String("method", desc.Method),
		slog.String("path", desc.Path))
	e.publish(ctx, core.AuthEvent{
		Decision: core.DecisionAuthenticated,
		Address:  identity.Address,
		Method:   desc.Method,
		Path:     desc.Path,
		Origin:   desc.Origin,
		At:       e.cfg.Now(),
	})
	return core.Authenticated(identity), nil
}

// Close releases resources the engine owns, currently the default replay
// store when none was supplied. Engines built on an external store need
// no Close.
func (e *Engine) Close() {
	if e.ownedStore != nil {
		e.ownedStore.Close()
	}
}

func (e *Engine) reject(ctx context.Context, desc core.RequestDescriptor, address string, cause error) core.AuthResult {
	e.log.WarnContext(ctx, "authentication rejected",
		slog.String("reason", core.ReasonCode(cause)),
		slog.String("method", desc.Method),
		slog.String("path", desc.Path),
		logging.Error(cause))
	e.publish(ctx, core.AuthEvent{
		Decision: core.DecisionRejected,
		Address:  address,
		Method:   desc.Method,
		Path:     desc.Path,
		Origin:   desc.Origin,
		Reason:   core.ReasonCode(cause),
		At:       e.cfg.Now(),
	})
	return core.Rejected(cause)
}

func (e *Engine) publish(ctx context.Context, event core.AuthEvent) {
	if e.cfg.Events == nil {
		return
	}
	if err := e.cfg.Events.PublishAuthEvent(ctx, event); err != nil {
		e.log.WarnContext(ctx, "failed to publish auth event", logging.Error(err))
	}
}
