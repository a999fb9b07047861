package service

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/webx403/webx403-go/ports"
)

// Defaults applied by NewEngine for fields the options leave unset.
const (
	DefaultIssuer    = "webx403"
	DefaultTTL       = 60 * time.Second
	DefaultClockSkew = 120 * time.Second
)

// Config collects the policy and the ports the engine runs on. Zero values
// are filled with defaults by NewEngine, only Audience must be supplied.
type Config struct {
	// Issuer names this deployment inside minted challenges.
	Issuer string
	// Audience is the origin of the protected service. Challenges minted
	// for a different audience are rejected even when their signature is
	// valid.
	Audience string
	// TTL is the challenge validity window, whole seconds.
	TTL time.Duration
	// ClockSkew widens the validity window on both ends to tolerate
	// client clocks that run ahead or behind.
	ClockSkew time.Duration
	// BindRequest pins minted challenges to the method and path of the
	// request that triggered them.
	BindRequest bool
	// BindOrigin pins minted challenges to the Origin header when the
	// request carries one.
	BindOrigin bool

	Scheme ports.WalletScheme
	Replay ports.ReplayStore
	Gate   ports.TokenGate
	Events ports.EventPublisher
	Logger *slog.Logger
	Now    func() time.Time
}

// WithIssuer overrides the issuer name embedded in minted challenges.
func WithIssuer(issuer string) func(*Config) {
	return func(c *Config) { c.Issuer = issuer }
}

// WithTTL overrides the challenge validity window.
func WithTTL(ttl time.Duration) func(*Config) {
	return func(c *Config) { c.TTL = ttl }
}

// WithClockSkew overrides the tolerated client clock drift.
func WithClockSkew(skew time.Duration) func(*Config) {
	return func(c *Config) { c.ClockSkew = skew }
}

// WithRequestBinding toggles method and path binding, on by default.
func WithRequestBinding(enabled bool) func(*Config) {
	return func(c *Config) { c.BindRequest = enabled }
}

// WithOriginBinding toggles Origin header binding, off by default.
func WithOriginBinding(enabled bool) func(*Config) {
	return func(c *Config) { c.BindOrigin = enabled }
}

// WithScheme replaces the default ed25519 wallet scheme.
func WithScheme(scheme ports.WalletScheme) func(*Config) {
	return func(c *Config) { c.Scheme = scheme }
}

// WithReplayStore replaces the default in-memory replay store.
func WithReplayStore(store ports.ReplayStore) func(*Config) {
	return func(c *Config) { c.Replay = store }
}

// WithTokenGate installs a gate consulted after signature verification.
func WithTokenGate(gate ports.TokenGate) func(*Config) {
	return func(c *Config) { c.Gate = gate }
}

// WithEventPublisher installs a publisher for authentication decisions.
func WithEventPublisher(pub ports.EventPublisher) func(*Config) {
	return func(c *Config) { c.Events = pub }
}

// WithLogger sets the logger, slog.Default is used otherwise.
func WithLogger(logger *slog.Logger) func(*Config) {
	return func(c *Config) { c.Logger = logger }
}

// WithClock replaces the time source, used in tests.
func WithClock(now func() time.Time) func(*Config) {
	return func(c *Config) { c.Now = now }
}

func (c *Config) validate() error {
	if c.Audience == "" {
		return fmt.Errorf("audience is required")
	}
	if c.Issuer == "" {
		return fmt.Errorf("issuer must not be empty")
	}
	if c.TTL < time.Second {
		return fmt.Errorf("ttl must be at least one second")
	}
	if c.ClockSkew < 0 {
		return fmt.Errorf("clock skew must not be negative")
	}
	if c.Scheme == nil {
		return fmt.Errorf("wallet scheme is required")
	}
	if c.Replay == nil {
		return fmt.Errorf("replay store is required")
	}
	return nil
}
