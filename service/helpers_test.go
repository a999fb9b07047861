package service_test

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/webx403/webx403-go/adapters/scheme"
	"github.com/webx403/webx403-go/adapters/store"
	"github.com/webx403/webx403-go/codec"
	"github.com/webx403/webx403-go/core"
	"github.com/webx403/webx403-go/ports"
	"github.com/webx403/webx403-go/service"
)

const (
	testIssuer   = "test"
	testAudience = "http://localhost:9000"
)

var testNow = time.Unix(1_700_000_000, 0)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

type wallet struct {
	key     ed25519.PrivateKey
	address string
}

func newWallet(t *testing.T) wallet {
	t.Helper()
	pub, key, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return wallet{
		key:     key,
		address: scheme.NewEd25519().EncodeAddress(pub),
	}
}

// sign produces the signed response a well-behaved client would send back
// for the given challenge token.
func (w wallet) sign(t *testing.T, token string) core.SignedResponse {
	t.Helper()
	payload, err := codec.SigningPayloadFromToken(token)
	require.NoError(t, err)
	return core.SignedResponse{
		ChallengeToken: token,
		Address:        w.address,
		Signature:      ed25519.Sign(w.key, payload),
	}
}

func testConfig(t *testing.T) service.Config {
	t.Helper()
	replay, err := store.NewMemoryStore(0)
	require.NoError(t, err)
	t.Cleanup(replay.Close)
	return service.Config{
		Issuer:      testIssuer,
		Audience:    testAudience,
		TTL:         60 * time.Second,
		ClockSkew:   120 * time.Second,
		BindRequest: true,
		Scheme:      scheme.NewEd25519(),
		Replay:      replay,
		Now:         fixedClock(testNow),
	}
}

// failingStore simulates a replay backend outage.
type failingStore struct {
	err error
}

func (s failingStore) CheckAndReserve(context.Context, string, time.Duration) (ports.ReplayOutcome, error) {
	return ports.ReplayAlreadyUsed, s.err
}

var errStoreDown = errors.New("connection refused")
