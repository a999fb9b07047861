package http_test

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/webx403/webx403-go/client"
	"github.com/webx403/webx403-go/codec"
	"github.com/webx403/webx403-go/service"
	httptransport "github.com/webx403/webx403-go/transport/http"
)

func newEngine(t *testing.T, opts ...func(*service.Config)) *service.Engine {
	t.Helper()
	opts = append(opts, service.WithLogger(slog.New(slog.DiscardHandler)))
	engine, err := service.NewEngine("http://localhost:9000", opts...)
	require.NoError(t, err)
	t.Cleanup(engine.Close)
	return engine
}

// newServer guards /api/me and /api/other with the middleware. Both
// handlers echo the wallet address placed in the request context.
func newServer(t *testing.T, engine *service.Engine, opts ...func(*httptransport.Options)) *httptest.Server {
	t.Helper()
	opts = append(opts, httptransport.WithLogger(slog.New(slog.DiscardHandler)))
	mw := httptransport.NewMiddleware(engine, opts...)

	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wallet, ok := httptransport.IdentityFromContext(r.Context())
		if !ok {
			http.Error(w, "no identity in context", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"address": wallet.Address})
	})

	mux := http.NewServeMux()
	mux.Handle("/api/me", mw.Handler(echo))
	mux.Handle("/api/other", mw.Handler(echo))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newClient(t *testing.T) *client.Client {
	t.Helper()
	_, key, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return client.New(key)
}

func decodeBody(t *testing.T, resp *http.Response) map[string]string {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func get(t *testing.T, url, authorization, origin string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestMiddlewareIssuesAChallenge(t *testing.T) {
	server := newServer(t, newEngine(t))

	resp := get(t, server.URL+"/api/me", "", "")
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	token, err := codec.ParseChallengeHeader(resp.Header.Get("WWW-Authenticate"))
	require.NoError(t, err)

	body := decodeBody(t, resp)
	require.Equal(t, "challenge_required", body["error"])
	require.Equal(t, token, body["challenge"])

	c, err := codec.DecodeChallenge(token)
	require.NoError(t, err)
	require.Equal(t, "GET", c.Method)
	require.Equal(t, "/api/me", c.Path)
}

func TestMiddlewareAdvertisesTheRealm(t *testing.T) {
	server := newServer(t, newEngine(t), httptransport.WithRealm("api"))

	resp := get(t, server.URL+"/api/me", "", "")
	defer resp.Body.Close()
	require.Contains(t, resp.Header.Get("WWW-Authenticate"), `realm="api"`)
	require.True(t, strings.HasPrefix(resp.Header.Get("WWW-Authenticate"), codec.AuthScheme+" "))
}

func TestMiddlewareAuthenticatesASignedChallenge(t *testing.T) {
	server := newServer(t, newEngine(t))
	wallet := newClient(t)

	resp := get(t, server.URL+"/api/me", "", "")
	token, err := codec.ParseChallengeHeader(resp.Header.Get("WWW-Authenticate"))
	require.NoError(t, err)
	resp.Body.Close()

	authorization, err := wallet.Authorize(token)
	require.NoError(t, err)

	resp = get(t, server.URL+"/api/me", authorization, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, wallet.Address(), decodeBody(t, resp)["address"])
}

func TestMiddlewareRejectsReplayedAuthorizations(t *testing.T) {
	server := newServer(t, newEngine(t))
	wallet := newClient(t)

	resp := get(t, server.URL+"/api/me", "", "")
	token, err := codec.ParseChallengeHeader(resp.Header.Get("WWW-Authenticate"))
	require.NoError(t, err)
	resp.Body.Close()

	authorization, err := wallet.Authorize(token)
	require.NoError(t, err)

	resp = get(t, server.URL+"/api/me", authorization, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = get(t, server.URL+"/api/me", authorization, "")
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Equal(t, "nonce_replayed", decodeBody(t, resp)["error"])
}

func TestMiddlewareEnforcesRequestBinding(t *testing.T) {
	server := newServer(t, newEngine(t))
	wallet := newClient(t)

	resp := get(t, server.URL+"/api/me", "", "")
	token, err := codec.ParseChallengeHeader(resp.Header.Get("WWW-Authenticate"))
	require.NoError(t, err)
	resp.Body.Close()

	authorization, err := wallet.Authorize(token)
	require.NoError(t, err)

	// The challenge was minted for /api/me and cannot unlock /api/other.
	resp = get(t, server.URL+"/api/other", authorization, "")
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Equal(t, "binding_mismatch", decodeBody(t, resp)["error"])
}

func TestMiddlewareEnforcesOriginBinding(t *testing.T) {
	server := newServer(t, newEngine(t, service.WithOriginBinding(true)))
	wallet := newClient(t)

	resp := get(t, server.URL+"/api/me", "", "https://app.example.com")
	token, err := codec.ParseChallengeHeader(resp.Header.Get("WWW-Authenticate"))
	require.NoError(t, err)
	resp.Body.Close()

	authorization, err := wallet.Authorize(token)
	require.NoError(t, err)

	resp = get(t, server.URL+"/api/me", authorization, "https://evil.example.com")
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Equal(t, "origin_mismatch", decodeBody(t, resp)["error"])

	resp = get(t, server.URL+"/api/me", "", "https://app.example.com")
	token, err = codec.ParseChallengeHeader(resp.Header.Get("WWW-Authenticate"))
	require.NoError(t, err)
	resp.Body.Close()

	authorization, err = wallet.Authorize(token)
	require.NoError(t, err)

	resp = get(t, server.URL+"/api/me", authorization, "https://app.example.com")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestMiddlewareWorksWithTheTransparentClient(t *testing.T) {
	server := newServer(t, newEngine(t))
	wallet := newClient(t)

	req, err := http.NewRequest(http.MethodGet, server.URL+"/api/me", nil)
	require.NoError(t, err)

	resp, err := wallet.Do(server.Client(), req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, wallet.Address(), decodeBody(t, resp)["address"])
}
