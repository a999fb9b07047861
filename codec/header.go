package codec

import (
	"fmt"
	"strings"

	"github.com/webx403/webx403-go/core"
)

// AuthScheme is the authentication scheme name used in Authorization and
// WWW-Authenticate headers. Scheme comparison is case-insensitive.
const AuthScheme = "WebX403"

// FormatChallengeHeader renders the WWW-Authenticate value advertising a
// freshly minted challenge.
func FormatChallengeHeader(realm, token string) string {
	return fmt.Sprintf(`%s realm=%q, version="%d", challenge=%q`, AuthScheme, realm, core.ProtocolVersion, token)
}

// ParseChallengeHeader extracts the challenge token from a
// WWW-Authenticate value. A header carrying a different scheme is an
// error, callers treat it as "not ours" and stop.
func ParseChallengeHeader(header string) (string, error) {
	params, err := parseSchemeParams(header)
	if err != nil {
		return "", err
	}
	token, ok := params["challenge"]
	if !ok || token == "" {
		return "", fmt.Errorf("challenge header missing challenge parameter")
	}
	return token, nil
}

// FormatAuthorization renders the Authorization value a client sends back:
// the untouched challenge token, the wallet address and the signature in
// base64url.
func FormatAuthorization(sr core.SignedResponse) string {
	sig := tokenEncoding.EncodeToString(sr.Signature)
	return fmt.Sprintf(`%s challenge=%q, address=%q, signature=%q`, AuthScheme, sr.ChallengeToken, sr.Address, sig)
}

// ParseAuthorization parses an Authorization value into a signed response.
// Structural problems with the header itself yield
// core.ErrMalformedAuthorization, the embedded token and address are
// validated later by the verifier.
func ParseAuthorization(header string) (core.SignedResponse, error) {
	params, err := parseSchemeParams(header)
	if err != nil {
		return core.SignedResponse{}, fmt.Errorf("%v: %w", err, core.ErrMalformedAuthorization)
	}
	var sr core.SignedResponse
	var ok bool
	if sr.ChallengeToken, ok = params["challenge"]; !ok || sr.ChallengeToken == "" {
		return core.SignedResponse{}, fmt.Errorf("missing challenge parameter: %w", core.ErrMalformedAuthorization)
	}
	if sr.Address, ok = params["address"]; !ok || sr.Address == "" {
		return core.SignedResponse{}, fmt.Errorf("missing address parameter: %w", core.ErrMalformedAuthorization)
	}
	sig, ok := params["signature"]
	if !ok || sig == "" {
		return core.SignedResponse{}, fmt.Errorf("missing signature parameter: %w", core.ErrMalformedAuthorization)
	}
	if sr.Signature, err = tokenEncoding.DecodeString(sig); err != nil {
		return core.SignedResponse{}, fmt.Errorf("signature is not base64url: %w", core.ErrMalformedAuthorization)
	}
	return sr, nil
}

// parseSchemeParams splits a `WebX403 key="value", ...` header into its
// parameters. Values in this grammar are base64url tokens, addresses and
// signatures, none of which contain quotes or commas, so no escaping is
// involved. Unknown keys are ignored, duplicate keys are rejected.
func parseSchemeParams(header string) (map[string]string, error) {
	scheme, rest, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, AuthScheme) {
		return nil, fmt.Errorf("scheme is not %s", AuthScheme)
	}
	params := make(map[string]string, 3)
	for _, part := range strings.Split(rest, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("empty parameter")
		}
		key, value, found := strings.Cut(part, "=")
		if !found {
			return nil, fmt.Errorf("parameter %q has no value", part)
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if len(value) < 2 || value[0] != '"' || value[len(value)-1] != '"' {
			return nil, fmt.Errorf("parameter %q is not quoted", key)
		}
		if _, dup := params[key]; dup {
			return nil, fmt.Errorf("duplicate parameter %q", key)
		}
		params[key] = value[1 : len(value)-1]
	}
	return params, nil
}
