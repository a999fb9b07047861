package core

import "errors"

var (
	ErrMalformedChallenge     = errors.New("malformed challenge")
	ErrMalformedAddress       = errors.New("malformed wallet address")
	ErrMalformedAuthorization = errors.New("malformed authorization header")
	ErrInvalidSignature       = errors.New("invalid signature")
	ErrChallengeExpired       = errors.New("challenge expired")
	ErrIssuerMismatch         = errors.New("challenge issuer mismatch")
	ErrAudienceMismatch       = errors.New("challenge audience mismatch")
	ErrBindingMismatch        = errors.New("request binding mismatch")
	ErrOriginMismatch         = errors.New("origin mismatch")
	ErrNonceReplayed          = errors.New("challenge nonce already used")
	ErrReplayUnavailable      = errors.New("replay store unavailable")
	ErrGateDenied             = errors.New("token gate denied")
	ErrGateError              = errors.New("token gate check failed")
)

// ReasonCode maps a rejection cause to a stable machine-readable code
// suitable for response bodies and emitted events. Unknown errors map to
// "rejected" so internals never leak to callers.
func ReasonCode(err error) string {
	switch {
	case errors.Is(err, ErrMalformedChallenge):
		return "malformed_challenge"
	case errors.Is(err, ErrMalformedAddress):
		return "malformed_address"
	case errors.Is(err, ErrMalformedAuthorization):
		return "malformed_authorization"
	case errors.Is(err, ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, ErrChallengeExpired):
		return "challenge_expired"
	case errors.Is(err, ErrIssuerMismatch):
		return "issuer_mismatch"
	case errors.Is(err, ErrAudienceMismatch):
		return "audience_mismatch"
	case errors.Is(err, ErrBindingMismatch):
		return "binding_mismatch"
	case errors.Is(err, ErrOriginMismatch):
		return "origin_mismatch"
	case errors.Is(err, ErrNonceReplayed):
		return "nonce_replayed"
	case errors.Is(err, ErrReplayUnavailable):
		return "replay_unavailable"
	case errors.Is(err, ErrGateDenied):
		return "gate_denied"
	case errors.Is(err, ErrGateError):
		return "gate_error"
	default:
		return "rejected"
	}
}
