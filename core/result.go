package core

import "time"

// Decision classifies the outcome of evaluating one request.
type Decision string

const (
	// DecisionChallenge means the request carried no authorization and a
	// fresh challenge was minted for the caller to sign.
	DecisionChallenge Decision = "challenge"
	// DecisionAuthenticated means the signed response passed every check.
	DecisionAuthenticated Decision = "authenticated"
	// DecisionRejected means the signed response failed a check and the
	// request must be denied.
	DecisionRejected Decision = "rejected"
)

// AuthResult is the outcome of evaluating a single request. Exactly one of
// Challenge, Wallet or Err is meaningful, selected by Decision.
type AuthResult struct {
	Decision  Decision
	Challenge string         // encoded challenge token when Decision is DecisionChallenge
	Wallet    WalletIdentity // authenticated wallet when Decision is DecisionAuthenticated
	Err       error          // rejection cause when Decision is DecisionRejected
}

// ChallengeRequired builds the result for a request without authorization.
func ChallengeRequired(token string) AuthResult {
	return AuthResult{Decision: DecisionChallenge, Challenge: token}
}

// Authenticated builds the result for a fully verified signed response.
func Authenticated(wallet WalletIdentity) AuthResult {
	return AuthResult{Decision: DecisionAuthenticated, Wallet: wallet}
}

// Rejected builds the result for a signed response that failed verification.
func Rejected(err error) AuthResult {
	return AuthResult{Decision: DecisionRejected, Err: err}
}

// AuthEvent describes one authentication decision for downstream consumers.
type AuthEvent struct {
	Decision Decision  `json:"decision"`
	Address  string    `json:"address,omitempty"`
	Method   string    `json:"method,omitempty"`
	Path     string    `json:"path,omitempty"`
	Origin   string    `json:"origin,omitempty"`
	Reason   string    `json:"reason,omitempty"`
	At       time.Time `json:"at"`
}
