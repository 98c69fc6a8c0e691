package account

import (
	"net/http"
	"strings"

	"accounts/internal/pkg/jwt"

	"github.com/google/uuid"
)

// State is the authentication state derived from one request. Handlers
// switch on the concrete variant; there is no middleware that aborts
// the request beforehand, so every operation decides for itself what
// each state means.
type State interface {
	isAuthState()
}

// Anonymous — no credentials presented.
type Anonymous struct{}

// Authenticated — a valid unexpired access token named this subject.
type Authenticated struct {
	UserUUID uuid.UUID
}

// Rejected — credentials were presented but did not hold up.
type Rejected struct {
	Reason error
}

func (Anonymous) isAuthState()     {}
func (Authenticated) isAuthState() {}
func (Rejected) isAuthState()      {}

// Authenticator derives the auth state of a request from its
// Authorization header.
type Authenticator struct {
	tokens *TokenService
}

func NewAuthenticator(tokens *TokenService) *Authenticator {
	return &Authenticator{tokens: tokens}
}

func (a *Authenticator) StateOf(r *http.Request) State {
	header := r.Header.Get("Authorization")
	if header == "" {
		return Anonymous{}
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return Rejected{Reason: jwt.ErrTokenInvalid}
	}

	userUUID, err := a.tokens.Authenticate(parts[1])
	if err != nil {
		return Rejected{Reason: err}
	}
	return Authenticated{UserUUID: userUUID}
}
