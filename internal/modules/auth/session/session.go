package session

import (
	"net/http"
	"time"

	"rainwatch-server/internal/modules/auth/repository"
	"rainwatch-server/internal/modules/auth/token"
	"rainwatch-server/internal/modules/auth/types"
)

// CookieName carries the signed session token.
const CookieName = "access_token"

// Resolver turns an incoming request into the signed-in user, if any.
type Resolver struct {
	tokens *token.Service
	users  repository.UserRepository
}

func NewResolver(tokens *token.Service, users repository.UserRepository) *Resolver {
	return &Resolver{tokens: tokens, users: users}
}

// Resolve returns the current user or nil. A missing cookie, a rejected
// token (expired, tampered or malformed) and an unknown subject all mean
// "not signed in"; only storage failures return an error.
func (r *Resolver) Resolve(req *http.Request) (*types.User, error) {
	c, err := req.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return nil, nil
	}
	subject, err := r.tokens.Validate(c.Value)
	if err != nil {
		return nil, nil
	}
	return r.users.GetByUsername(subject)
}

// SetCookie installs the session cookie. HttpOnly and SameSite=Lax always;
// Secure only when the deployment is behind TLS (prod).
func SetCookie(w http.ResponseWriter, tokenValue string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    tokenValue,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
