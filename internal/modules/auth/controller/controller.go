package controller

import (
	"github.com/go-chi/chi/v5"

	"rainwatch-server/internal/modules/auth/password"
	"rainwatch-server/internal/modules/auth/repository"
	"rainwatch-server/internal/modules/auth/token"
)

type AuthController interface {
	RegisterRoutes(r chi.Router)
}

type authControllerImpl struct {
	users         repository.UserRepository
	hasher        *password.Hasher
	tokens        *token.Service
	secureCookies bool
}

func NewAuthController(users repository.UserRepository, hasher *password.Hasher, tokens *token.Service, secureCookies bool) AuthController {
	return &authControllerImpl{
		users:         users,
		hasher:        hasher,
		tokens:        tokens,
		secureCookies: secureCookies,
	}
}

func (c *authControllerImpl) RegisterRoutes(r chi.Router) {
	r.Get("/login", c.handleLoginPage)
	r.Post("/login", c.handleLogin)
	r.Get("/signup", c.handleSignupPage)
	r.Post("/signup", c.handleSignup)
	r.Get("/logout", c.handleLogout)
}
