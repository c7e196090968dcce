package auth

import (
	"database/sql"

	"github.com/go-chi/chi/v5"

	"rainwatch-server/internal/config"
	"rainwatch-server/internal/modules/auth/controller"
	"rainwatch-server/internal/modules/auth/password"
	"rainwatch-server/internal/modules/auth/repository"
	"rainwatch-server/internal/modules/auth/session"
	"rainwatch-server/internal/modules/auth/token"
)

// RegisterFeature wires the auth module onto the router and returns the
// session resolver other modules use to identify the current user.
func RegisterFeature(r chi.Router, db *sql.DB, cfg config.Config) *session.Resolver {
	users := repository.NewRepository(db)
	hasher := password.NewHasher(0)
	tokens := token.NewService(cfg.AuthSecret, cfg.AuthTokenTTL)

	authController := controller.NewAuthController(users, hasher, tokens, cfg.AppEnv == "prod")
	authController.RegisterRoutes(r)

	return session.NewResolver(tokens, users)
}
