package httpapi

import (
	"database/sql"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// NewRouter builds the shared router: CORS for the JSON API, the health
// endpoint and static assets. Feature modules register their routes on it.
func NewRouter(db *sql.DB, staticDir string) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "deviceCode"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	registerHealthcheck(r, db)

	if staticDir != "" {
		if _, err := os.Stat(staticDir); err == nil {
			fileServer := http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir)))
			r.Handle("/static/*", fileServer)
		}
	}

	return r
}
