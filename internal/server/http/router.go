// Package http is the REST adapter of the server. Every request resolves a
// principal from the session cookie, passes the feature gate of its route and
// answers with a projection of the result.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/fintab/internal/common"
	"github.com/dmitrijs2005/fintab/internal/logging"
	"github.com/dmitrijs2005/fintab/internal/server/features"
	"github.com/dmitrijs2005/fintab/internal/server/migrator"
	"github.com/dmitrijs2005/fintab/internal/server/services"
)

// Deps are the collaborators of the HTTP adapter.
type Deps struct {
	Log           logging.Logger
	Credentials   *services.CredentialService
	Sessions      *services.SessionService
	Activations   *services.ActivationService
	Users         *services.UserService
	Status        *services.StatusService
	Migrator      migrator.Migrator
	SecureCookies bool
}

type Handler struct {
	log           logging.Logger
	credentials   *services.CredentialService
	sessions      *services.SessionService
	activations   *services.ActivationService
	users         *services.UserService
	status        *services.StatusService
	migrator      migrator.Migrator
	secureCookies bool
	cookieMaxAge  int
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		log:           d.Log.With("module", "http"),
		credentials:   d.Credentials,
		sessions:      d.Sessions,
		activations:   d.Activations,
		users:         d.Users,
		status:        d.Status,
		migrator:      d.Migrator,
		secureCookies: d.SecureCookies,
		cookieMaxAge:  int(d.Sessions.TTL() / time.Second),
	}
}

// NewRouter registers the /api/v1 routes and the middleware stack.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(h.recoverMiddleware)
	r.Use(h.loggingMiddleware)

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, r, common.NewMethodNotAllowedError())
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, r, common.NewNotFoundError("", ""))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(h.injectPrincipal)

		r.Get("/status", h.getStatus)

		r.With(h.canRequest(features.ReadMigration)).Get("/migrations", h.listMigrations)
		r.With(h.canRequest(features.CreateMigration)).Post("/migrations", h.runMigrations)

		r.With(h.canRequest(features.CreateUser)).Post("/users", h.createUser)
		r.Get("/users/{username}", h.getUser)
		r.With(h.canRequest(features.UpdateUser)).Patch("/users/{username}", h.updateUser)

		r.With(h.canRequest(features.ReadSession)).Get("/user", h.getCurrentUser)

		r.With(h.canRequest(features.CreateSession)).Post("/sessions", h.createSession)
		r.Delete("/sessions", h.deleteSession)

		r.With(h.canRequest(features.ReadActivationToken)).Patch("/activations/{token_id}", h.activate)
	})

	return r
}
