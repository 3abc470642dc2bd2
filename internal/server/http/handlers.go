package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/fintab/internal/common"
	"github.com/dmitrijs2005/fintab/internal/server/features"
	"github.com/dmitrijs2005/fintab/internal/server/services"
)

type createSessionRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, status int, p *features.Principal, f features.Feature, resource any) {
	view, err := features.Project(p, f, resource)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, status, view)
}

func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.status.Get(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, features.PrincipalFrom(r.Context()), features.ReadStatus, status)
}

func (h *Handler) listMigrations(w http.ResponseWriter, r *http.Request) {
	pending, err := h.migrator.ListPending(r.Context())
	if err != nil {
		h.writeError(w, r, common.NewServiceError("The migrations could not be listed", err))
		return
	}
	h.respond(w, r, http.StatusOK, features.PrincipalFrom(r.Context()), features.ReadMigration, pending)
}

func (h *Handler) runMigrations(w http.ResponseWriter, r *http.Request) {
	applied, err := h.migrator.RunPending(r.Context())
	if err != nil {
		h.writeError(w, r, common.NewServiceError("The migrations could not be applied", err))
		return
	}
	status := http.StatusOK
	if len(applied) > 0 {
		status = http.StatusCreated
	}
	h.log.Info(r.Context(), "migrations applied", "count", len(applied))
	h.respond(w, r, status, features.PrincipalFrom(r.Context()), features.ReadMigration, applied)
}

// createUser registers a pending user and mails the activation link.
func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var in services.CreateUserInput
	if err := decodeBody(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.users.Create(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	token, err := h.activations.Create(r.Context(), user.ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.activations.SendActivationEmail(r.Context(), user, token); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.log.Info(r.Context(), "user created", "user_id", user.ID.String())
	h.respond(w, r, http.StatusCreated, features.PrincipalFrom(r.Context()), features.ReadUser, user)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.FindByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, features.PrincipalFrom(r.Context()), features.ReadUser, user)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	p := features.PrincipalFrom(r.Context())

	target, err := h.users.FindByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ok, err := features.Can(p, features.UpdateUser, target)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !ok {
		h.writeError(w, r, common.NewForbiddenError(
			"You do not have permission to update another user",
			"Check that the user has the feature "+features.UpdateUserOthers.String(),
		))
		return
	}

	var in services.UpdateUserInput
	if err := decodeBody(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	updated, err := h.users.Update(r.Context(), target.Username, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, p, features.ReadUser, updated)
}

// getCurrentUser answers with the user behind the session cookie.
func (h *Handler) getCurrentUser(w http.ResponseWriter, r *http.Request) {
	p := features.PrincipalFrom(r.Context())
	w.Header().Set("Cache-Control", "no-store, no-cache, max-age=0, must-revalidate")
	h.respond(w, r, http.StatusOK, p, features.ReadUserSelf, p.User)
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	var in createSessionRequest
	if err := decodeBody(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.credentials.Authenticate(r.Context(), in.Email, in.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	p, err := features.Authenticated(user, nil)
	if err != nil {
		h.writeError(w, r, common.NewInternalError(err))
		return
	}
	ok, err := features.Can(p, features.CreateSession, nil)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !ok {
		h.writeError(w, r, common.NewForbiddenError("You do not have permission to log in", "Contact support"))
		return
	}

	session, err := h.sessions.Create(r.Context(), user.ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	p.Session = session

	h.setSessionCookie(w, session.Token)
	h.log.Info(r.Context(), "session created", "user_id", user.ID.String())
	h.respond(w, r, http.StatusCreated, p, features.ReadSession, session)
}

// deleteSession ends the session behind the cookie.
func (h *Handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	p := features.PrincipalFrom(r.Context())
	if p.IsAnonymous() || p.Session == nil {
		h.writeError(w, r, services.ErrNoActiveSession())
		return
	}

	expired, err := h.sessions.Expire(r.Context(), p.Session.ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.clearSessionCookie(w)
	h.respond(w, r, http.StatusOK, p, features.ReadSession, expired)
}

func (h *Handler) activate(w http.ResponseWriter, r *http.Request) {
	token, err := h.activations.Activate(r.Context(), chi.URLParam(r, "token_id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.log.Info(r.Context(), "user activated", "user_id", token.UserID.String())
	h.respond(w, r, http.StatusOK, features.PrincipalFrom(r.Context()), features.ReadActivationToken, token)
}
