package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/fintab/internal/common"
	"github.com/dmitrijs2005/fintab/internal/server/features"
	"github.com/dmitrijs2005/fintab/internal/server/services"
)

type ctxKey string

const ctxKeyRequestID ctxKey = "request_id"

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", reqID)
		ctx := context.WithValue(r.Context(), ctxKeyRequestID, reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestIDFromContext(ctx context.Context) string {
	s, _ := ctx.Value(ctxKeyRequestID).(string)
	return s
}

func (h *Handler) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				h.writeError(w, r, common.NewInternalError(fmt.Errorf("panic: %v", rec)))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	bytes      int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *statusRecorder) Write(payload []byte) (int, error) {
	if r.statusCode == 0 {
		r.statusCode = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(payload)
	r.bytes += n
	return n, err
}

func (h *Handler) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(recorder, r)

		statusCode := recorder.statusCode
		if statusCode == 0 {
			statusCode = http.StatusOK
		}
		fields := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status_code", statusCode,
			"bytes", recorder.bytes,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", requestIDFromContext(r.Context()),
		}
		switch {
		case statusCode >= 500:
			h.log.Error(r.Context(), "http request completed", fields...)
		case statusCode >= 400:
			h.log.Warn(r.Context(), "http request completed", fields...)
		default:
			h.log.Info(r.Context(), "http request completed", fields...)
		}
	})
}

// injectPrincipal attaches the acting principal to the request context. A
// session cookie must resolve to a live session; without a cookie the request
// runs as the anonymous principal. Safe methods renew the session and re-issue
// the cookie.
func (h *Handler) injectPrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(common.SessionCookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r.WithContext(features.WithPrincipal(r.Context(), features.Anonymous())))
			return
		}

		renew := r.Method == http.MethodGet || r.Method == http.MethodHead
		p, err := h.resolvePrincipal(r.Context(), cookie.Value, renew)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		if renew {
			h.setSessionCookie(w, p.Session.Token)
		}
		next.ServeHTTP(w, r.WithContext(features.WithPrincipal(r.Context(), p)))
	})
}

func (h *Handler) resolvePrincipal(ctx context.Context, token string, renew bool) (*features.Principal, error) {
	session, err := h.sessions.FindValidByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if renew {
		if session, err = h.sessions.Renew(ctx, session.ID); err != nil {
			return nil, err
		}
	}

	user, err := h.users.FindByID(ctx, session.UserID)
	if err != nil {
		if common.KindOf(err) == common.KindNotFound {
			return nil, services.ErrNoActiveSession()
		}
		return nil, err
	}
	p, err := features.Authenticated(user, session)
	if err != nil {
		return nil, common.NewInternalError(err)
	}
	return p, nil
}

// canRequest stops the request unless the principal holds feature.
func (h *Handler) canRequest(feature features.Feature) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := features.Can(features.PrincipalFrom(r.Context()), feature, nil)
			if err != nil {
				h.writeError(w, r, err)
				return
			}
			if !ok {
				h.writeError(w, r, common.NewForbiddenError(
					"You do not have permission to perform this action",
					"Check that the user has the feature "+feature.String(),
				))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
