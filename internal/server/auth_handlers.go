package server

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/tablehost/restaurantapi/internal/auth"
	"github.com/tablehost/restaurantapi/internal/domain"
	"github.com/tablehost/restaurantapi/internal/services/iam"
)

type authHandlers struct {
	iam        iam.Service
	cookieName string
	logger     *zap.Logger
}

// onIdentity establishes the principal for a completed login, replaces any
// existing session with a fresh one and redirects to the success page.
func (h *authHandlers) onIdentity(class auth.PrincipalClass, segment string) auth.IdentityHandler {
	return func(w http.ResponseWriter, r *http.Request, identity auth.ExternalIdentity) {
		ctx := r.Context()

		principal, err := h.iam.Establish(ctx, identity, class)
		if err != nil {
			h.logger.Error("login: establish principal failed",
				zap.String("class", string(class)),
				zap.Error(err),
			)
			writeError(w, r, h.logger, err)
			return
		}

		if old := auth.SessionTokenFromRequest(r, h.cookieName); old != "" {
			if err := h.iam.DestroySession(ctx, old); err != nil {
				h.logger.Warn("login: failed to drop previous session", zap.Error(err))
			}
		}

		token, err := h.iam.CreateSession(ctx, principal)
		if err != nil {
			h.logger.Error("login: create session failed",
				zap.String("principal_id", principal.ID),
				zap.Error(err),
			)
			writeError(w, r, h.logger, err)
			return
		}

		auth.SetSessionCookie(w, r, h.cookieName, token)
		h.logger.Info("login succeeded",
			zap.String("principal_id", principal.ID),
			zap.String("class", string(class)),
		)
		http.Redirect(w, r, "/auth/"+segment+"/success", http.StatusFound)
	}
}

// success reports the session principal.
func (h *authHandlers) success(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	if principal.IsAnonymous() {
		writeError(w, r, h.logger, &domain.UnauthenticatedError{Message: "You do not have access."})
		return
	}
	writeJSON(w, http.StatusOK, principal)
}

// logout destroys the session, clears the cookie and redirects home. It is
// safe to call without a session.
func (h *authHandlers) logout(w http.ResponseWriter, r *http.Request) {
	if token, ok := auth.SessionTokenFromContext(r.Context()); ok {
		if err := h.iam.DestroySession(r.Context(), token); err != nil {
			writeError(w, r, h.logger, err)
			return
		}
	}
	auth.ClearSessionCookie(w, r, h.cookieName)
	http.Redirect(w, r, "/", http.StatusFound)
}

func handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if auth.PrincipalFromContext(r.Context()).IsAnonymous() {
		_, _ = w.Write([]byte("<p>Logged out.</p>"))
		return
	}
	_, _ = w.Write([]byte("<p>Logged in.</p>"))
}
