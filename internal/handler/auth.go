package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/mercando/internal/auth"
	"github.com/dukerupert/mercando/internal/middleware"
	"github.com/dukerupert/mercando/internal/model"
	"github.com/dukerupert/mercando/internal/service"
	"github.com/dukerupert/mercando/internal/store"
	"github.com/dukerupert/mercando/internal/viewstate"
)

type AuthHandler struct {
	svc          *service.Service
	sessionStore *store.SessionStore
	sessionTTL   time.Duration
	secureCookie bool
	logger       *slog.Logger
}

func NewAuthHandler(
	svc *service.Service,
	ss *store.SessionStore,
	sessionTTL time.Duration,
	secureCookie bool,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		svc:          svc,
		sessionStore: ss,
		sessionTTL:   sessionTTL,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

// authResponse is the rendered auth state plus the session token for
// clients that send it as a bearer token instead of a cookie.
type authResponse struct {
	viewstate.View
	Token string `json:"token,omitempty"`
}

type registerRequest struct {
	Name            string  `json:"name"`
	LastName        string  `json:"last_name"`
	Email           string  `json:"email"`
	Password        string  `json:"password"`
	ConfirmPassword *string `json:"confirm_password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var (
		u   *model.User
		err error
	)
	if req.ConfirmPassword != nil {
		u, err = h.svc.RegisterWithConfirmation(r.Context(), req.Name, req.LastName, req.Email, req.Password, *req.ConfirmPassword)
	} else {
		u, err = h.svc.Register(r.Context(), req.Name, req.LastName, req.Email, req.Password)
	}
	if err != nil {
		h.writeAuthError(w, errorStatus(err), viewstate.AuthResult(nil, err), err)
		return
	}

	h.startSession(w, r, u, http.StatusCreated)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.svc.Authenticate(r.Context(), req.Email, req.Password)
	state := viewstate.AuthResult(u, err)
	if err != nil {
		h.writeAuthError(w, errorStatus(err), state, err)
		return
	}
	if u == nil {
		writeJSON(w, http.StatusUnauthorized, authResponse{View: viewstate.RenderAuth(state)})
		return
	}

	h.startSession(w, r, u, http.StatusOK)
}

func (h *AuthHandler) writeAuthError(w http.ResponseWriter, status int, state viewstate.AuthState, err error) {
	if status == http.StatusInternalServerError {
		h.logger.Error("auth", "error", err)
	}
	writeJSON(w, status, authResponse{View: viewstate.RenderAuth(state)})
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, u *model.User, status int) {
	sess, err := h.sessionStore.Create(r.Context(), u.ID)
	if err != nil {
		h.logger.Error("create session", "user_id", u.ID, "error", err)
		writeError(w, http.StatusInternalServerError, viewstate.MsgStorage)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, status, authResponse{
		View:  viewstate.RenderAuth(viewstate.Authenticated{User: u}),
		Token: sess.Token,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if id := auth.SessionID(r.Context()); id != 0 {
		if err := h.sessionStore.Delete(r.Context(), id); err != nil {
			h.logger.Error("delete session", "session_id", id, "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, authResponse{View: viewstate.RenderAuth(viewstate.Unauthenticated{})})
}

// Session reports the auth state of the caller without requiring one:
// a valid session token restores the user, anything else is unauthenticated.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	state := h.restore(r.Context(), middleware.SessionToken(r))
	writeJSON(w, http.StatusOK, authResponse{View: viewstate.RenderAuth(state)})
}

func (h *AuthHandler) restore(ctx context.Context, token string) viewstate.AuthState {
	if token == "" {
		return viewstate.Unauthenticated{}
	}
	sess, err := h.sessionStore.GetByToken(ctx, token)
	if err != nil {
		h.logger.Error("restore session", "error", err)
		return viewstate.Unauthenticated{}
	}
	if sess == nil {
		return viewstate.Unauthenticated{}
	}
	u, err := h.svc.User(ctx, sess.UserID)
	if err != nil {
		return viewstate.Unauthenticated{}
	}
	return viewstate.Authenticated{User: u}
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.User(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, "get user", err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

type profileRequest struct {
	Name            string `json:"name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	ChangePassword  bool   `json:"change_password"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	upd := service.ProfileUpdate{
		Name:            req.Name,
		LastName:        req.LastName,
		Email:           req.Email,
		ChangePassword:  req.ChangePassword,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	}
	u, err := h.svc.UpdateProfile(r.Context(), auth.UserID(r.Context()), upd)

	view := viewstate.RenderProfile(viewstate.ProfileResult(upd, err))
	if err != nil {
		status := errorStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("update profile", "error", err)
		}
		writeJSON(w, status, view)
		return
	}
	view.User = u
	writeJSON(w, http.StatusOK, view)
}
