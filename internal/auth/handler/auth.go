package handler

import (
	"net/http"
	"net/url"

	"petcare/internal/auth/service"
	"petcare/pkg/config"
	apperrors "petcare/pkg/errors"
	httputil "petcare/pkg/http"
	"petcare/pkg/logger"
	"petcare/pkg/middleware"
	"petcare/pkg/model"
	"petcare/pkg/session"
	"petcare/pkg/view"

	"github.com/julienschmidt/httprouter"
)

const (
	loginPath          = "/auth/login"
	registerPath       = "/auth/register"
	profilePath        = "/auth/profile"
	forgotPasswordPath = "/auth/forgot-password"

	msgRegistered     = "Registration successful! Welcome to PetCare."
	msgProfileUpdated = "Profile updated successfully"
	msgPasswordChange = "Password changed successfully"
	msgResetSent      = "If an account with that email exists, a password reset link has been sent."
	msgPasswordReset  = "Password reset successfully! You can now login with your new password."
)

type AuthHandler struct {
	service  service.AuthService
	view     *view.Renderer
	sessions *session.Manager
	cfg      *config.Config
	log      *logger.Logger
}

func NewAuthHandler(service service.AuthService, renderer *view.Renderer, sessions *session.Manager, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		service:  service,
		view:     renderer,
		sessions: sessions,
		cfg:      cfg,
		log:      cfg.Log,
	}
}

// SessionUser is the snapshot of u stored in the session.
func SessionUser(u *model.User) *session.User {
	return &session.User{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
	}
}

func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if session.IsAuthenticated(r) {
		httputil.Redirect(w, r, session.DashboardPath)
		return
	}
	h.view.Render(w, r, http.StatusOK, "auth/login", "Login", nil)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	values, err := httputil.ReadValues(r)
	if err != nil {
		session.AddFlash(r, session.FlashError, apperrors.UserMessage(err))
		httputil.Redirect(w, r, loginPath)
		return
	}

	user, err := h.service.Authenticate(r.Context(), values.String("username"), values.Get("password"))
	if err != nil {
		session.AddFlash(r, session.FlashError, apperrors.UserMessage(err))
		httputil.Redirect(w, r, loginPath)
		return
	}

	session.Login(r, SessionUser(user))
	session.AddFlash(r, session.FlashSuccess, "Welcome back, "+user.FirstName+"!")
	httputil.Redirect(w, r, session.DashboardPath)
}

func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if session.IsAuthenticated(r) {
		httputil.Redirect(w, r, session.DashboardPath)
		return
	}
	h.view.Render(w, r, http.StatusOK, "auth/register", "Register", view.Data{
		"Form": httputil.Values{Values: url.Values{}},
	})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	values, err := httputil.ReadValues(r)
	if err != nil {
		h.renderRegisterError(w, r, values, err)
		return
	}

	reg := &model.Registration{
		Username:        values.String("username"),
		Email:           values.String("email"),
		Password:        values.Get("password"),
		ConfirmPassword: values.Get("confirmPassword"),
		FirstName:       values.String("firstName"),
		LastName:        values.String("lastName"),
		Role:            values.String("role"),
	}

	user, err := h.service.Register(r.Context(), reg)
	if err != nil {
		h.renderRegisterError(w, r, values, err)
		return
	}

	session.Login(r, SessionUser(user))
	session.AddFlash(r, session.FlashSuccess, msgRegistered)
	httputil.Redirect(w, r, session.DashboardPath)
}

func (h *AuthHandler) renderRegisterError(w http.ResponseWriter, r *http.Request, values httputil.Values, err error) {
	if values.Values == nil {
		values.Values = url.Values{}
	}
	values.Del("password")
	values.Del("confirmPassword")

	session.AddFlash(r, session.FlashError, apperrors.UserMessage(err))
	h.view.Render(w, r, apperrors.AsAppError(err).StatusCode(), "auth/register", "Register", view.Data{
		"Form": values,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if user := session.CurrentUser(r); user != nil {
		h.log.Info("User logged out", "id", user.ID, "username", user.Username)
	}
	session.Logout(r)
	httputil.Redirect(w, r, loginPath)
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	current := session.CurrentUser(r)

	user, err := h.service.GetByID(r.Context(), current.ID)
	if err != nil {
		h.view.AppError(w, r, err)
		return
	}

	h.view.Render(w, r, http.StatusOK, "auth/profile", "My Profile", view.Data{
		"User": user,
	})
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	current := session.CurrentUser(r)

	values, err := httputil.ReadValues(r)
	if err != nil {
		session.AddFlash(r, session.FlashError, apperrors.UserMessage(err))
		httputil.Redirect(w, r, profilePath)
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), current.ID, &model.UserProfileUpdate{
		FirstName: values.String("firstName"),
		LastName:  values.String("lastName"),
		Email:     values.String("email"),
	})
	if err != nil {
		session.AddFlash(r, session.FlashError, apperrors.UserMessage(err))
		httputil.Redirect(w, r, profilePath)
		return
	}

	session.SetUser(r, SessionUser(user))
	session.AddFlash(r, session.FlashSuccess, msgProfileUpdated)
	httputil.Redirect(w, r, profilePath)
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	current := session.CurrentUser(r)

	values, err := httputil.ReadValues(r)
	if err == nil {
		err = h.service.ChangePassword(r.Context(), current.ID,
			values.Get("currentPassword"),
			values.Get("newPassword"),
			values.Get("confirmPassword"),
		)
	}
	if err != nil {
		session.AddFlash(r, session.FlashError, apperrors.UserMessage(err))
		httputil.Redirect(w, r, profilePath)
		return
	}

	session.AddFlash(r, session.FlashSuccess, msgPasswordChange)
	httputil.Redirect(w, r, profilePath)
}

func (h *AuthHandler) ForgotPasswordForm(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if session.IsAuthenticated(r) {
		httputil.Redirect(w, r, session.DashboardPath)
		return
	}
	h.view.Render(w, r, http.StatusOK, "auth/forgot-password", "Forgot Password", nil)
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	values, err := httputil.ReadValues(r)
	if err != nil {
		session.AddFlash(r, session.FlashError, apperrors.UserMessage(err))
		httputil.Redirect(w, r, forgotPasswordPath)
		return
	}

	resetURL, err := h.service.RequestPasswordReset(r.Context(), values.String("email"))
	if err != nil {
		session.AddFlash(r, session.FlashError, apperrors.UserMessage(err))
		httputil.Redirect(w, r, forgotPasswordPath)
		return
	}

	session.AddFlash(r, session.FlashSuccess, msgResetSent)
	if resetURL != "" && h.cfg.IsDevelopment() {
		session.AddFlash(r, session.FlashInfo, "Development Mode - Reset URL: "+resetURL)
	}
	httputil.Redirect(w, r, forgotPasswordPath)
}

func (h *AuthHandler) ResetPasswordForm(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	token := ps.ByName("token")

	if _, err := h.service.ValidateResetToken(r.Context(), token); err != nil {
		session.AddFlash(r, session.FlashError, apperrors.UserMessage(err))
		httputil.Redirect(w, r, forgotPasswordPath)
		return
	}

	h.view.Render(w, r, http.StatusOK, "auth/reset-password", "Reset Password", view.Data{
		"Token": token,
	})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	token := ps.ByName("token")

	values, err := httputil.ReadValues(r)
	if err == nil {
		err = h.service.ResetPassword(r.Context(), token, values.Get("password"), values.Get("confirmPassword"))
	}
	if err != nil {
		session.AddFlash(r, session.FlashError, apperrors.UserMessage(err))
		if apperrors.HasCode(err, apperrors.CodeNotFound) {
			httputil.Redirect(w, r, forgotPasswordPath)
			return
		}
		httputil.Redirect(w, r, "/auth/reset-password/"+url.PathEscape(token))
		return
	}

	session.AddFlash(r, session.FlashSuccess, msgPasswordReset)
	httputil.Redirect(w, r, loginPath)
}

func (h *AuthHandler) RegisterRoutes(router *httprouter.Router) {
	requireAuth := h.sessions.RequireAuth

	router.GET(loginPath, h.LoginForm)
	router.POST(loginPath, h.Login)
	router.GET(registerPath, h.RegisterForm)
	router.POST(registerPath, h.Register)
	router.GET("/auth/logout", h.Logout)
	router.POST("/auth/logout", h.Logout)
	router.GET(profilePath, middleware.Route(h.Profile, requireAuth))
	router.POST(profilePath, middleware.Route(h.UpdateProfile, requireAuth))
	router.POST("/auth/change-password", middleware.Route(h.ChangePassword, requireAuth))
	router.GET(forgotPasswordPath, h.ForgotPasswordForm)
	router.POST(forgotPasswordPath, h.ForgotPassword)
	router.GET("/auth/reset-password/:token", h.ResetPasswordForm)
	router.POST("/auth/reset-password/:token", h.ResetPassword)
}
