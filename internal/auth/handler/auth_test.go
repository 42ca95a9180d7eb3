package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"petcare/internal/auth/service"
	"petcare/pkg/config"
	apperrors "petcare/pkg/errors"
	"petcare/pkg/logger"
	"petcare/pkg/model"
	"petcare/pkg/session"
	"petcare/pkg/session/sessiontest"
	"petcare/pkg/view"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const resetToken = "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) user(args mock.Arguments) (*model.User, error) {
	if u := args.Get(0); u != nil {
		return u.(*model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthService) Authenticate(ctx context.Context, login string, password string) (*model.User, error) {
	return m.user(m.Called(ctx, login, password))
}

func (m *mockAuthService) Register(ctx context.Context, reg *model.Registration) (*model.User, error) {
	return m.user(m.Called(ctx, reg))
}

func (m *mockAuthService) GetByID(ctx context.Context, id string) (*model.User, error) {
	return m.user(m.Called(ctx, id))
}

func (m *mockAuthService) UpdateProfile(ctx context.Context, id string, upd *model.UserProfileUpdate) (*model.User, error) {
	return m.user(m.Called(ctx, id, upd))
}

func (m *mockAuthService) ChangePassword(ctx context.Context, id string, current string, next string, confirm string) error {
	return m.Called(ctx, id, current, next, confirm).Error(0)
}

func (m *mockAuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *mockAuthService) ValidateResetToken(ctx context.Context, token string) (*model.User, error) {
	return m.user(m.Called(ctx, token))
}

func (m *mockAuthService) ResetPassword(ctx context.Context, token string, password string, confirm string) error {
	return m.Called(ctx, token, password, confirm).Error(0)
}

type authServer struct {
	svc      *mockAuthService
	sessions *session.Manager
	router   *httprouter.Router
}

func newAuthServer(t *testing.T, env string) *authServer {
	t.Helper()

	renderer, err := view.New("Rs", logger.Discard())
	require.NoError(t, err)

	svc := &mockAuthService{}
	t.Cleanup(func() { svc.AssertExpectations(t) })

	cfg := &config.Config{Log: logger.Discard(), AppEnv: env}
	sessions := sessiontest.NewManager(t)
	router := httprouter.New()
	NewAuthHandler(svc, renderer, sessions, cfg).RegisterRoutes(router)

	return &authServer{svc: svc, sessions: sessions, router: router}
}

// do serves req as the browser holding cookie, with no user forced into the session.
func (s *authServer) do(req *http.Request, cookie *http.Cookie) *sessiontest.Response {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return sessiontest.Serve(s.sessions, s.router, nil, req)
}

func formRequest(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func vet() *model.User {
	return &model.User{
		ID:        sessiontest.Vet.ID,
		Username:  "drramsamy",
		Email:     "priya@petcare.local",
		FirstName: "Priya",
		LastName:  "Ramsamy",
		Role:      model.RoleVeterinarian,
		IsActive:  true,
	}
}

func (s *authServer) login(t *testing.T) *http.Cookie {
	t.Helper()

	s.svc.On("Authenticate", mock.Anything, "drramsamy", "secret123").Return(vet(), nil).Once()

	resp := s.do(formRequest(loginPath, url.Values{"username": {"drramsamy"}, "password": {"secret123"}}), nil)
	require.Equal(t, http.StatusFound, resp.Code)
	require.Equal(t, session.DashboardPath, resp.Header().Get("Location"))
	assert.Equal(t, []string{"Welcome back, Priya!"}, resp.Flash(session.FlashSuccess))

	cookie := resp.Cookie()
	require.NotNil(t, cookie)
	return cookie
}

func TestLogin(t *testing.T) {
	s := newAuthServer(t, config.EnvProduction)
	cookie := s.login(t)

	resp := s.do(httptest.NewRequest(http.MethodGet, loginPath, nil), cookie)
	assert.Equal(t, http.StatusFound, resp.Code, "a signed in user skips the login form")
	assert.Equal(t, session.DashboardPath, resp.Header().Get("Location"))
}

func TestLogin_InvalidCredentials(t *testing.T) {
	s := newAuthServer(t, config.EnvProduction)

	s.svc.On("Authenticate", mock.Anything, "drramsamy", "wrong").
		Return(nil, apperrors.Unauthorized(service.MsgInvalidCredentials)).Once()

	resp := s.do(formRequest(loginPath, url.Values{"username": {"drramsamy"}, "password": {"wrong"}}), nil)
	assert.Equal(t, http.StatusFound, resp.Code)
	assert.Equal(t, loginPath, resp.Header().Get("Location"))
	assert.Equal(t, []string{service.MsgInvalidCredentials}, resp.Flash(session.FlashError))
}

func TestLogout(t *testing.T) {
	s := newAuthServer(t, config.EnvProduction)
	cookie := s.login(t)

	resp := s.do(formRequest("/auth/logout", url.Values{}), cookie)
	assert.Equal(t, http.StatusFound, resp.Code)
	assert.Equal(t, loginPath, resp.Header().Get("Location"))
	cleared := resp.Cookie()
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)

	resp = s.do(httptest.NewRequest(http.MethodGet, profilePath, nil), cookie)
	assert.Equal(t, http.StatusFound, resp.Code, "the old cookie no longer names a session")
	assert.Equal(t, loginPath, resp.Header().Get("Location"))
}

func TestForgotPassword(t *testing.T) {
	resetURL := "http://localhost:3000/auth/reset-password/" + resetToken

	t.Run("development shows the link", func(t *testing.T) {
		s := newAuthServer(t, "development")
		s.svc.On("RequestPasswordReset", mock.Anything, "priya@petcare.local").Return(resetURL, nil).Once()

		resp := s.do(formRequest(forgotPasswordPath, url.Values{"email": {"priya@petcare.local"}}), nil)
		assert.Equal(t, http.StatusFound, resp.Code)
		assert.Equal(t, forgotPasswordPath, resp.Header().Get("Location"))
		assert.Equal(t, []string{msgResetSent}, resp.Flash(session.FlashSuccess))
		assert.Equal(t, []string{"Development Mode - Reset URL: " + resetURL}, resp.Flash(session.FlashInfo))
	})

	t.Run("production hides the link", func(t *testing.T) {
		s := newAuthServer(t, config.EnvProduction)
		s.svc.On("RequestPasswordReset", mock.Anything, "priya@petcare.local").Return(resetURL, nil).Once()

		resp := s.do(formRequest(forgotPasswordPath, url.Values{"email": {"priya@petcare.local"}}), nil)
		assert.Equal(t, []string{msgResetSent}, resp.Flash(session.FlashSuccess))
		assert.Empty(t, resp.Flash(session.FlashInfo))
	})

	t.Run("unknown email looks the same", func(t *testing.T) {
		s := newAuthServer(t, "development")
		s.svc.On("RequestPasswordReset", mock.Anything, "nobody@example.com").Return("", nil).Once()

		resp := s.do(formRequest(forgotPasswordPath, url.Values{"email": {"nobody@example.com"}}), nil)
		assert.Equal(t, []string{msgResetSent}, resp.Flash(session.FlashSuccess))
		assert.Empty(t, resp.Flash(session.FlashInfo))
	})

	t.Run("missing email", func(t *testing.T) {
		s := newAuthServer(t, config.EnvProduction)
		s.svc.On("RequestPasswordReset", mock.Anything, "").
			Return("", apperrors.Validation(service.MsgEmailRequired, nil)).Once()

		resp := s.do(formRequest(forgotPasswordPath, url.Values{}), nil)
		assert.Equal(t, forgotPasswordPath, resp.Header().Get("Location"))
		assert.Equal(t, []string{service.MsgEmailRequired}, resp.Flash(session.FlashError))
	})
}

func TestResetPasswordForm(t *testing.T) {
	s := newAuthServer(t, config.EnvProduction)

	s.svc.On("ValidateResetToken", mock.Anything, resetToken).Return(vet(), nil).Once()
	s.svc.On("ValidateResetToken", mock.Anything, "expired").
		Return(nil, apperrors.New(apperrors.CodeNotFound, service.MsgInvalidResetToken, http.StatusNotFound)).Once()

	resp := s.do(httptest.NewRequest(http.MethodGet, "/auth/reset-password/"+resetToken, nil), nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `action="/auth/reset-password/`+resetToken+`"`)

	resp = s.do(httptest.NewRequest(http.MethodGet, "/auth/reset-password/expired", nil), nil)
	assert.Equal(t, http.StatusFound, resp.Code)
	assert.Equal(t, forgotPasswordPath, resp.Header().Get("Location"))
	assert.Equal(t, []string{service.MsgInvalidResetToken}, resp.Flash(session.FlashError))
}

func TestResetPassword(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		location string
		kind     string
		message  string
	}{
		{"success", nil, loginPath, session.FlashSuccess, msgPasswordReset},
		{"mismatch stays on the form", apperrors.Validation(service.MsgPasswordMismatch, nil), "/auth/reset-password/" + resetToken, session.FlashError, service.MsgPasswordMismatch},
		{"used token starts over", apperrors.New(apperrors.CodeNotFound, service.MsgInvalidResetToken, http.StatusNotFound), forgotPasswordPath, session.FlashError, service.MsgInvalidResetToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newAuthServer(t, config.EnvProduction)
			s.svc.On("ResetPassword", mock.Anything, resetToken, "newsecret", "newsecret").Return(tt.err).Once()

			resp := s.do(formRequest("/auth/reset-password/"+resetToken, url.Values{
				"password":        {"newsecret"},
				"confirmPassword": {"newsecret"},
			}), nil)

			assert.Equal(t, http.StatusFound, resp.Code)
			assert.Equal(t, tt.location, resp.Header().Get("Location"))
			assert.Equal(t, []string{tt.message}, resp.Flash(tt.kind))
		})
	}
}
