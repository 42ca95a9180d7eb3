package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	autherrors "petcare/internal/auth/errors"
	"petcare/internal/auth/repository"
	"petcare/internal/auth/validator"
	"petcare/pkg/config"
	apperrors "petcare/pkg/errors"
	"petcare/pkg/mailer"
	"petcare/pkg/model"
	"petcare/pkg/sanitizer"
	"petcare/pkg/validation"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 6

	MsgInvalidCredentials  = "Invalid username or password"
	MsgMissingCredentials  = "Please provide both username and password"
	MsgAllFieldsRequired   = "All fields are required"
	MsgPasswordMismatch    = "Passwords do not match"
	MsgPasswordTooShort    = "Password must be at least 6 characters long"
	MsgUserExists          = "Username or email already exists"
	MsgEmailInUse          = "Email already in use"
	MsgPasswordFields      = "All password fields are required"
	MsgNewPasswordMismatch = "New passwords do not match"
	MsgNewPasswordTooShort = "New password must be at least 6 characters long"
	MsgWrongPassword       = "Current password is incorrect"
	MsgResetFields         = "Please provide both password fields"
	MsgEmailRequired       = "Please provide your email address"
	MsgInvalidResetToken   = "Password reset token is invalid or has expired"
	MsgInvalidRole         = "Please select a valid role"

	resetTokenBytes = 32
)

type AuthService interface {
	Authenticate(ctx context.Context, login string, password string) (*model.User, error)
	Register(ctx context.Context, reg *model.Registration) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	UpdateProfile(ctx context.Context, id string, upd *model.UserProfileUpdate) (*model.User, error)
	ChangePassword(ctx context.Context, id string, current string, next string, confirm string) error
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ValidateResetToken(ctx context.Context, token string) (*model.User, error)
	ResetPassword(ctx context.Context, token string, password string, confirm string) error
}

type authService struct {
	repo      repository.UserRepository
	validator *validator.UserValidator
	mailer    mailer.Mailer
	cfg       *config.Config
	now       func() time.Time
}

func NewAuthService(
	repo repository.UserRepository,
	validator *validator.UserValidator,
	mail mailer.Mailer,
	cfg *config.Config,
) AuthService {
	return &authService{
		repo:      repo,
		validator: validator,
		mailer:    mail,
		cfg:       cfg,
		now:       time.Now,
	}
}

// HashPassword is shared with the seed command so demo users log in the same way.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *authService) Authenticate(ctx context.Context, login string, password string) (*model.User, error) {
	login = sanitizer.NormalizeEmail(login)
	if login == "" || password == "" {
		return nil, apperrors.InvalidInput(MsgMissingCredentials)
	}

	user, err := s.repo.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, autherrors.ErrNotFound) {
			s.cfg.Log.Info("Login rejected", "login", login, "reason", "unknown user")
			return nil, apperrors.Unauthorized(MsgInvalidCredentials)
		}
		s.cfg.Log.Error("Failed to look up user for login", "login", login, "error", err)
		return nil, apperrors.Internal("Failed to authenticate", err)
	}

	if !checkPassword(user.PasswordHash, password) {
		s.cfg.Log.Info("Login rejected", "login", login, "reason", "wrong password")
		return nil, apperrors.Unauthorized(MsgInvalidCredentials)
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	if err := s.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.cfg.Log.Warn("Failed to record last login", "id", user.ID, "error", err)
	}
	user.LastLogin = &now

	s.cfg.Log.Info("User logged in", "id", user.ID, "username", user.Username)
	return user, nil
}

func (s *authService) Register(ctx context.Context, reg *model.Registration) (*model.User, error) {
	reg.Username = sanitizer.NormalizeUsername(reg.Username)
	reg.Email = sanitizer.NormalizeEmail(reg.Email)
	reg.FirstName = sanitizer.NormalizeName(reg.FirstName)
	reg.LastName = sanitizer.NormalizeName(reg.LastName)

	if reg.Username == "" || reg.Email == "" || reg.Password == "" || reg.ConfirmPassword == "" ||
		reg.FirstName == "" || reg.LastName == "" {
		return nil, apperrors.Validation(MsgAllFieldsRequired, nil)
	}
	if reg.Password != reg.ConfirmPassword {
		return nil, apperrors.Validation(MsgPasswordMismatch, nil)
	}
	if len(reg.Password) < MinPasswordLength {
		return nil, apperrors.Validation(MsgPasswordTooShort, nil)
	}
	if reg.Role == "" {
		reg.Role = model.RoleStaff
	}
	if reg.Role != model.RoleStaff && reg.Role != model.RoleVeterinarian {
		return nil, apperrors.Validation(MsgInvalidRole, nil)
	}

	if err := s.validator.ValidateRegistration(reg); err != nil {
		s.cfg.Log.Warn("Registration validation failed",
			"username", reg.Username,
			"error", err,
		)
		return nil, apperrors.Validation(validation.Message(err), map[string]any{
			"error": err.Error(),
		})
	}

	if _, err := s.repo.FindByUsernameOrEmail(ctx, reg.Username, reg.Email); err == nil {
		return nil, apperrors.Conflict(MsgUserExists)
	} else if !errors.Is(err, autherrors.ErrNotFound) {
		s.cfg.Log.Error("Failed to check existing users", "username", reg.Username, "error", err)
		return nil, apperrors.Internal("Failed to register user", err)
	}

	hash, err := HashPassword(reg.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, apperrors.Internal("Failed to register user", err)
	}

	user := &model.User{
		Username:     reg.Username,
		Email:        reg.Email,
		PasswordHash: hash,
		FirstName:    reg.FirstName,
		LastName:     reg.LastName,
		Role:         reg.Role,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, autherrors.ErrDuplicate) {
			return nil, apperrors.Conflict(MsgUserExists)
		}
		s.cfg.Log.Error("Failed to create user", "username", user.Username, "error", err)
		return nil, apperrors.Internal("Failed to register user", err)
	}

	s.cfg.Log.Info("User registered successfully",
		"id", user.ID,
		"username", user.Username,
		"role", user.Role,
	)
	return user, nil
}

func (s *authService) GetByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("User ID cannot be empty")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to retrieve user")
	}
	return user, nil
}

func (s *authService) UpdateProfile(ctx context.Context, id string, upd *model.UserProfileUpdate) (*model.User, error) {
	upd.FirstName = sanitizer.NormalizeName(upd.FirstName)
	upd.LastName = sanitizer.NormalizeName(upd.LastName)
	upd.Email = sanitizer.NormalizeEmail(upd.Email)

	if err := s.validator.ValidateProfile(upd); err != nil {
		s.cfg.Log.Warn("Profile validation failed", "id", id, "error", err)
		return nil, apperrors.Validation(validation.Message(err), map[string]any{
			"error": err.Error(),
		})
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to update profile")
	}

	if upd.Email != user.Email {
		other, err := s.repo.FindByEmail(ctx, upd.Email)
		if err == nil && other.ID != id {
			return nil, apperrors.Conflict(MsgEmailInUse)
		}
		if err != nil && !errors.Is(err, autherrors.ErrNotFound) {
			return nil, apperrors.Internal("Failed to update profile", err)
		}
	}

	if err := s.repo.UpdateProfile(ctx, id, upd); err != nil {
		if errors.Is(err, autherrors.ErrDuplicate) {
			return nil, apperrors.Conflict(MsgEmailInUse)
		}
		return nil, s.mapRepoError(err, id, "Failed to update profile")
	}

	user.FirstName = upd.FirstName
	user.LastName = upd.LastName
	user.Email = upd.Email

	s.cfg.Log.Info("Profile updated successfully", "id", id)
	return user, nil
}

func (s *authService) ChangePassword(ctx context.Context, id string, current string, next string, confirm string) error {
	if current == "" || next == "" || confirm == "" {
		return apperrors.Validation(MsgPasswordFields, nil)
	}
	if next != confirm {
		return apperrors.Validation(MsgNewPasswordMismatch, nil)
	}
	if len(next) < MinPasswordLength {
		return apperrors.Validation(MsgNewPasswordTooShort, nil)
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.mapRepoError(err, id, "Failed to change password")
	}
	if !checkPassword(user.PasswordHash, current) {
		return apperrors.Validation(MsgWrongPassword, nil)
	}

	if err := s.setPassword(ctx, user, next); err != nil {
		return err
	}

	s.cfg.Log.Info("Password changed successfully", "id", id)
	return nil
}

// RequestPasswordReset returns the reset link when email belongs to an active user and
// an empty string otherwise. Callers must not reveal which case happened.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = sanitizer.NormalizeEmail(email)
	if email == "" {
		return "", apperrors.Validation(MsgEmailRequired, nil)
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, autherrors.ErrNotFound) {
			s.cfg.Log.Info("Password reset requested for unknown email")
			return "", nil
		}
		return "", apperrors.Internal("Failed to request password reset", err)
	}
	if !user.IsActive {
		return "", nil
	}

	raw := make([]byte, resetTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", apperrors.Internal("Failed to generate reset token", err)
	}
	token := hex.EncodeToString(raw)
	expires := s.now().UTC().Add(s.cfg.PasswordResetTTL).Truncate(time.Millisecond)

	if err := s.repo.SetResetToken(ctx, user.ID, hashToken(token), expires); err != nil {
		return "", s.mapRepoError(err, user.ID, "Failed to request password reset")
	}

	resetURL := s.cfg.BaseURL + "/auth/reset-password/" + token
	if err := s.mailer.Send(ctx, passwordResetMessage(user, resetURL, s.cfg.PasswordResetTTL)); err != nil {
		s.cfg.Log.Error("Failed to send password reset email", "id", user.ID, "error", err)
	}

	s.cfg.Log.Info("Password reset requested", "id", user.ID, "expires", expires)
	return resetURL, nil
}

func (s *authService) ValidateResetToken(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, invalidResetToken()
	}

	user, err := s.repo.FindByResetToken(ctx, hashToken(token), s.now().UTC())
	if err != nil {
		if errors.Is(err, autherrors.ErrNotFound) {
			return nil, invalidResetToken()
		}
		return nil, apperrors.Internal("Failed to validate reset token", err)
	}
	return user, nil
}

func (s *authService) ResetPassword(ctx context.Context, token string, password string, confirm string) error {
	if password == "" || confirm == "" {
		return apperrors.Validation(MsgResetFields, nil)
	}
	if password != confirm {
		return apperrors.Validation(MsgPasswordMismatch, nil)
	}
	if len(password) < MinPasswordLength {
		return apperrors.Validation(MsgPasswordTooShort, nil)
	}

	user, err := s.ValidateResetToken(ctx, token)
	if err != nil {
		return err
	}

	hash, err := HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return apperrors.Internal("Failed to reset password", err)
	}
	// The token is checked again by the write itself, so a token used or replaced
	// since the lookup above cannot set the password.
	err = s.repo.ResetPassword(ctx, user.ID, hashToken(token), hash, s.now().UTC())
	if err != nil {
		if errors.Is(err, autherrors.ErrNotFound) {
			return invalidResetToken()
		}
		return s.mapRepoError(err, user.ID, "Failed to reset password")
	}
	s.notifyPasswordChanged(ctx, user)

	s.cfg.Log.Info("Password reset successfully", "id", user.ID)
	return nil
}

func (s *authService) setPassword(ctx context.Context, user *model.User, password string) error {
	hash, err := HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return apperrors.Internal("Failed to update password", err)
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return s.mapRepoError(err, user.ID, "Failed to update password")
	}

	s.notifyPasswordChanged(ctx, user)
	return nil
}

func (s *authService) notifyPasswordChanged(ctx context.Context, user *model.User) {
	if err := s.mailer.Send(ctx, passwordChangedMessage(user)); err != nil {
		s.cfg.Log.Error("Failed to send password changed email", "id", user.ID, "error", err)
	}
}

func (s *authService) mapRepoError(err error, id string, message string) error {
	if errors.Is(err, autherrors.ErrNotFound) {
		return apperrors.NotFoundWithID("User", id)
	}
	if errors.Is(err, autherrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid user ID format")
	}
	s.cfg.Log.Error(message, "id", id, "error", err)
	return apperrors.Internal(message, err)
}

func invalidResetToken() error {
	return apperrors.New(apperrors.CodeNotFound, MsgInvalidResetToken, http.StatusNotFound)
}
