package validator

import (
	"regexp"

	"petcare/pkg/logger"
	"petcare/pkg/model"
	"petcare/pkg/validation"

	"github.com/go-playground/validator/v10"
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

type UserValidator struct {
	validate *validation.Validator
	logger   *logger.Logger
}

func NewUserValidator(log *logger.Logger) *UserValidator {
	v := validation.New(log, validation.Tag{
		Name:    "username",
		Func:    validateUsername,
		Message: "may only contain lowercase letters, numbers and underscores",
	})

	return &UserValidator{
		validate: v,
		logger:   log,
	}
}

func validateUsername(fl validator.FieldLevel) bool {
	return usernamePattern.MatchString(fl.Field().String())
}

func (v *UserValidator) Validate(u *model.User) error {
	return v.validate.Struct(u)
}

func (v *UserValidator) ValidateRegistration(reg *model.Registration) error {
	return v.validate.Struct(reg)
}

func (v *UserValidator) ValidateProfile(upd *model.UserProfileUpdate) error {
	return v.validate.Struct(upd)
}
