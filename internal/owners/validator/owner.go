package validator

import (
	"petcare/pkg/logger"
	"petcare/pkg/model"
	"petcare/pkg/validation"
)

type OwnerValidator struct {
	validate *validation.Validator
	logger   *logger.Logger
}

func NewOwnerValidator(log *logger.Logger) *OwnerValidator {
	return &OwnerValidator{
		validate: validation.New(log),
		logger:   log,
	}
}

func (v *OwnerValidator) Validate(o *model.Owner) error {
	return v.validate.Struct(o)
}
