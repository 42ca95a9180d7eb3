package validator

import (
	"petcare/pkg/logger"
	"petcare/pkg/model"
	"petcare/pkg/validation"
)

type ServiceValidator struct {
	validate *validation.Validator
	logger   *logger.Logger
}

func NewServiceValidator(log *logger.Logger) *ServiceValidator {
	v := validation.New(log,
		validation.Tag{
			Name:    "service_category",
			Func:    validation.OneOf(model.ServiceCategories),
			Message: "is not a known service category",
		},
		validation.Tag{
			Name:    "service_pet_type",
			Func:    validation.OneOf(model.ServicePetTypes),
			Message: "contains an unsupported pet type",
		},
	)

	return &ServiceValidator{
		validate: v,
		logger:   log,
	}
}

func (v *ServiceValidator) Validate(s *model.Service) error {
	return v.validate.Struct(s)
}
