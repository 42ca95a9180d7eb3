package validator

import (
	"petcare/pkg/logger"
	"petcare/pkg/model"
	"petcare/pkg/validation"
)

type PetValidator struct {
	validate *validation.Validator
	logger   *logger.Logger
}

func NewPetValidator(log *logger.Logger) *PetValidator {
	return &PetValidator{
		validate: validation.New(log),
		logger:   log,
	}
}

func (v *PetValidator) Validate(p *model.Pet) error {
	return v.validate.Struct(p)
}

func (v *PetValidator) ValidateMedicalRecord(rec *model.MedicalRecord) error {
	return v.validate.Struct(rec)
}
