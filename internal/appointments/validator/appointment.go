package validator

import (
	"petcare/pkg/logger"
	"petcare/pkg/model"
	"petcare/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type AppointmentValidator struct {
	validate *validation.Validator
	logger   *logger.Logger
}

func NewAppointmentValidator(log *logger.Logger) *AppointmentValidator {
	v := validation.New(log, validation.Tag{
		Name:    "slot_time",
		Func:    validateSlotTime,
		Message: "must be one of the available time slots",
	})

	return &AppointmentValidator{
		validate: v,
		logger:   log,
	}
}

func validateSlotTime(fl validator.FieldLevel) bool {
	return model.IsSlot(fl.Field().String())
}

func (v *AppointmentValidator) Validate(a *model.Appointment) error {
	return v.validate.Struct(a)
}

// IsObjectID reports whether id is a well formed document id.
func (v *AppointmentValidator) IsObjectID(id string) bool {
	return v.validate.Var(id, "required,mongodb") == nil
}

func (v *AppointmentValidator) ValidateUpdate(upd *model.AppointmentUpdate) error {
	return v.validate.Struct(upd)
}
