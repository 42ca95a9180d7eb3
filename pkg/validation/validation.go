package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"petcare/pkg/logger"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// First is the message shown to a person when a form fails.
func (v ValidationErrors) First() string {
	if len(v) == 0 {
		return ""
	}
	return v[0].Message
}

// Tag is a custom validation registered on a validator, with the message it produces.
type Tag struct {
	Name    string
	Func    validator.Func
	Message string
}

// New builds a validator that reports json field names and knows the given custom tags.
func New(log *logger.Logger, tags ...Tag) *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	messages := make(map[string]string, len(tags))
	for _, tag := range tags {
		if err := v.RegisterValidation(tag.Name, tag.Func); err != nil {
			log.Fatal(fmt.Sprintf("Failed to register '%s' validator", tag.Name), "error", err)
		}
		messages[tag.Name] = tag.Message
	}

	return &Validator{validate: v, messages: messages}
}

type Validator struct {
	validate *validator.Validate
	messages map[string]string
}

func (v *Validator) Struct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translate(validationErrs)
		}
		return err
	}
	return nil
}

func (v *Validator) Var(field any, tag string) error {
	return v.validate.Var(field, tag)
}

func (v *Validator) translate(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			if err.Kind() == reflect.String {
				message = fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
			} else {
				message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
			}
		case "max":
			if err.Kind() == reflect.String {
				message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
			} else {
				message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
			}
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "e164":
			message = fmt.Sprintf("%s must be a valid phone number", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid id", err.Field())
		case "url":
			message = fmt.Sprintf("%s must be a valid URL", err.Field())
		default:
			if custom, ok := v.messages[err.Tag()]; ok {
				message = fmt.Sprintf("%s %s", err.Field(), custom)
			}
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}

// OneOf returns a validator.Func accepting only the listed strings.
func OneOf(allowed []string) validator.Func {
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}
	return func(fl validator.FieldLevel) bool {
		_, ok := set[fl.Field().String()]
		return ok
	}
}

// Message picks the user facing text out of a Struct error.
func Message(err error) string {
	var validationErrs ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		return validationErrs.First()
	}
	return err.Error()
}
