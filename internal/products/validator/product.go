package validator

import (
	"strings"

	"petcare/pkg/logger"
	"petcare/pkg/model"
	"petcare/pkg/validation"
)

type ProductValidator struct {
	validate *validation.Validator
	logger   *logger.Logger
}

func NewProductValidator(log *logger.Logger) *ProductValidator {
	v := validation.New(log,
		validation.Tag{
			Name:    "product_category",
			Func:    validation.OneOf(model.ProductCategories),
			Message: "is not a known product category",
		},
		validation.Tag{
			Name:    "product_pet_type",
			Func:    validation.OneOf(model.ProductPetTypes),
			Message: "contains an unsupported pet type",
		},
		validation.Tag{
			Name:    "product_size",
			Func:    validation.OneOf(model.ProductSizes),
			Message: "must be one of: " + strings.Join(model.ProductSizes, ", "),
		},
		validation.Tag{
			Name:    "age_group",
			Func:    validation.OneOf(model.AgeGroups),
			Message: "must be one of: " + strings.Join(model.AgeGroups, ", "),
		},
	)

	return &ProductValidator{
		validate: v,
		logger:   log,
	}
}

func (v *ProductValidator) Validate(p *model.Product) error {
	return v.validate.Struct(p)
}
