package api

import (
	"github.com/go-playground/validator/v10"
)

// Validator plugs go-playground/validator into echo's Context.Validate.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}
