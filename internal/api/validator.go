package api

import (
	"github.com/go-playground/validator/v10"
)

// formValidator adapts go-playground/validator to echo.Validator
type formValidator struct {
	validate *validator.Validate
}

func newValidator() *formValidator {
	return &formValidator{validate: validator.New()}
}

// Validate validates a bound form struct
func (v *formValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}
