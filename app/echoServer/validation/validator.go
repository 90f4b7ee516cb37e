package validation

import (
	"github.com/go-playground/validator/v10"
)

// Validator adapts go-playground/validator to echo's Validator interface so
// handlers can also call c.Validate directly. Pass the shared instance the
// controllers use; a nil instance gets a fresh one.
type Validator struct {
	v *validator.Validate
}

func New(v *validator.Validate) *Validator {
	if v == nil {
		v = validator.New()
	}
	return &Validator{v: v}
}

func (va *Validator) Validate(i interface{}) error {
	return va.v.Struct(i)
}
