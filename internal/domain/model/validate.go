package model

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var ratingPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?/5$`)

// Validator wraps go-playground validator with the catalog rules.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator with the "difficulty" and "rating" tags registered.
func NewValidator() *Validator {
	v := validator.New()

	_ = v.RegisterValidation("difficulty", validateDifficulty)
	_ = v.RegisterValidation("rating", validateRating)

	return &Validator{validate: v}
}

// Validate validates a struct.
func (v *Validator) Validate(i any) error {
	return v.validate.Struct(i)
}

// validateDifficulty accepts a single level or a "X to Y" span.
func validateDifficulty(fl validator.FieldLevel) bool {
	_, _, err := ParseDifficulty(fl.Field().String())
	return err == nil
}

// validateRating accepts labels like "4.5/5".
func validateRating(fl validator.FieldLevel) bool {
	return ratingPattern.MatchString(fl.Field().String())
}
