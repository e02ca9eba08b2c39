package handlers

import (
	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps go-playground/validator to implement echo's
// Validator interface, so handlers can call c.Validate on bound structs.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new CustomValidator.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements the echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
