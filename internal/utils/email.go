package utils

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/breachwatch/monitor/internal/core/domain/subscriber"
)

var ErrInvalidEmail = errors.New("invalid email address")

var validate = validator.New()

var emailRule = fmt.Sprintf("required,email,max=%d", subscriber.MaxEmailLength)

// ValidateEmail checks that the address is well formed and fits the store's column.
func ValidateEmail(email string) error {
	if err := validate.Var(email, emailRule); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEmail, err)
	}
	return nil
}
