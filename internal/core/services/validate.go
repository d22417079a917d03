package services

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/paperqa/internal/core/domain"
)

// validate checks struct tags on records before they are persisted.
var validate = validator.New(validator.WithRequiredStructEnabled())

// validateRecord wraps tag violations as domain.ErrInvalidInput.
func validateRecord(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	return nil
}
