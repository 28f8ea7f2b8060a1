package domain

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// fieldValidator checks the declarative `validate` tags on domain structs.
// validator.Validate caches struct metadata and is safe for concurrent use.
var fieldValidator = validator.New(validator.WithRequiredStructEnabled())

// validateFields runs tag validation and maps the first failing field to the
// sentinel registered for it in fieldErrs. Unknown fields fall back to a
// generic ErrValidation wrap.
func validateFields(s any, fieldErrs map[string]error) error {
	err := fieldValidator.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if sentinel, ok := fieldErrs[fe.StructField()]; ok {
			return sentinel
		}
		return fmt.Errorf("%w: field %s failed %q check", ErrValidation, fe.StructField(), fe.Tag())
	}

	return fmt.Errorf("%w: %v", ErrValidation, err)
}
