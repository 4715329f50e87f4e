package intake

import (
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/kaarshe/core/internal/pkg/emailaddr"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// getValidator returns the shared validator with the kemail rule registered.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("kemail", func(fl validator.FieldLevel) bool {
			return emailaddr.Valid(fl.Field().String())
		})
	})
	return validate
}
