package handlers

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// accountCodePattern accepts chart-of-account codes: digits with optional dot
// separators, as in "601" or "40.11".
var accountCodePattern = regexp.MustCompile(`^[0-9]{1,10}(\.[0-9]{1,4})*$`)

// RegisterCustomValidators installs the binding-level validations used by the
// request DTOs.
func RegisterCustomValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("account_code", func(fl validator.FieldLevel) bool {
			return accountCodePattern.MatchString(fl.Field().String())
		})
	}
}
