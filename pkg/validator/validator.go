// Package validator registers custom request validations with gin's
// binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/docmanage/opd-api/pkg/security"
)

// Register installs the custom validations. Call once at startup before
// the router handles requests.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("strongpassword", strongPassword)
}

// strongPassword enforces the signup password policy: at least 8
// characters with an uppercase letter, a lowercase letter, a digit and a
// special character.
func strongPassword(fl validator.FieldLevel) bool {
	return security.CheckPolicy(fl.Field().String()).IsValid()
}
