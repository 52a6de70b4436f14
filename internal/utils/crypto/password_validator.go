package crypto

import (
	"github.com/go-playground/validator/v10"
)

// PasswordTag is the validator tag checked by IsStrong.
const PasswordTag = "password"

func cryptoPasswordRule(fl validator.FieldLevel) bool {
	return IsStrong(fl.Field().String())
}

// RegisterPasswordValidator registers the "password" validation tag with the validator.
// Registering twice on the same validator is not an error.
func RegisterPasswordValidator(v *validator.Validate) error {
	err := v.RegisterValidation(PasswordTag, cryptoPasswordRule)
	if err != nil && err.Error() == "validator: tag '"+PasswordTag+"' already exists" {
		return nil
	}
	return err
}
