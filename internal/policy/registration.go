package policy

import (
	"github.com/dmitrijs2005/openpass/internal/common"
	"github.com/go-playground/validator/v10"
)

const emailTag = "vaultemail"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation(emailTag, func(fl validator.FieldLevel) bool {
		return ValidateEmail(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

type registration struct {
	Username     string `validate:"required"`
	Email        string `validate:"required"`
	Password     string `validate:"required"`
	Confirmation string `validate:"required"`
}

// ValidateRegistrationFields checks a registration form. The first failure
// wins, in this order: any field empty, password and confirmation differ,
// first password rule violated, malformed e-mail. The returned error is a
// *common.ValidationError.
func ValidateRegistrationFields(username, email, password, confirmation string) error {
	form := registration{
		Username:     username,
		Email:        email,
		Password:     password,
		Confirmation: confirmation,
	}

	if err := validate.Struct(form); err != nil {
		return common.NewValidationError("", "please fill in all fields")
	}

	if err := validate.VarWithValue(confirmation, password, "eqfield"); err != nil {
		return common.NewValidationError("confirmation", "passwords do not match")
	}

	if violations := Validate(password); len(violations) > 0 {
		return common.NewValidationError("password", violations[0].String())
	}

	if err := validate.Var(email, emailTag); err != nil {
		return common.NewValidationError("email", "invalid e-mail format")
	}

	return nil
}
