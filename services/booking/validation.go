package booking

import (
	"strings"

	"stayhub/models"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateGuest checks the guest record is complete before payment: first
// name, last name, a valid email and an E.164 phone number.
func validateGuest(guest models.GuestDetails) error {
	err := validate.Struct(guest)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return &GuestValidationError{Reason: err.Error()}
	}
	var fields []string
	for _, fe := range verrs {
		fields = append(fields, fe.Field()+" ("+fe.Tag()+")")
	}
	return &GuestValidationError{Reason: strings.Join(fields, ", ")}
}
