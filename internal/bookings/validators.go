package bookings

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"stayhub/internal/inventory"
)

// RegisterValidators installs the booking-specific binding validators.
// Call once at startup before the router handles requests.
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("bookdate", validBookDate)
	}
}

// validBookDate accepts canonical YYYY-MM-DD date strings
func validBookDate(fl validator.FieldLevel) bool {
	_, err := inventory.ParseDate(fl.Field().String())
	return err == nil
}
