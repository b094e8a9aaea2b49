package serverutils

import (
	"fmt"
	"strings"

	"industrial-ai-be/internal/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest runs struct tag validation and converts failures into
// a ValidationError so the error middleware can map them to 400.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return apperror.Wrap(apperror.KindValidation, "invalid request", err)
		}
		var fields []string
		for _, fe := range validationErrors {
			fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
		}
		return apperror.New(apperror.KindValidation,
			"invalid request: "+strings.Join(fields, ", "))
	}
	return nil
}
