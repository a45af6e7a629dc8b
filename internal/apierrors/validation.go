package apierrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// RespondWithValidationError sends a 400 for a failed gin bind. Rule violations are
// listed per field; a body that could not be decoded at all gets a generic message.
func RespondWithValidationError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		logger.Error(c.Request.Context(), "request binding failed", err)
		respond(c, http.StatusBadRequest, CodeInvalidInput, "Request could not be read")
		return
	}

	logger.Error(c.Request.Context(), "request rejected by binding rules", err)
	respond(c, http.StatusBadRequest, CodeInvalidInput, describeFieldErrors(fieldErrs))
}

func describeFieldErrors(fieldErrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, describeFieldError(fe))
	}
	return strings.Join(parts, "; ")
}

func describeFieldError(fe validator.FieldError) string {
	name := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("missing %s", name)
	case "max":
		return fmt.Sprintf("%s longer than %s", name, fe.Param())
	default:
		return fmt.Sprintf("invalid %s", name)
	}
}
