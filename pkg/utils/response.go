package utils

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	appErrors "cargo-tracker/pkg/errors"
)

type SuccessBody struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ErrorBody struct {
	Success bool         `json:"success"`
	Error   string       `json:"error"`
	Code    string       `json:"code,omitempty"`
	Fields  []FieldError `json:"fields,omitempty"`
}

type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func SuccessResponse(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, SuccessBody{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorBody{
		Success: false,
		Error:   message,
	})
}

// HandleError translates a service-layer error into the uniform error body.
// Validation errors enumerate the offending fields.
func HandleError(c *gin.Context, err error) {
	status := appErrors.HTTPStatus(err)
	body := ErrorBody{
		Success: false,
		Error:   err.Error(),
		Code:    string(appErrors.KindOf(err)),
	}

	var appErr *appErrors.AppError
	if errors.As(err, &appErr) {
		body.Error = appErr.Message

		var validationErrs validator.ValidationErrors
		if errors.As(appErr.Err, &validationErrs) {
			for _, fe := range validationErrs {
				body.Fields = append(body.Fields, FieldError{
					Field:  fe.Field(),
					Reason: fe.Tag(),
				})
			}
		}
	}

	c.JSON(status, body)
}
