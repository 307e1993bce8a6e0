// Package response renders API errors in one envelope shared by handlers
// and middleware.
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"yamdb/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
	}
}

type ErrorBody struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

type Envelope struct {
	Error ErrorBody `json:"error"`
}

var statusByKind = map[apperr.Kind]int{
	apperr.KindValidation:         http.StatusBadRequest,
	apperr.KindConflict:           http.StatusBadRequest,
	apperr.KindInvalidCredentials: http.StatusBadRequest,
	apperr.KindAuthentication:     http.StatusUnauthorized,
	apperr.KindPermission:         http.StatusForbidden,
	apperr.KindNotFound:           http.StatusNotFound,
	apperr.KindNotAllowed:         http.StatusMethodNotAllowed,
	apperr.KindThrottled:          http.StatusTooManyRequests,
}

// Status maps an error kind to its HTTP status, unknown kinds are 500.
func Status(kind apperr.Kind) int {
	if status, ok := statusByKind[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Error aborts the request with the envelope for err. Internal errors are
// attached to the context for the request logger and never shown to clients.
func Error(c *gin.Context, err error) {
	_ = c.Error(err)

	var appErr *apperr.Error
	if !errors.As(err, &appErr) || Status(appErr.Kind) == http.StatusInternalServerError {
		c.AbortWithStatusJSON(http.StatusInternalServerError, Envelope{Error: ErrorBody{
			Code:    string(apperr.KindInternal),
			Message: "internal server error",
		}})
		return
	}

	c.AbortWithStatusJSON(Status(appErr.Kind), Envelope{Error: ErrorBody{
		Code:    string(appErr.Kind),
		Field:   appErr.Field,
		Message: appErr.Message,
	}})
}

// BindJSON decodes the body into obj and reports binding failures as
// validation errors naming the offending field.
func BindJSON(c *gin.Context, obj any) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		return bindError(err)
	}
	return nil
}

func bindError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return apperr.Validation(fe.Field(), fieldMessage(fe))
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return apperr.Validation(typeErr.Field, fmt.Sprintf("expected %s", typeErr.Type.Kind()))
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return apperr.Validation("", "request body must be valid JSON")
	}
	return apperr.Validation("", err.Error())
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "max":
		return fmt.Sprintf("ensure this field has no more than %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("ensure this field has at least %s characters", fe.Param())
	case "email":
		return "enter a valid email address"
	default:
		return "invalid value"
	}
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}
