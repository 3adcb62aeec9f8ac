package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	creationdomain "github.com/inkwell-hq/inkwell/internal/creation/domain"
	generationdomain "github.com/inkwell-hq/inkwell/internal/generation/domain"
	identitydomain "github.com/inkwell-hq/inkwell/internal/identity/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("rate_limited")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: "invalid value",
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, identitydomain.ErrUnauthenticated):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, generationdomain.ErrPremiumRequired):
		return http.StatusForbidden, errorPayload{
			Type:    "premium_required",
			Message: "this feature requires a premium plan",
		}
	case errors.Is(err, creationdomain.ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, generationdomain.ErrQuotaExceeded):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "quota_exceeded",
			Message: "free usage limit reached, upgrade to continue",
		}
	case errors.Is(err, ErrRateLimited),
		errors.Is(err, generationdomain.ErrBusy):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case errors.Is(err, generationdomain.ErrGenerationFailed):
		return http.StatusBadGateway, errorPayload{
			Type:    "generation_failed",
			Message: "generation failed",
		}
	case errors.Is(err, generationdomain.ErrStorageFailed),
		errors.Is(err, identitydomain.ErrUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, creationdomain.ErrInvalidID),
		errors.Is(err, creationdomain.ErrInvalidUser),
		errors.Is(err, creationdomain.ErrInvalidPrompt),
		errors.Is(err, creationdomain.ErrInvalidContent),
		errors.Is(err, creationdomain.ErrInvalidType),
		errors.Is(err, creationdomain.ErrInvalidCursor),
		errors.Is(err, generationdomain.ErrEmptyPrompt),
		errors.Is(err, generationdomain.ErrMissingFile),
		errors.Is(err, generationdomain.ErrFileTooLarge),
		errors.Is(err, generationdomain.ErrNotPDF):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, creationdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorField(code string) string {
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	switch code {
	case "empty_prompt":
		return "prompt"
	case "missing_file", "file_too_large", "not_pdf":
		return "file"
	default:
		return ""
	}
}

// classifyErrorForLog feeds the request logger: the mapped type plus the raw
// error code, without leaking internals into the response itself.
func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	if err == nil {
		return payload.Type, ""
	}
	return payload.Type, err.Error()
}
