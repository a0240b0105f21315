package httpx

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// APIError is returned by handlers that already know the HTTP outcome.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string { return e.Message }

func NewError(status int, code, message string) *APIError {
	return &APIError{Status: status, Code: code, Message: message}
}

func BadRequest(message string) *APIError {
	return NewError(fiber.StatusBadRequest, "BAD_REQUEST", message)
}

func NotFound(message string) *APIError {
	return NewError(fiber.StatusNotFound, "NOT_FOUND", message)
}

func Forbidden(message string) *APIError {
	return NewError(fiber.StatusForbidden, "FORBIDDEN", message)
}

type mapping struct {
	err    error
	status int
	code   string
}

// ErrorMapper maps domain sentinel errors to HTTP status codes, checked in registration order.
type ErrorMapper struct {
	mappings []mapping
}

func NewErrorMapper() *ErrorMapper {
	return &ErrorMapper{}
}

func (m *ErrorMapper) Register(err error, status int, code string) *ErrorMapper {
	m.mappings = append(m.mappings, mapping{err: err, status: status, code: code})
	return m
}

// Resolve converts any error into an APIError. Unknown errors become 500 with their message.
func (m *ErrorMapper) Resolve(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	for _, mp := range m.mappings {
		if errors.Is(err, mp.err) {
			return NewError(mp.status, mp.code, err.Error())
		}
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return NewError(fe.Code, CodeForStatus(fe.Code), fe.Message)
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewError(fiber.StatusNotFound, "NOT_FOUND", "record not found")
	}

	return NewError(fiber.StatusInternalServerError, "INTERNAL", err.Error())
}

// ErrorHandler is installed as fiber.Config.ErrorHandler.
func (m *ErrorMapper) ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		apiErr := m.Resolve(err)
		if apiErr.Status >= fiber.StatusInternalServerError {
			zap.L().Error("unhandled error",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}
		return Fail(c, apiErr.Status, apiErr.Code, apiErr.Message)
	}
}

func CodeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	case fiber.StatusUnauthorized:
		return "UNAUTHORIZED"
	case fiber.StatusForbidden:
		return "FORBIDDEN"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusConflict:
		return "CONFLICT"
	case fiber.StatusGone:
		return "GONE"
	case fiber.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	case fiber.StatusUnprocessableEntity:
		return "UNPROCESSABLE"
	case fiber.StatusTooManyRequests:
		return "TOO_MANY_REQUESTS"
	}
	if status >= 500 {
		return "INTERNAL"
	}
	return http.StatusText(status)
}
