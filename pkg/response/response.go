package response

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apperrors "roadrescue/pkg/errors"
	"roadrescue/pkg/logger"
)

// ErrorBody is the wire shape of every failed request.
type ErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

type PaginatedResponse struct {
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
	Total int64       `json:"total"`
	Count int         `json:"count"`
	Items interface{} `json:"items"`
}

// ListResponse is the unpaged {count, items} shape.
type ListResponse struct {
	Count int         `json:"count"`
	Items interface{} `json:"items"`
}

func Success(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

func Created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, data)
}

func Paginated(c echo.Context, items interface{}, count int, total int64, page, limit int) error {
	return c.JSON(http.StatusOK, PaginatedResponse{
		Page:  page,
		Limit: limit,
		Total: total,
		Count: count,
		Items: items,
	})
}

func List(c echo.Context, items interface{}, count int) error {
	return c.JSON(http.StatusOK, ListResponse{Count: count, Items: items})
}

func Error(c echo.Context, err error) error {
	var validationErr validator.ValidationErrors
	if errors.As(err, &validationErr) {
		return handleValidationError(c, validationErr)
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Status >= http.StatusInternalServerError {
			logger.Error("%s %s: %v", c.Request().Method, c.Request().URL.Path, appErr)
		}
		if len(appErr.Fields) == 0 {
			return c.JSON(appErr.Status, ErrorBody{Message: appErr.Message, Code: appErr.Code})
		}
		body := map[string]interface{}{}
		for k, v := range appErr.Fields {
			body[k] = v
		}
		body["message"] = appErr.Message
		body["code"] = appErr.Code
		return c.JSON(appErr.Status, body)
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message := http.StatusText(httpErr.Code)
		if m, ok := httpErr.Message.(string); ok {
			message = m
		}
		return c.JSON(httpErr.Code, ErrorBody{Message: message, Code: codeForStatus(httpErr.Code)})
	}

	logger.Error("%s %s: unhandled error: %v", c.Request().Method, c.Request().URL.Path, err)
	return c.JSON(http.StatusInternalServerError, ErrorBody{
		Message: "Internal server error",
		Code:    "INTERNAL_ERROR",
	})
}

// ErrorHandler adapts Error to echo's HTTPErrorHandler signature.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	if writeErr := Error(c, err); writeErr != nil {
		logger.Error("failed to write error response: %v", writeErr)
	}
}

func handleValidationError(c echo.Context, validationErr validator.ValidationErrors) error {
	for _, err := range validationErr {
		field := lowerFirst(err.Field())
		param := err.Param()

		var message string
		switch err.Tag() {
		case "required":
			message = field + " is required"
		case "min":
			if err.Kind().String() == "string" {
				message = field + " must be at least " + param + " chars"
			} else {
				message = field + " must be at least " + param
			}
		case "max":
			if err.Kind().String() == "string" {
				message = field + " must be at most " + param + " chars"
			} else {
				message = field + " must be at most " + param
			}
		case "oneof":
			message = field + " must be one of: " + param
		case "email":
			message = field + " must be a valid email address"
		default:
			message = field + " is invalid"
		}

		return c.JSON(http.StatusBadRequest, ErrorBody{Message: message, Code: "VALIDATION_ERROR"})
	}

	return c.JSON(http.StatusBadRequest, ErrorBody{Message: "Invalid input data", Code: "VALIDATION_ERROR"})
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusTooManyRequests:
		return "TOO_MANY_REQUESTS"
	}
	if status >= http.StatusInternalServerError {
		return "INTERNAL_ERROR"
	}
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
