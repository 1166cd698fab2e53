package api

import (
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
)

// AppError is the closed set of failures the API reports. Status drives
// the transport code at the boundary and is never serialized.
type AppError struct {
	Code    string        `json:"code"`
	Status  int           `json:"-"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

type ErrorDetail struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

type ErrorResponse struct {
	Error *AppError `json:"error"`
}

func NewAppError(code string, status int, msg string) *AppError {
	return &AppError{Code: code, Status: status, Message: msg}
}

func NotFoundError(entity string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Status:  fiber.StatusNotFound,
		Message: fmt.Sprintf("%s not found", entity),
	}
}

func ValidationError(details []ErrorDetail) *AppError {
	return &AppError{
		Code:    "VALIDATION_FAILED",
		Status:  fiber.StatusUnprocessableEntity,
		Message: "Validation failed",
		Details: details,
	}
}

func DuplicateNameError(name string) *AppError {
	return &AppError{
		Code:    "DUPLICATE_NAME",
		Status:  fiber.StatusConflict,
		Message: fmt.Sprintf("Group with name %s already exists", name),
	}
}

func OperationFailedError(msg string) *AppError {
	return &AppError{
		Code:    "OPERATION_FAILED",
		Status:  fiber.StatusBadRequest,
		Message: msg,
	}
}

func InvalidPayloadError(msg string) *AppError {
	return &AppError{
		Code:    "INVALID_PAYLOAD",
		Status:  fiber.StatusBadRequest,
		Message: msg,
	}
}

// ErrorHandler is the terminal middleware: anything a handler did not map
// itself lands here and leaves as a uniform JSON envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return c.Status(appErr.Status).JSON(ErrorResponse{Error: appErr})
	}

	code := fiber.StatusInternalServerError
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}

	log.Printf("ERROR: %s %s - %v", c.Method(), c.Path(), err)
	return c.Status(code).JSON(ErrorResponse{
		Error: &AppError{
			Code:    "INTERNAL_ERROR",
			Message: "Internal Server Error",
		},
	})
}
