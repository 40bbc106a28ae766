package engine

import "fmt"

type AppError struct {
	Code    string `json:"code"`
	Status  int    `json:"-"`
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

func NotFoundError(slug, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Status:  404,
		Message: fmt.Sprintf("%s with id %s not found", slug, id),
	}
}

func UnknownTypeError(kind, slug string) *AppError {
	return &AppError{
		Code:    "UNKNOWN_TYPE",
		Status:  404,
		Message: fmt.Sprintf("Unknown %s: %s", kind, slug),
	}
}

func BadRequestError(msg string) *AppError {
	return &AppError{Code: "INVALID_PAYLOAD", Status: 400, Message: msg}
}

func CompileFailedError(err error) *AppError {
	return &AppError{
		Code:    "COMPILE_FAILED",
		Status:  422,
		Message: err.Error(),
	}
}
