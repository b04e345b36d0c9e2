package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Code classifies failures so transports can pick a status without string matching.
type Code string

const (
	CodeNotFound              Code = "not_found"
	CodeValidation            Code = "validation"
	CodeStorage               Code = "storage"
	CodeDependencyUnavailable Code = "dependency_unavailable"
	CodeUnauthorized          Code = "unauthorized"
	CodeInternal              Code = "internal"
)

type Error struct {
	Code    Code
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, e.Code)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Code)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

func New(code Code, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

func NotFound(op, message string) error   { return New(CodeNotFound, op, message, nil) }
func Validation(op, message string) error { return New(CodeValidation, op, message, nil) }
func Unauthorized(op, message string) error {
	return New(CodeUnauthorized, op, message, nil)
}

func Validationf(op, format string, args ...any) error {
	return New(CodeValidation, op, fmt.Sprintf(format, args...), nil)
}

func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return New(CodeStorage, op, err.Error(), err)
}

func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return New(CodeDependencyUnavailable, op, err.Error(), err)
}

// Wrap keeps an existing classification and otherwise tags err with code.
func Wrap(code Code, op string, err error) error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return err
	}
	return New(code, op, err.Error(), err)
}

func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// CodeOf returns CodeInternal for unclassified errors.
func CodeOf(err error) Code {
	var e *Error
	if !errors.As(err, &e) || e == nil {
		return CodeInternal
	}
	return e.Code
}

// MessageOf returns the caller-facing message; unclassified errors are not leaked.
func MessageOf(err error) string {
	var e *Error
	if !errors.As(err, &e) || e == nil || e.Code == CodeInternal {
		return "internal error"
	}
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

func HTTPStatus(code Code) int {
	switch code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeStorage:
		return http.StatusBadGateway
	case CodeDependencyUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
