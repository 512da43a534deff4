package errors

import (
	stdErrors "errors"
	"fmt"
)

type Code string

const (
	CodeValidation      Code = "VALIDATION_ERROR"
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeStockExceeded   Code = "STOCK_EXCEEDED"
	CodeInternal        Code = "INTERNAL_ERROR"
	CodeDependency      Code = "DEPENDENCY_ERROR"
)

type Metadata struct {
	Retryable     bool
	Transient     bool
	PublicMessage string
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		Retryable:     false,
		Transient:     false,
		PublicMessage: "validation failed",
	},
	CodeUnauthenticated: {
		Retryable:     false,
		Transient:     false,
		PublicMessage: "sign in required",
	},
	CodeNotFound: {
		Retryable:     false,
		Transient:     false,
		PublicMessage: "resource not found",
	},
	CodeConflict: {
		Retryable:     true,
		Transient:     true,
		PublicMessage: "a conflicting operation is in progress",
	},
	CodeStockExceeded: {
		Retryable:     false,
		Transient:     true,
		PublicMessage: "requested quantity exceeds available stock",
	},
	CodeInternal: {
		Retryable:     true,
		Transient:     false,
		PublicMessage: "internal error",
	},
	CodeDependency: {
		Retryable:     true,
		Transient:     true,
		PublicMessage: "backend unavailable",
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.Code() == code
}
