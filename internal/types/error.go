package types

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode identifies one case of the ledger failure taxonomy. Every
// caller-visible failure carries exactly one code so callers can tell the
// cases apart without parsing messages.
type ErrorCode string

const (
	AlreadyRegistered     ErrorCode = "ALREADY_REGISTERED"
	NotRegistered         ErrorCode = "NOT_REGISTERED"
	InvalidOption         ErrorCode = "INVALID_OPTION"
	InvalidAmount         ErrorCode = "INVALID_AMOUNT"
	InsufficientAllowance ErrorCode = "INSUFFICIENT_ALLOWANCE"
	NotOwner              ErrorCode = "NOT_OWNER"
	NotFound              ErrorCode = "NOT_FOUND"
	AlreadyClaimed        ErrorCode = "ALREADY_CLAIMED"
	TooEarly              ErrorCode = "TOO_EARLY"
	ContractPaused        ErrorCode = "CONTRACT_PAUSED"
	PoolExhausted         ErrorCode = "POOL_EXHAUSTED"
	Unauthorized          ErrorCode = "UNAUTHORIZED"
	ValidationError       ErrorCode = "VALIDATION_ERROR"
	InternalServiceError  ErrorCode = "INTERNAL_SERVICE_ERROR"
)

func (c ErrorCode) String() string {
	return string(c)
}

// Error is the caller-visible failure type of every ledger operation.
type Error struct {
	Err        error
	StatusCode int
	ErrorCode  ErrorCode
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.ErrorCode)
	}
	return fmt.Sprintf("%s: %s", e.ErrorCode, e.Err.Error())
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(statusCode int, errorCode ErrorCode, err error) *Error {
	return &Error{
		Err:        err,
		StatusCode: statusCode,
		ErrorCode:  errorCode,
	}
}

func NewErrorWithMsg(statusCode int, errorCode ErrorCode, msg string) *Error {
	return NewError(statusCode, errorCode, errors.New(msg))
}

func NewInternalServiceError(err error) *Error {
	return NewError(http.StatusInternalServerError, InternalServiceError, err)
}

// IsErrorCode reports whether err is a *Error carrying the given code.
func IsErrorCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.ErrorCode == code
	}
	return false
}
