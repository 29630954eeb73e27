package core

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// user facing fallbacks
const (
	MsgGeneric = "something went wrong, please try again"
	MsgNetwork = "network error, please retry"
	MsgAuth    = "session expired, please log in again"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is a local, pre-network input error.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	if len(err.Fields) > 0 {
		return err.Fields[0].Field + ": " + err.Fields[0].Error
	}
	return ""
}

// NetworkError means the request never reached the server or no response came back.
type NetworkError struct {
	Err error
}

func NewNetworkError(err error) error {
	return &NetworkError{Err: err}
}

func (err *NetworkError) Error() string { return "network error: " + err.Err.Error() }
func (err *NetworkError) Unwrap() error { return err.Err }

// ServerError is any non-2xx response other than an auth failure.
type ServerError struct {
	Status int
	Detail string
}

func (err *ServerError) Error() string {
	if err.Detail != "" {
		return err.Detail
	}
	return fmt.Sprintf("server responded %d %s", err.Status, http.StatusText(err.Status))
}

// AuthError is a 401 or 403 response.
type AuthError struct {
	Status int
	Detail string
}

func (err *AuthError) Error() string {
	if err.Detail != "" {
		return err.Detail
	}
	return fmt.Sprintf("authentication failed (%d)", err.Status)
}

func IsValidation(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

func IsNetwork(err error) bool {
	var nErr *NetworkError
	return errors.As(err, &nErr)
}

func IsAuth(err error) bool {
	var aErr *AuthError
	return errors.As(err, &aErr)
}

// UserMessage turns err into text that can be shown to the user as is.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var (
		vErr *ValidationError
		nErr *NetworkError
		sErr *ServerError
		aErr *AuthError
	)
	switch {
	case errors.As(err, &vErr):
		if msg := vErr.Error(); msg != "" {
			return msg
		}
	case errors.As(err, &nErr):
		return MsgNetwork
	case errors.As(err, &sErr):
		if sErr.Detail != "" {
			return sErr.Detail
		}
	case errors.As(err, &aErr):
		return MsgAuth
	}
	return MsgGeneric
}
