package core

import (
	"fmt"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return "validation failed"
	}
	return err.Err.Error()
}

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (err *APIError) Error() string {
	if err.Message == "" {
		return fmt.Sprintf("backend: %d %s", err.Status, http.StatusText(err.Status))
	}
	return fmt.Sprintf("backend: %d %s", err.Status, err.Message)
}

// AuthError means the backend refused the credentials or the session.
type AuthError struct {
	Message string
	Err     error
}

func NewAuthError(msg string, err error) error {
	return &AuthError{Message: msg, Err: err}
}

func (err *AuthError) Error() string {
	return err.Message
}

func (err *AuthError) Cause() error { return err.Err }

// NetworkError is a transport failure: no response was received.
type NetworkError struct {
	Op      string
	Timeout bool
	Err     error
}

func (err *NetworkError) Error() string {
	if err.Timeout {
		return err.Op + ": request timed out"
	}
	return fmt.Sprintf("%s: %v", err.Op, err.Err)
}

// IsAuthError reports whether err is an authentication failure (taxonomy b).
func IsAuthError(err error) bool {
	switch e := rootCause(err).(type) {
	case *AuthError:
		return true
	case *APIError:
		return e.Status == http.StatusUnauthorized
	}
	return false
}

// IsNetworkError reports whether err is a transport failure (taxonomy c).
func IsNetworkError(err error) bool {
	_, ok := rootCause(err).(*NetworkError)
	return ok
}

func IsTimeout(err error) bool {
	ne, ok := rootCause(err).(*NetworkError)
	return ok && ne.Timeout
}

// IsNotFound reports whether the backend answered 404 (taxonomy d).
func IsNotFound(err error) bool {
	ae, ok := rootCause(err).(*APIError)
	return ok && ae.Status == http.StatusNotFound
}

func IsForbidden(err error) bool {
	ae, ok := rootCause(err).(*APIError)
	return ok && ae.Status == http.StatusForbidden
}

// StatusCode returns the backend status carried by err, or 0.
func StatusCode(err error) int {
	if ae, ok := rootCause(err).(*APIError); ok {
		return ae.Status
	}
	return 0
}

// FieldErrors flattens validation errors into a field -> message map for inline display.
// It returns nil when err carries no field information.
func FieldErrors(err error, translator ut.Translator) map[string]string {
	switch e := rootCause(err).(type) {
	case validator.ValidationErrors:
		flds := make(map[string]string, len(e))
		for _, vErr := range e {
			if translator != nil {
				flds[vErr.Field()] = vErr.Translate(translator)
			} else {
				flds[vErr.Field()] = vErr.Error()
			}
		}
		return flds
	case *ValidationError:
		if e.Fields == nil {
			return nil
		}
		flds := make(map[string]string, len(e.Fields))
		for _, fErr := range e.Fields {
			flds[fErr.Field] = fErr.Error
		}
		return flds
	case *APIError:
		return e.Fields
	}
	return nil
}

// rootCause unwraps pkg/errors wrappers. AuthError stops the walk so it stays classifiable.
func rootCause(err error) error {
	for err != nil {
		if _, ok := err.(*AuthError); ok {
			return err
		}
		c, ok := err.(interface{ Cause() error })
		if !ok {
			break
		}
		next := c.Cause()
		if next == nil {
			break
		}
		err = next
	}
	return err
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
