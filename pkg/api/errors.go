package api

import (
	"errors"
	"fmt"
)

// GenericErrorMessage is what views show when the server gave no detail.
const GenericErrorMessage = "Something went wrong. Please try again."

// Error is a failed HTTP exchange. Status is zero for transport-level
// failures (timeout, refused connection) where no response arrived.
type Error struct {
	Status  int
	Detail  string
	Message string
}

func (e *Error) Error() string {
	switch {
	case e.Detail != "":
		return e.Detail
	case e.Message != "":
		return e.Message
	case e.Status > 0:
		return fmt.Sprintf("request failed with status %d", e.Status)
	default:
		return "request failed"
	}
}

// IsUnauthorized reports whether err is a 401 response.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == 401
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == 404
}

// ErrorMessage extracts the string a view should render for err,
// preferring the server-provided detail over the generic fallback.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		if apiErr.Message != "" {
			return apiErr.Message
		}
	}
	return GenericErrorMessage
}
