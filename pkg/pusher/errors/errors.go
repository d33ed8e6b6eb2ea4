package errors

import (
	"errors"
	"net/http"
)

type HTTPError struct {
	Code    int    `json:"-"`
	Message string `json:"error"`
}

func AsHTTPError(err error) (HTTPError, bool) {
	var e HTTPError
	ok := errors.As(err, &e)
	return e, ok
}

func (e HTTPError) Error() string {
	return e.Message
}

func BadRequest(msg string) HTTPError {
	return HTTPError{
		Code:    http.StatusBadRequest,
		Message: msg,
	}
}

func InternalServerError(msg string) HTTPError {
	return HTTPError{
		Code:    http.StatusInternalServerError,
		Message: msg,
	}
}
