package session

import (
	"github.com/jrsteele09/churchai-session/apiclient"
	"github.com/pkg/errors"
)

// Fallback messages when the server gives no explanation
const (
	msgLoginFailed    = "Error al iniciar sesión"
	msgRegisterFailed = "Error al registrar usuario"
	msgHydrateFailed  = "No se pudo validar la sesión"
	msgRefreshFailed  = "No se pudo refrescar la sesión"
	msgStorageFailed  = "No se pudo guardar la sesión"
)

// Error is a failed session operation. Error() is the message to show the user;
// StatusCode is the HTTP status when the server answered.
type Error struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(op string, err error, fallback string) *Error {
	e := &Error{
		Op:      op,
		Message: apiclient.Message(err, fallback),
		Err:     err,
	}
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		e.StatusCode = apiErr.StatusCode
	}
	return e
}
