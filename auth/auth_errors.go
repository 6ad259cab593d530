package auth

import (
	apperrors "github.com/jrsteele09/churchai-session/internal/errors"
)

// Client-facing details. The API speaks to its users in Spanish.
const (
	DetailInvalidCredentials     = "Email o contraseña incorrectos"
	DetailEmailTaken             = "Este email ya está registrado"
	DetailInvalidChurchCode      = "Código de iglesia inválido"
	DetailInvalidRefreshToken    = "Token de refresco inválido"
	DetailUserNotFound           = "Usuario no encontrado"
	DetailCredentialsNotVerified = "No se pudo validar las credenciales"
	DetailWrongCurrentPassword   = "Contraseña actual incorrecta"
	DetailInvalidVerification    = "Token de verificación inválido o expirado"
)

// Error is a failure the caller can show to the user. Kind is one of the
// internal/errors sentinels and decides the HTTP status.
type Error struct {
	Kind   error
	Detail string
}

func newError(kind error, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

func (e *Error) Error() string {
	return e.Kind.Error() + ": " + e.Detail
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// ValidationError reports a single invalid request field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return apperrors.ErrInvalidRequest
}
