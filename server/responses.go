package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jrsteele09/churchai-session/auth"
	"github.com/jrsteele09/churchai-session/authmodel"
	apperrors "github.com/jrsteele09/churchai-session/internal/errors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	detailNotAuthenticated  = "Not authenticated"
	detailTooManyRequests   = "Demasiados intentos. Inténtalo de nuevo más tarde"
	detailInvalidBody       = "No se pudo leer el cuerpo de la petición"
	detailLoginFailed       = "Error al iniciar sesión"
	detailRegisterFailed    = "Error al registrar usuario"
	detailRefreshFailed     = "Error al refrescar token"
	detailChangePassFailed  = "Error al cambiar contraseña"
	detailLogoutFailed      = "Error al cerrar sesión"
	detailVerifyEmailFailed = "Error al verificar email"
	internalErrorMessage    = "Internal server error"
	internalErrorCode       = "INTERNAL_SERVER_ERROR"
	validationErrorTypeBase = "value_error"
)

func writeJSON(w http.ResponseWriter, statusCode int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Err(err).Msg("error writing response body")
	}
}

func writeDetail(w http.ResponseWriter, statusCode int, detail string) {
	writeJSON(w, statusCode, authmodel.ErrorResponse{Detail: detail})
}

func writeValidationErrors(w http.ResponseWriter, details []authmodel.ValidationDetail) {
	writeJSON(w, http.StatusUnprocessableEntity, authmodel.ValidationErrorResponse{Detail: details})
}

func writeInternalError(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, authmodel.InternalErrorResponse{
		Success:   false,
		Message:   internalErrorMessage,
		ErrorCode: internalErrorCode,
	})
}

// writeError renders err as the API reports it. Errors the auth service did not classify are
// logged and answered with fallbackStatus and fallbackDetail.
func writeError(w http.ResponseWriter, err error, fallbackStatus int, fallbackDetail string) {
	var validationErr *auth.ValidationError
	if errors.As(err, &validationErr) {
		writeValidationErrors(w, []authmodel.ValidationDetail{{
			Loc:  append([]string{"body"}, strings.Split(validationErr.Field, ".")...),
			Msg:  validationErr.Message,
			Type: validationErrorTypeBase,
		}})
		return
	}

	var authErr *auth.Error
	if errors.As(err, &authErr) {
		writeDetail(w, statusForKind(authErr.Kind), authErr.Detail)
		return
	}

	log.Err(err).Msg("request failed")
	writeDetail(w, fallbackStatus, fallbackDetail)
}

func statusForKind(kind error) int {
	switch {
	case apperrors.Is(kind, apperrors.ErrInvalidCredentials),
		apperrors.Is(kind, apperrors.ErrInvalidToken),
		apperrors.Is(kind, apperrors.ErrTokenExpired),
		apperrors.Is(kind, apperrors.ErrInvalidRefreshToken):
		return http.StatusUnauthorized
	case apperrors.Is(kind, apperrors.ErrUserInactive):
		return http.StatusForbidden
	case apperrors.Is(kind, apperrors.ErrInvalidInvitationCode),
		apperrors.Is(kind, apperrors.ErrChurchNotFound),
		apperrors.Is(kind, apperrors.ErrNotFound):
		return http.StatusNotFound
	case apperrors.Is(kind, apperrors.ErrUserExists),
		apperrors.Is(kind, apperrors.ErrInvalidRequest),
		apperrors.Is(kind, apperrors.ErrInvalidVerificationToken):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
