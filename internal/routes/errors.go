package routes

import (
	"errors"
	"net/http"

	"room-reservation/internal/auth"
	app "room-reservation/internal/jwt"
	"room-reservation/internal/storage"
)

// HTTPError represents an error with an associated HTTP status code and user message
type HTTPError struct {
	Err        error    // The underlying error
	StatusCode int      // HTTP status code
	Message    string   // User-friendly message
	StopCodes  []string // Optional stop codes for client-side handling
	Internal   bool     // Whether this is an internal error (hide details from user)
}

// ErrorInfo contains error metadata for user-facing errors
type ErrorInfo struct {
	Message   string   // User-friendly message
	StopCodes []string // Optional stop codes for client-side application
}

// Error implements the error interface
func (e *HTTPError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *HTTPError) Unwrap() error {
	return e.Err
}

// NewHTTPError creates a new HTTPError
func NewHTTPError(statusCode int, err error, message string, stopCodes ...string) *HTTPError {
	return &HTTPError{
		Err:        err,
		StatusCode: statusCode,
		Message:    message,
		StopCodes:  stopCodes,
		Internal:   statusCode >= 500,
	}
}

// Routes-specific errors (that don't conflict with other packages)
var (
	// Authentication errors
	ErrUnauthorized = errors.New("unauthorized")

	// Authorization errors
	ErrForbidden               = errors.New("forbidden")
	ErrInsufficientPermissions = errors.New("insufficient permissions")

	// Lookup errors
	ErrPageNotFound        = errors.New("page not found")
	ErrRoomNotFound        = errors.New("room not found")
	ErrReservationNotFound = errors.New("reservation not found")

	// Validation errors
	ErrInvalidRequest   = errors.New("invalid request")
	ErrInvalidParameter = errors.New("invalid parameter")

	// Internal errors
	ErrInternalServer = errors.New("internal server error")
	ErrDatabaseError  = errors.New("database error")
)

type knownError struct {
	err    error
	status int
	info   ErrorInfo
}

// knownErrors is searched in order and the first sentinel found in the chain
// wins. Handler level sentinels come before storage.ErrNotFound so a wrapped
// storage miss keeps the status of its wrapper.
var knownErrors = []knownError{
	// Authentication
	{ErrUnauthorized, http.StatusUnauthorized, ErrorInfo{
		Message:   "Debe iniciar sesión",
		StopCodes: []string{"AUTH_REQUIRED"},
	}},
	{app.ErrNonValidToken, http.StatusUnauthorized, ErrorInfo{
		Message:   "Sesión inválida o expirada",
		StopCodes: []string{"AUTH_INVALID_TOKEN"},
	}},
	{app.ErrInvalidNonce, http.StatusUnauthorized, ErrorInfo{
		Message:   "Sesión cerrada o reutilizada",
		StopCodes: []string{"AUTH_INVALID_NONCE"},
	}},
	{auth.ErrInvalidCredentials, http.StatusUnauthorized, ErrorInfo{
		Message:   "Credenciales inválidas o usuario sin permisos de administrador.",
		StopCodes: []string{"AUTH_INVALID_CREDENTIALS"},
	}},

	// Authorization
	{ErrForbidden, http.StatusForbidden, ErrorInfo{
		Message:   "Acceso denegado",
		StopCodes: []string{"FORBIDDEN"},
	}},
	{ErrInsufficientPermissions, http.StatusForbidden, ErrorInfo{
		Message:   "No tiene permisos para realizar esta acción",
		StopCodes: []string{"INSUFFICIENT_PERMISSIONS"},
	}},

	// Lookup
	{ErrPageNotFound, http.StatusNotFound, ErrorInfo{
		Message:   "Página no encontrada",
		StopCodes: []string{"NOT_FOUND"},
	}},
	{ErrRoomNotFound, http.StatusNotFound, ErrorInfo{
		Message:   "Sala no encontrada",
		StopCodes: []string{"ROOM_NOT_FOUND"},
	}},
	{ErrReservationNotFound, http.StatusNotFound, ErrorInfo{
		Message:   "Reserva no encontrada",
		StopCodes: []string{"RESERVATION_NOT_FOUND"},
	}},

	// Validation
	{ErrInvalidRequest, http.StatusBadRequest, ErrorInfo{
		Message:   "Solicitud inválida",
		StopCodes: []string{"INVALID_REQUEST"},
	}},
	{ErrInvalidParameter, http.StatusBadRequest, ErrorInfo{
		Message:   "Parámetro inválido",
		StopCodes: []string{"INVALID_PARAMETER"},
	}},

	// Internal (no stop codes for internal errors)
	{ErrInternalServer, http.StatusInternalServerError, ErrorInfo{
		Message: "Ocurrió un error interno",
	}},
	{ErrDatabaseError, http.StatusInternalServerError, ErrorInfo{
		Message: "Falló la operación en la base de datos",
	}},

	{storage.ErrNotFound, http.StatusNotFound, ErrorInfo{
		Message:   "Registro no encontrado",
		StopCodes: []string{"NOT_FOUND"},
	}},
}

func lookupError(err error) (knownError, bool) {
	for _, known := range knownErrors {
		if errors.Is(err, known.err) {
			return known, true
		}
	}
	return knownError{}, false
}

// GetErrorStatus returns the HTTP status code for an error
func GetErrorStatus(err error) int {
	// Check if it's already an HTTPError
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}

	if known, ok := lookupError(err); ok {
		return known.status
	}

	// Default to 500 Internal Server Error
	return http.StatusInternalServerError
}

// GetErrorInfo returns error information including message and stop codes
func GetErrorInfo(err error) ErrorInfo {
	// Check if it's an HTTPError with custom info
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return ErrorInfo{
			Message:   httpErr.Message,
			StopCodes: httpErr.StopCodes,
		}
	}

	if known, ok := lookupError(err); ok {
		return known.info
	}

	// Unknown errors are 500s, never show their text
	return ErrorInfo{Message: "Ocurrió un error interno"}
}
