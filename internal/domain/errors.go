package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")

	// Errores del flujo de piezas.
	ErrInsufficientPieces         = errors.New("piezas insuficientes en el área")
	ErrPartialTransferBlocksPause = errors.New("hay piezas en otras áreas por una transferencia parcial")
	ErrAlreadyProcessed           = errors.New("la solicitud ya fue procesada")
	ErrRateLimited                = errors.New("espere antes de volver a solicitar la transferencia")
)

// ErrInvalidAmount se devuelve cuando la cantidad de piezas a mover no es positiva.
var ErrInvalidAmount = &ValidationError{Field: "pieces", Message: "la cantidad de piezas debe ser mayor a cero"}

// ValidationError describe un campo inválido. errors.Is(err, ErrInvalidInput) es true para cualquier ValidationError.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError construye un error de validación para el campo indicado.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Is permite tratar cualquier ValidationError como ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}
